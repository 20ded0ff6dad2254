// README: Rider command handler: pickup and delivery confirmations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kirana/internal/modules/ledger"
	"kirana/internal/notify"
)

// handleRider resolves the rider's most recent in-flight order. A
// rider with nothing assigned is a defined no-op, not an error: riders
// often type ahead of being assigned.
func (e *Engine) handleRider(ctx context.Context, riderPhone, text string) error {
	if text != cmdRiderReady && text != cmdRiderDone {
		return nil
	}

	order, err := e.deps.Ledger.LatestActiveByRider(ctx, riderPhone)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	owner := e.deps.Config.OwnerPhone
	switch text {
	case cmdRiderReady:
		order, err = e.deps.Ledger.Advance(ctx, order.ID, ledger.StatusOutForDelivery)
		if errors.Is(err, ledger.ErrInvalidTransition) || errors.Is(err, ledger.ErrConflict) {
			e.send(ctx, notify.Text{To: riderPhone, Body: msgOperatorError})
			return nil
		}
		if err != nil {
			return err
		}
		e.send(ctx,
			notify.Text{To: owner, Body: fmt.Sprintf("राइडर पिकअप करके निकल गया है - ऑर्डर #%d", order.ID)},
			notify.Text{To: order.CustomerPhone, Body: fmt.Sprintf("🚚 आपका ऑर्डर #%d आउट फॉर डिलीवरी है!", order.ID)},
		)

	case cmdRiderDone:
		order, err = e.deps.Ledger.Advance(ctx, order.ID, ledger.StatusDelivered)
		if errors.Is(err, ledger.ErrInvalidTransition) || errors.Is(err, ledger.ErrConflict) {
			e.send(ctx, notify.Text{To: riderPhone, Body: msgOperatorError})
			return nil
		}
		if err != nil {
			return err
		}
		e.clearCurrentOrder(ctx, order.CustomerPhone, order.ID)
		e.send(ctx,
			notify.Text{To: order.CustomerPhone, Body: fmt.Sprintf("🎉 आपका ऑर्डर #%d डिलीवर हो गया! धन्यवाद 🙏", order.ID)},
			notify.Text{To: owner, Body: fmt.Sprintf("ऑर्डर #%d डिलीवर हो गया। COD: %s", order.ID, order.GrandTotal)},
		)
	}
	return nil
}

// clearCurrentOrder drops the customer's in-flight order pointer once
// the order is delivered. The rider's unit of work holds only the
// rider's lock, so the customer's session is touched under its own.
func (e *Engine) clearCurrentOrder(ctx context.Context, phone string, orderID int64) {
	lock := e.locks.get(phone)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.deps.Sessions.GetOrCreate(ctx, phone)
	if err != nil {
		log.Printf("bot: session load for delivered order %d failed: %v", orderID, err)
		return
	}
	if sess.CurrentOrderID != orderID {
		return
	}
	sess.CurrentOrderID = 0
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		log.Printf("bot: session save for delivered order %d failed: %v", orderID, err)
	}
}
