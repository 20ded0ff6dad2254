// README: Owner command handler: accept the oldest pending order, auto-assign a rider.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kirana/internal/modules/ledger"
	"kirana/internal/notify"
)

// handleOwner runs before any session lookup; the owner's phone never
// enters the shopping flow.
func (e *Engine) handleOwner(ctx context.Context, text string) error {
	owner := e.deps.Config.OwnerPhone

	switch text {
	case cmdOwnerAccept, "accept":
	default:
		// Unrecognized owner input is ignored, matching how the shop
		// phone is also used for ordinary conversations.
		return nil
	}

	order, err := e.deps.Ledger.OldestPlaced(ctx)
	if errors.Is(err, ledger.ErrNotFound) {
		e.send(ctx, notify.Text{To: owner, Body: msgNoPendingOrders})
		return nil
	}
	if err != nil {
		return err
	}

	order, err = e.deps.Ledger.Advance(ctx, order.ID, ledger.StatusAccepted)
	if errors.Is(err, ledger.ErrInvalidTransition) || errors.Is(err, ledger.ErrConflict) {
		e.send(ctx, notify.Text{To: owner, Body: msgOperatorError})
		return nil
	}
	if err != nil {
		return err
	}

	e.send(ctx,
		notify.Text{
			To:   order.CustomerPhone,
			Body: fmt.Sprintf("✅ आपका ऑर्डर #%d एक्सेप्ट हो गया! जल्द डिलीवरी होगी।", order.ID),
		},
		notify.Text{To: owner, Body: "ऑर्डर एक्सेप्ट हो गया। अब राइडर असाइन करें।"},
	)

	// Auto-assign the first configured rider. Policy is deliberate:
	// always the first in the list, no load balancing.
	if len(e.deps.Config.RiderPhones) == 0 {
		return nil
	}
	riderPhone := e.deps.Config.RiderPhones[0]
	order, err = e.deps.Ledger.AssignRider(ctx, order.ID, ledger.Rider{Phone: riderPhone, Name: "Rider"})
	if err != nil {
		// Acceptance already committed and was announced; assignment
		// can be retried by hand, so log rather than fail the unit.
		log.Printf("bot: rider auto-assignment failed for order %d: %v", order.ID, err)
		return nil
	}

	cust, err := e.deps.Customers.Get(ctx, order.CustomerPhone)
	if err != nil {
		log.Printf("bot: customer lookup for rider note failed: %v", err)
	}
	items, err := e.deps.Ledger.Items(ctx, order.ID)
	if err != nil {
		log.Printf("bot: item lookup for rider note failed: %v", err)
	}
	mapLine := ""
	if order.Location != nil {
		mapLine = order.Location.MapLink()
		if addr, geoErr := e.deps.Geocoder.ReverseGeocode(ctx, *order.Location); geoErr == nil && addr != "" {
			mapLine = addr + "\n" + mapLine
		}
	}
	e.send(ctx,
		riderAssignmentMessage(riderPhone, cust.Name, cust.Phone, cust.Address, mapLine, order, items),
		notify.Text{To: owner, Body: "राइडर को मैसेज भेज दिया गया।"},
	)
	return nil
}
