// README: Customer conversation flow: the state transition table.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kirana/internal/modules/catalog"
	"kirana/internal/modules/ledger"
	"kirana/internal/modules/session"
	"kirana/internal/notify"
	"kirana/internal/types"
)

func (e *Engine) handleCustomer(ctx context.Context, in Inbound, text, contactName string) error {
	sess, err := e.deps.Sessions.GetOrCreate(ctx, in.From)
	if err != nil {
		return err
	}

	// Location pins short-circuit every state: they only make sense
	// against the in-flight order.
	if in.Kind == KindLocation && in.Location != nil {
		return e.handleLocation(ctx, sess, *in.Location)
	}

	// Voice notes short-circuit to the NLU intake from any state.
	if in.Kind == KindAudio {
		return e.handleVoiceNote(ctx, sess, in.AudioID)
	}

	// Global interrupt: reset keywords recover a stuck conversation
	// from any state, before state-specific handling.
	if e.isResetKeyword(text) || sess.State == session.StateStart {
		sess.Reset()
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, welcomeMessage(sess.Phone))
		return nil
	}

	// Menu-level commands are honored from any state, mirroring the
	// welcome buttons staying on screen in the chat history. The
	// numeric aliases only apply in the menu state itself: elsewhere a
	// bare digit is data (a product id or a quantity).
	cmd := text
	if sess.State == session.StateMenu {
		switch text {
		case "1":
			cmd = cmdMenu
		case "2":
			cmd = cmdStatus
		case "3":
			cmd = cmdVoice
		}
	}
	switch cmd {
	case cmdMenu:
		return e.showMenu(ctx, sess)
	case cmdStatus:
		return e.showOrderStatus(ctx, sess)
	case cmdVoice:
		sess.State = session.StateVoiceOrder
		sess.Scratch = session.Scratch{}
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoicePrompt})
		return nil
	}

	switch sess.State {
	case session.StateSelectingItem:
		return e.selectItem(ctx, sess, text)
	case session.StateAwaitingQuantity:
		return e.addQuantity(ctx, sess, text)
	case session.StateAddingToCart:
		switch text {
		case cmdAddMore:
			return e.showMenu(ctx, sess)
		case cmdViewCart:
			return e.showCart(ctx, sess)
		}
	case session.StateViewingCart:
		switch text {
		case cmdConfirmOrder:
			return e.startCheckout(ctx, sess)
		case cmdBackToMenu, cmdAddMore:
			return e.showMenu(ctx, sess)
		}
	case session.StateVoiceOrder:
		if text != "" {
			return e.voiceIntake(ctx, sess, text)
		}
	case session.StateVoiceConfirm:
		switch text {
		case cmdVoiceYes:
			return e.startCheckout(ctx, sess)
		case cmdVoiceNo:
			sess.State = session.StateVoiceOrder
			if err := e.deps.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			e.send(ctx, notify.Text{To: sess.Phone, Body: msgVoicePrompt})
			return nil
		}
	case session.StateCollectingName:
		if text != "" {
			return e.collectName(ctx, sess, strings.TrimSpace(in.Text))
		}
	case session.StateCollectingAddress:
		if text != "" {
			return e.collectAddress(ctx, sess, strings.TrimSpace(in.Text), contactName)
		}
	}

	// Fallback for every unmatched (state, input) pair: welcome
	// prompt and back to the menu.
	sess.Reset()
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, welcomeMessage(sess.Phone))
	return nil
}

func (e *Engine) showMenu(ctx context.Context, sess *session.Session) error {
	products, err := e.deps.Catalog.ListActive(ctx)
	if err != nil {
		return err
	}
	sess.State = session.StateSelectingItem
	sess.Scratch = session.Scratch{}
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, menuMessage(sess.Phone, catalog.Grouped(products)))
	return nil
}

// showOrderStatus renders the customer's last five orders; the
// session state is left untouched.
func (e *Engine) showOrderStatus(ctx context.Context, sess *session.Session) error {
	orders, err := e.deps.Ledger.RecentByCustomer(ctx, sess.Phone, 5)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgNoOrdersYet})
		return nil
	}
	var b strings.Builder
	b.WriteString("आपके हाल के ऑर्डर:\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "#%d - %s - %s\n", o.ID, o.GrandTotal, statusLabel(o.Status))
	}
	e.send(ctx, notify.Text{To: sess.Phone, Body: b.String()})
	return nil
}

func (e *Engine) selectItem(ctx context.Context, sess *session.Session, text string) error {
	id, convErr := strconv.ParseInt(text, 10, 64)
	var p catalog.Product
	var err error
	if convErr == nil {
		p, err = e.deps.Catalog.GetByID(ctx, id)
	}
	if convErr != nil || errors.Is(err, catalog.ErrNotFound) {
		// Invalid selection: stay in state, re-render the menu.
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgBadSelection})
		products, listErr := e.deps.Catalog.ListActive(ctx)
		if listErr != nil {
			return listErr
		}
		e.send(ctx, menuMessage(sess.Phone, catalog.Grouped(products)))
		return nil
	}
	if err != nil {
		return err
	}

	sess.State = session.StateAwaitingQuantity
	sess.Scratch = session.Scratch{PendingProductID: p.ID}
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, productDetailMessage(sess.Phone, p))
	return nil
}

func (e *Engine) addQuantity(ctx context.Context, sess *session.Session, text string) error {
	productID := sess.Scratch.PendingProductID
	if productID == 0 {
		// Scratch lost its pending product: corrupt state, reset.
		sess.Reset()
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgSomethingWrong}, welcomeMessage(sess.Phone))
		return nil
	}

	qty, err := types.ParseQuantity(text)
	if err != nil {
		// Unparsable quantity: corrective prompt, stay in state,
		// pending product untouched so the customer can retry.
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgBadQuantity})
		return nil
	}

	p, err := e.deps.Catalog.GetByID(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		sess.Reset()
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgSomethingWrong}, welcomeMessage(sess.Phone))
		return nil
	}
	if err != nil {
		return err
	}

	sess.Cart[p.ID] = qty
	sess.State = session.StateAddingToCart
	sess.Scratch = session.Scratch{}
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, addedToCartMessage(sess.Phone, p.Name, qty.String()))
	return nil
}

func (e *Engine) showCart(ctx context.Context, sess *session.Session) error {
	if len(sess.Cart) == 0 {
		sess.Reset()
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgEmptyCart}, welcomeMessage(sess.Phone))
		return nil
	}
	summary, _, err := e.deps.Pricer.Summary(ctx, sess.Cart)
	if err != nil {
		return err
	}
	sess.State = session.StateViewingCart
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, cartMessage(sess.Phone, summary))
	return nil
}

func (e *Engine) startCheckout(ctx context.Context, sess *session.Session) error {
	if len(sess.Cart) == 0 {
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgEmptyCartShort})
		return nil
	}
	_, totals, err := e.deps.Pricer.Summary(ctx, sess.Cart)
	if err != nil {
		return err
	}
	if _, err := e.deps.Customers.GetOrCreate(ctx, sess.Phone); err != nil {
		return err
	}
	sess.State = session.StateCollectingName
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, notify.Text{
		To:   sess.Phone,
		Body: fmt.Sprintf("ऑर्डर कन्फर्म करने जा रहे हैं। कुल: %s\n\nअपना नाम बताएं:", totals.GrandTotal),
	})
	return nil
}

func (e *Engine) collectName(ctx context.Context, sess *session.Session, name string) error {
	if err := e.deps.Customers.SetName(ctx, sess.Phone, name); err != nil {
		return err
	}
	sess.State = session.StateCollectingAddress
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.send(ctx, notify.Text{
		To:   sess.Phone,
		Body: fmt.Sprintf("धन्यवाद %s! %s", name, msgAskAddress),
	})
	return nil
}

// collectAddress is the single-fire transition that places the order.
// Everything irrevocable (customer update, order insert, session
// clear) commits before any notification goes out.
func (e *Engine) collectAddress(ctx context.Context, sess *session.Session, address, contactName string) error {
	if err := e.deps.Customers.SetAddress(ctx, sess.Phone, address); err != nil {
		return err
	}
	cust, err := e.deps.Customers.Get(ctx, sess.Phone)
	if err != nil {
		return err
	}
	if cust.Name == "" {
		cust.Name = contactName
	}

	order, items, err := e.deps.Ledger.Place(ctx, cust, sess.Cart)
	if errors.Is(err, ledger.ErrEmptyCart) {
		sess.Reset()
		if err := e.deps.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		e.send(ctx, notify.Text{To: sess.Phone, Body: msgEmptyCart}, welcomeMessage(sess.Phone))
		return nil
	}
	if err != nil {
		return err
	}

	sess.CurrentOrderID = order.ID
	sess.Cart = session.Cart{}
	sess.Scratch = session.Scratch{}
	sess.State = session.StateMenu
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		return err
	}

	mapLine := "लोकेशन नहीं दी गई"
	if order.Location != nil {
		mapLine = order.Location.MapLink()
	}
	e.send(ctx,
		orderPlacedMessage(sess.Phone, order),
		ownerNewOrderMessage(e.deps.Config.OwnerPhone, cust.Name, cust.Phone, cust.Address, mapLine, order, items),
	)
	return nil
}

// handleLocation records a dropped pin against the in-flight order and
// forwards it to the owner, reverse-geocoded when a Maps key is
// configured.
func (e *Engine) handleLocation(ctx context.Context, sess *session.Session, pt types.Point) error {
	if sess.CurrentOrderID == 0 {
		return nil
	}
	err := e.deps.Ledger.RecordLocation(ctx, sess.CurrentOrderID, pt)
	if errors.Is(err, ledger.ErrInvalidTransition) {
		// Order already delivered; nothing to update.
		return nil
	}
	if err != nil {
		return err
	}

	mapLine := pt.MapLink()
	if addr, geoErr := e.deps.Geocoder.ReverseGeocode(ctx, pt); geoErr == nil && addr != "" {
		mapLine = addr + "\n" + mapLine
	}
	e.send(ctx,
		notify.Text{To: sess.Phone, Body: msgLocationThanks},
		notify.Text{To: e.deps.Config.OwnerPhone, Body: fmt.Sprintf("ऑर्डर #%d की लोकेशन:\n%s", sess.CurrentOrderID, mapLine)},
	)
	return nil
}
