// README: Per-phone conversation session: state, cart, and scratch data.
package session

import (
	"kirana/internal/types"
)

// State is the conversation position for one phone number. Values are
// persisted as strings; Normalize rejects anything outside this set.
type State string

const (
	StateStart             State = "start"
	StateMenu              State = "menu"
	StateSelectingItem     State = "selecting_item"
	StateAwaitingQuantity  State = "awaiting_quantity"
	StateAddingToCart      State = "adding_to_cart"
	StateViewingCart       State = "viewing_cart"
	StateCollectingName    State = "collecting_name"
	StateCollectingAddress State = "collecting_address"
	StateVoiceOrder        State = "voice_order"
	StateVoiceConfirm      State = "voice_confirm"
)

var knownStates = map[State]bool{
	StateStart:             true,
	StateMenu:              true,
	StateSelectingItem:     true,
	StateAwaitingQuantity:  true,
	StateAddingToCart:      true,
	StateViewingCart:       true,
	StateCollectingName:    true,
	StateCollectingAddress: true,
	StateVoiceOrder:        true,
	StateVoiceConfirm:      true,
}

// Cart maps product id to pending quantity. It is owned exclusively by
// one session and cleared on order placement or reset.
type Cart map[int64]types.Quantity

// Scratch carries the transient data a state needs between messages.
// Only the fields relevant to the current state are populated.
type Scratch struct {
	// PendingProductID is set while awaiting a quantity for one product.
	PendingProductID int64 `json:"pending_product_id,omitempty"`
}

type Session struct {
	Phone          string  `json:"phone"`
	State          State   `json:"state"`
	Cart           Cart    `json:"cart"`
	Scratch        Scratch `json:"scratch"`
	CurrentOrderID int64   `json:"current_order_id,omitempty"`
}

// Reset puts the session back at the menu with an empty cart. This is
// the global recovery path for stuck conversations.
func (s *Session) Reset() {
	s.State = StateMenu
	s.Cart = Cart{}
	s.Scratch = Scratch{}
}

// Normalize repairs a session whose persisted state and scratch data
// disagree. An unknown state, or awaiting_quantity with no pending
// product, is corrupt; it falls back to start rather than crashing the
// handler mid-conversation.
func (s *Session) Normalize() {
	if s.Cart == nil {
		s.Cart = Cart{}
	}
	if !knownStates[s.State] {
		s.State = StateStart
		s.Scratch = Scratch{}
		return
	}
	if s.State == StateAwaitingQuantity && s.Scratch.PendingProductID == 0 {
		s.State = StateStart
		s.Scratch = Scratch{}
		return
	}
	if s.State != StateAwaitingQuantity {
		s.Scratch.PendingProductID = 0
	}
}
