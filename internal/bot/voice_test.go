// README: Voice intake and catalog matching tests.
package bot

import (
	"context"
	"testing"

	"kirana/internal/ai"
	"kirana/internal/modules/catalog"
	"kirana/internal/modules/session"
	"kirana/internal/types"
)

func qtyPtr(q types.Quantity) *types.Quantity { return &q }

func seedVoiceSession(t *testing.T, h *harness) {
	t.Helper()
	s := &session.Session{Phone: customerPhone, State: session.StateVoiceOrder, Cart: session.Cart{}}
	if err := h.sessions.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
}

func TestVoiceIntakeMatchesAndConfirms(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "आलू", Quantity: qtyPtr(2000), Fragment: "2 किलो आलू"},
	}

	h.handle(t, textIn(customerPhone, "2 किलो आलू"))

	s := h.session(t, customerPhone)
	if s.State != session.StateVoiceConfirm {
		t.Fatalf("state = %s, want voice_confirm", s.State)
	}
	if s.Cart[1] != 2000 {
		t.Fatalf("cart = %v, want आलू at 2000", s.Cart)
	}
	if _, ok := h.out.bodyContaining("क्या यह सही है?"); !ok {
		t.Error("confirmation prompt missing")
	}
}

func TestVoiceRepeatOverwritesQuantity(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "आलू", Quantity: qtyPtr(2000), Fragment: "2 किलो आलू"},
	}

	h.handle(t, textIn(customerPhone, "2 किलो आलू"))
	h.handle(t, replyIn(customerPhone, cmdVoiceNo))
	if got := h.session(t, customerPhone).State; got != session.StateVoiceOrder {
		t.Fatalf("state = %s, want voice_order after edit", got)
	}

	h.handle(t, textIn(customerPhone, "2 किलो आलू"))
	if got := h.session(t, customerPhone).Cart[1]; got != 2000 {
		t.Errorf("cart quantity = %d, want 2000 (overwrite, not accumulate)", got)
	}
}

func TestVoiceDefaultQuantityIsOne(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "चीनी", Fragment: "चीनी"},
	}

	h.handle(t, textIn(customerPhone, "चीनी"))

	if got := h.session(t, customerPhone).Cart[2]; got != types.QuantityOne {
		t.Errorf("cart quantity = %d, want default one unit", got)
	}
}

func TestVoiceNothingMatchedStaysInIntake(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "झाड़ू", Fragment: "एक झाड़ू"},
	}

	h.handle(t, textIn(customerPhone, "एक झाड़ू"))

	s := h.session(t, customerPhone)
	if s.State != session.StateVoiceOrder {
		t.Errorf("state = %s, want voice_order", s.State)
	}
	if len(s.Cart) != 0 {
		t.Errorf("cart = %v, want untouched", s.Cart)
	}
	if _, ok := h.out.bodyContaining("नहीं मिले"); !ok {
		t.Error("unresolved report missing")
	}
	if _, ok := h.out.bodyContaining("एक झाड़ू"); !ok {
		t.Error("unresolved report must echo the original fragment")
	}
}

func TestVoiceUnresolvedSuggestions(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "आलू", Quantity: qtyPtr(1000), Fragment: "1 किलो आलू"},
		{Name: "बासमती", Fragment: "चाव बासमती"},
	}

	h.handle(t, textIn(customerPhone, "1 किलो आलू और चाव बासमती"))

	s := h.session(t, customerPhone)
	if s.State != session.StateVoiceConfirm {
		t.Fatalf("state = %s, want voice_confirm with partial match", s.State)
	}
	if s.Cart[1] != 1000 {
		t.Errorf("cart = %v, want आलू matched", s.Cart)
	}
	if _, ok := h.out.bodyContaining("शायद: चावल"); !ok {
		t.Error("suggestion for the unresolved fragment missing")
	}
}

func TestVoiceConfirmStartsCheckout(t *testing.T) {
	h := newHarness()
	seedVoiceSession(t, h)
	h.parser.items = []ai.ParsedItem{
		{Name: "चीनी", Quantity: qtyPtr(2000), Fragment: "2 किलो चीनी"},
	}

	h.handle(t, textIn(customerPhone, "2 किलो चीनी"))
	h.handle(t, replyIn(customerPhone, cmdVoiceYes))

	if got := h.session(t, customerPhone).State; got != session.StateCollectingName {
		t.Errorf("state = %s, want collecting_name", got)
	}
}

func TestSuggest(t *testing.T) {
	products := []catalog.Product{
		{ID: 1, Name: "चावल बासमती"},
		{ID: 2, Name: "चावल सोना मसूरी"},
		{ID: 3, Name: "चावल टूटा"},
	}
	got := suggest(products, "चावल कोई भी")
	if len(got) != 2 {
		t.Fatalf("suggest returned %d names, want capped at 2", len(got))
	}
	if got[0] != "चावल बासमती" || got[1] != "चावल सोना मसूरी" {
		t.Errorf("suggestions = %v, want first two in menu order", got)
	}
	if out := suggest(products, ""); out != nil {
		t.Errorf("suggest on empty fragment = %v, want nil", out)
	}
}
