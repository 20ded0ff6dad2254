// README: Pricing totals and summary tests against a fixed catalog.
package pricing

import (
	"context"
	"strings"
	"testing"

	"kirana/internal/modules/catalog"
	"kirana/internal/types"
)

type fixedCatalog map[int64]catalog.Product

func (f fixedCatalog) GetByID(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := f[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func testService() *Service {
	products := fixedCatalog{
		1: {ID: 1, Name: "आलू", Price: types.Rupees(100), Category: "सब्ज़ियाँ", Active: true},
		2: {ID: 2, Name: "चीनी", Price: types.Rupees(250), Category: "किराना", Active: true},
	}
	return NewService(products, Policy{
		Threshold: types.Rupees(500),
		FlatFee:   types.Rupees(50),
	})
}

func TestComputeBelowThreshold(t *testing.T) {
	s := testService()
	cart := map[int64]types.Quantity{1: 2 * types.QuantityOne, 2: types.QuantityOne}

	got, err := s.Compute(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	if got.ItemTotal != types.Rupees(450) {
		t.Errorf("item total = %s, want ₹450", got.ItemTotal)
	}
	if got.DeliveryFee != types.Rupees(50) {
		t.Errorf("delivery fee = %s, want ₹50", got.DeliveryFee)
	}
	if got.GrandTotal != types.Rupees(500) {
		t.Errorf("grand total = %s, want ₹500", got.GrandTotal)
	}
	if len(got.Missing) != 0 {
		t.Errorf("missing = %v, want none", got.Missing)
	}
}

func TestComputeAtThresholdFreeDelivery(t *testing.T) {
	s := testService()
	cart := map[int64]types.Quantity{2: 2 * types.QuantityOne} // ₹500 exactly

	got, err := s.Compute(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	if !got.DeliveryFee.IsZero() {
		t.Errorf("delivery fee = %s, want free at threshold", got.DeliveryFee)
	}
	if got.GrandTotal != got.ItemTotal {
		t.Errorf("grand total = %s, want %s", got.GrandTotal, got.ItemTotal)
	}
}

func TestComputeMissingProduct(t *testing.T) {
	s := testService()
	cart := map[int64]types.Quantity{1: types.QuantityOne, 99: types.QuantityOne}

	got, err := s.Compute(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	if got.ItemTotal != types.Rupees(100) {
		t.Errorf("item total = %s, want ₹100 without the stale line", got.ItemTotal)
	}
	if len(got.Missing) != 1 || got.Missing[0] != 99 {
		t.Errorf("missing = %v, want [99]", got.Missing)
	}
	if _, ok := cart[99]; !ok {
		t.Error("cart entry removed; Compute must not mutate the cart")
	}
}

func TestSummaryDeterministic(t *testing.T) {
	s := testService()
	cart := map[int64]types.Quantity{1: 1500, 2: types.QuantityOne}

	first, ft, err := s.Summary(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	second, st, err := s.Summary(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("summary not deterministic:\n%s\n---\n%s", first, second)
	}
	if ft.GrandTotal != st.GrandTotal {
		t.Errorf("totals differ between identical calls: %s vs %s", ft.GrandTotal, st.GrandTotal)
	}
	if !strings.Contains(first, "आलू - 1.5") {
		t.Errorf("summary missing line for 1.5 of आलू:\n%s", first)
	}
}

func TestSummaryRemovedItemPlaceholder(t *testing.T) {
	s := testService()
	cart := map[int64]types.Quantity{99: types.QuantityOne}

	got, totals, err := s.Summary(context.Background(), cart)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "हटा दिया गया") {
		t.Errorf("summary missing removed-item placeholder:\n%s", got)
	}
	if !totals.ItemTotal.IsZero() {
		t.Errorf("item total = %s, want zero", totals.ItemTotal)
	}
}
