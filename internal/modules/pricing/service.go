// README: Pricing service computes cart totals and renders cart summaries.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"kirana/internal/modules/catalog"
	"kirana/internal/types"
)

// ProductResolver is the slice of the catalog the pricing engine
// needs. catalog.Store satisfies it.
type ProductResolver interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
}

type Service struct {
	products ProductResolver
	policy   Policy
}

func NewService(products ProductResolver, policy Policy) *Service {
	return &Service{products: products, policy: policy}
}

// Compute prices a cart against live catalog data. Entries whose
// product has been removed or deactivated are collected in
// Totals.Missing; the cart is not mutated.
func (s *Service) Compute(ctx context.Context, cart map[int64]types.Quantity) (Totals, error) {
	var t Totals
	for _, id := range sortedIDs(cart) {
		p, err := s.products.GetByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			t.Missing = append(t.Missing, id)
			continue
		}
		if err != nil {
			return Totals{}, err
		}
		t.ItemTotal = t.ItemTotal.Add(p.Price.MulQty(cart[id]))
	}
	t.DeliveryFee = s.policy.deliveryFee(t.ItemTotal)
	t.GrandTotal = t.ItemTotal.Add(t.DeliveryFee)
	return t, nil
}

// Summary renders the customer-facing cart text. Stale entries show a
// removed-item placeholder line instead of aborting the render; two
// calls on the same cart produce byte-identical output.
func (s *Service) Summary(ctx context.Context, cart map[int64]types.Quantity) (string, Totals, error) {
	t, err := s.Compute(ctx, cart)
	if err != nil {
		return "", Totals{}, err
	}

	lines := []string{"आपका कार्ट:"}
	for _, id := range sortedIDs(cart) {
		qty := cart[id]
		p, err := s.products.GetByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			lines = append(lines, fmt.Sprintf("• आइटम %d - %s (हटा दिया गया)", id, qty))
			continue
		}
		if err != nil {
			return "", Totals{}, err
		}
		lines = append(lines, fmt.Sprintf("• %s - %s @ %s = %s", p.Name, qty, p.Price, p.Price.MulQty(qty)))
	}

	lines = append(lines, "")
	lines = append(lines, "आइटम टोटल: "+t.ItemTotal.String())
	if t.DeliveryFee.IsZero() {
		lines = append(lines, "डिलीवरी चार्ज: "+t.DeliveryFee.String()+" (फ्री!)")
	} else {
		lines = append(lines, fmt.Sprintf("डिलीवरी चार्ज: %s (%s से कम पर)", t.DeliveryFee, s.policy.Threshold))
	}
	lines = append(lines, "ग्रैंड टोटल: "+t.GrandTotal.String())
	return strings.Join(lines, "\n"), t, nil
}

func sortedIDs(cart map[int64]types.Quantity) []int64 {
	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
