// README: Pricing policy values and totals result.
package pricing

import "kirana/internal/types"

// Policy is the delivery-fee rule: a flat fee below the free-delivery
// threshold, zero at or above it.
type Policy struct {
	Threshold types.Money
	FlatFee   types.Money
}

type Totals struct {
	ItemTotal   types.Money
	DeliveryFee types.Money
	GrandTotal  types.Money
	// Missing lists cart product ids that no longer resolve to an
	// active product. They contribute nothing to the totals but are
	// reported, never silently dropped from the cart itself.
	Missing []int64
}

func (p Policy) deliveryFee(itemTotal types.Money) types.Money {
	if itemTotal.LessThan(p.Threshold) {
		return p.FlatFee
	}
	return types.Money{}
}
