// README: Order ledger service: creation, forward-only status moves, rider assignment.
package ledger

import (
	"context"
	"errors"
	"log"
	"sort"

	"kirana/internal/modules/catalog"
	"kirana/internal/modules/customer"
	"kirana/internal/modules/pricing"
	"kirana/internal/types"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("order status conflict")
	ErrEmptyCart         = errors.New("cart is empty")
)

// CartPricer computes totals for a cart snapshot. pricing.Service
// satisfies it.
type CartPricer interface {
	Compute(ctx context.Context, cart map[int64]types.Quantity) (pricing.Totals, error)
}

// ProductResolver resolves cart entries to products for the line-item
// snapshot. catalog.Store satisfies it.
type ProductResolver interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
}

type Service struct {
	store    *Store
	pricer   CartPricer
	products ProductResolver
}

func NewService(store *Store, pricer CartPricer, products ProductResolver) *Service {
	return &Service{store: store, pricer: pricer, products: products}
}

// Place snapshots the cart into an immutable order. Entries whose
// product no longer resolves are skipped with a logged discrepancy; a
// single stale line never fails the whole placement. Placement is not
// idempotent; the caller's per-phone serialization is the only guard
// against double submission.
func (s *Service) Place(ctx context.Context, cust customer.Customer, cart map[int64]types.Quantity) (*Order, []Item, error) {
	if len(cart) == 0 {
		return nil, nil, ErrEmptyCart
	}
	totals, err := s.pricer.Compute(ctx, cart)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var items []Item
	for _, id := range ids {
		qty := cart[id]
		p, err := s.products.GetByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			log.Printf("ledger: dropping unresolvable cart line product=%d phone=%s", id, cust.Phone)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
	}

	o := &Order{
		CustomerPhone: cust.Phone,
		Status:        StatusPlaced,
		ItemTotal:     totals.ItemTotal,
		DeliveryFee:   totals.DeliveryFee,
		GrandTotal:    totals.GrandTotal,
	}
	if err := s.store.Create(ctx, o, items); err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

// Advance moves an order exactly one step forward in the fulfilment
// sequence. Skips and reversals fail with ErrInvalidTransition; losing
// an optimistic race fails with ErrConflict.
func (s *Service) Advance(ctx context.Context, orderID int64, to Status) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.store.Get(ctx, orderID)
}

// AssignRider is only legal from ACCEPTED; the rider row is created
// lazily and the status move commits atomically with the assignment.
func (s *Service) AssignRider(ctx context.Context, orderID int64, r Rider) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusAccepted {
		return nil, ErrInvalidTransition
	}
	if err := s.store.EnsureRider(ctx, r); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, StatusAccepted, StatusRiderAssigned, o.StatusVersion, &r.Phone)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.store.Get(ctx, orderID)
}

// RecordLocation overwrites the delivery pin any time before the order
// is delivered.
func (s *Service) RecordLocation(ctx context.Context, orderID int64, pt types.Point) error {
	ok, err := s.store.SetLocation(ctx, orderID, pt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*Order, error) {
	return s.store.Get(ctx, orderID)
}

func (s *Service) Items(ctx context.Context, orderID int64) ([]Item, error) {
	return s.store.Items(ctx, orderID)
}

func (s *Service) OldestPlaced(ctx context.Context) (*Order, error) {
	return s.store.OldestPlaced(ctx)
}

func (s *Service) LatestActiveByRider(ctx context.Context, riderPhone string) (*Order, error) {
	return s.store.LatestActiveByRider(ctx, riderPhone)
}

func (s *Service) RecentByCustomer(ctx context.Context, phone string, limit int) ([]*Order, error) {
	return s.store.RecentByCustomer(ctx, phone, limit)
}
