// README: DB-backed ledger tests; run with KIRANA_TEST_DSN pointing at a scratch database.
package ledger

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"kirana/internal/modules/catalog"
	"kirana/internal/modules/customer"
	"kirana/internal/modules/pricing"
	"kirana/internal/types"
)

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("KIRANA_TEST_DSN")
	if dsn == "" {
		t.Skip("KIRANA_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, riders, customers, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewStore(pool), pool
}

func seedCustomer(t *testing.T, pool *pgxpool.Pool, phone string) customer.Customer {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO customers (phone, name, address) VALUES ($1, 'Test', 'Addr')`, phone)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.Customer{Phone: phone, Name: "Test", Address: "Addr"}
}

type staticCatalog map[int64]catalog.Product

func (c staticCatalog) GetByID(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := c[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func testLedgerService(store *Store) *Service {
	products := staticCatalog{
		1: {ID: 1, Name: "आलू", Price: types.Rupees(100), Active: true},
		2: {ID: 2, Name: "चीनी", Price: types.Rupees(250), Active: true},
	}
	pricer := pricing.NewService(products, pricing.Policy{
		Threshold: types.Rupees(500),
		FlatFee:   types.Rupees(50),
	})
	return NewService(store, pricer, products)
}

func TestOrderLifecycle(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")

	cart := map[int64]types.Quantity{1: 2 * types.QuantityOne, 2: types.QuantityOne}
	order, items, err := svc.Place(ctx, cust, cart)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if order.Status != StatusPlaced {
		t.Fatalf("status = %s, want PLACED", order.Status)
	}
	if order.GrandTotal != types.Rupees(500) {
		t.Errorf("grand total = %s, want ₹500", order.GrandTotal)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Skipping ahead is refused before touching the row.
	if _, err := svc.Advance(ctx, order.ID, StatusDelivered); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("skip advance err = %v, want ErrInvalidTransition", err)
	}

	order, err = svc.Advance(ctx, order.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if order.StatusVersion != 1 {
		t.Errorf("status version = %d, want 1", order.StatusVersion)
	}

	order, err = svc.AssignRider(ctx, order.ID, Rider{Phone: "922222222222", Name: "Rider"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if order.RiderPhone == nil || *order.RiderPhone != "922222222222" {
		t.Fatalf("rider phone = %v, want 922222222222", order.RiderPhone)
	}

	// Assignment from anywhere but ACCEPTED is refused.
	if _, err := svc.AssignRider(ctx, order.ID, Rider{Phone: "933333333333", Name: "Rider"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("re-assign err = %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.Advance(ctx, order.ID, StatusOutForDelivery); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}
	order, err = svc.Advance(ctx, order.ID, StatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if order.Status != StatusDelivered {
		t.Fatalf("status = %s, want DELIVERED", order.Status)
	}
}

func TestPlaceDropsStaleLine(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")

	cart := map[int64]types.Quantity{1: types.QuantityOne, 99: types.QuantityOne}
	order, items, err := svc.Place(ctx, cust, cart)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (stale line dropped)", len(items))
	}
	if order.ItemTotal != types.Rupees(100) {
		t.Errorf("item total = %s, want ₹100", order.ItemTotal)
	}
}

func TestPlaceEmptyCart(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	cust := seedCustomer(t, pool, "911111111111")

	if _, _, err := svc.Place(context.Background(), cust, nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestUpdateStatusStaleVersion(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")

	order, _, err := svc.Place(ctx, cust, map[int64]types.Quantity{1: types.QuantityOne})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	ok, err := store.UpdateStatus(ctx, order.ID, StatusPlaced, StatusAccepted, order.StatusVersion, nil)
	if err != nil || !ok {
		t.Fatalf("first update ok=%v err=%v", ok, err)
	}
	// Replaying the same move with the old version loses the race.
	ok, err = store.UpdateStatus(ctx, order.ID, StatusPlaced, StatusAccepted, order.StatusVersion, nil)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if ok {
		t.Fatal("stale version update succeeded, want refusal")
	}
}

func TestOldestPlacedOrdering(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")

	first, _, err := svc.Place(ctx, cust, map[int64]types.Quantity{1: types.QuantityOne})
	if err != nil {
		t.Fatalf("place first: %v", err)
	}
	if _, _, err := svc.Place(ctx, cust, map[int64]types.Quantity{2: types.QuantityOne}); err != nil {
		t.Fatalf("place second: %v", err)
	}

	got, err := svc.OldestPlaced(ctx)
	if err != nil {
		t.Fatalf("oldest placed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("oldest placed = #%d, want #%d", got.ID, first.ID)
	}

	// Accepting the oldest surfaces the next one.
	if _, err := svc.Advance(ctx, first.ID, StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, err = svc.OldestPlaced(ctx)
	if err != nil {
		t.Fatalf("oldest placed after accept: %v", err)
	}
	if got.ID == first.ID {
		t.Error("accepted order still reported as oldest placed")
	}
}

func TestSetLocationClosedOrder(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")

	order, _, err := svc.Place(ctx, cust, map[int64]types.Quantity{1: types.QuantityOne})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	pt := types.Point{Lat: 28.61, Lng: 77.20}
	if err := svc.RecordLocation(ctx, order.ID, pt); err != nil {
		t.Fatalf("record location: %v", err)
	}
	got, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location == nil || got.Location.Lat != pt.Lat {
		t.Fatalf("location = %v, want %v", got.Location, pt)
	}

	for _, next := range []Status{StatusAccepted, StatusRiderAssigned, StatusOutForDelivery, StatusDelivered} {
		if next == StatusRiderAssigned {
			if _, err := svc.AssignRider(ctx, order.ID, Rider{Phone: "922222222222", Name: "Rider"}); err != nil {
				t.Fatalf("assign: %v", err)
			}
			continue
		}
		if _, err := svc.Advance(ctx, order.ID, next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}

	err = svc.RecordLocation(ctx, order.ID, types.Point{Lat: 1, Lng: 1})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("location on delivered order err = %v, want ErrInvalidTransition", err)
	}
}

func TestLatestActiveByRider(t *testing.T) {
	store, pool := setupTestStore(t)
	svc := testLedgerService(store)
	ctx := context.Background()
	cust := seedCustomer(t, pool, "911111111111")
	rider := Rider{Phone: "922222222222", Name: "Rider"}

	if _, err := svc.LatestActiveByRider(ctx, rider.Phone); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no orders err = %v, want ErrNotFound", err)
	}

	order, _, err := svc.Place(ctx, cust, map[int64]types.Quantity{1: types.QuantityOne})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := svc.Advance(ctx, order.ID, StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.AssignRider(ctx, order.ID, rider); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := svc.LatestActiveByRider(ctx, rider.Phone)
	if err != nil {
		t.Fatalf("latest active: %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("latest active = #%d, want #%d", got.ID, order.ID)
	}

	if _, err := svc.Advance(ctx, order.ID, StatusOutForDelivery); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Advance(ctx, order.ID, StatusDelivered); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LatestActiveByRider(ctx, rider.Phone); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delivered order still active, err = %v, want ErrNotFound", err)
	}
}
