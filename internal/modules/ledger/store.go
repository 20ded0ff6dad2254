// README: Order ledger store backed by PostgreSQL.
package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kirana/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the order and its line items in one transaction; a
// partially written order is never visible.
func (s *Store) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (
			customer_phone, status, status_version,
			item_total_paise, delivery_fee_paise, grand_total_paise,
			created_at
		) VALUES ($1, $2, 0, $3, $4, $5, NOW())
		RETURNING id, created_at`,
		o.CustomerPhone,
		string(o.Status),
		o.ItemTotal.Paise,
		o.DeliveryFee.Paise,
		o.GrandTotal.Paise,
	)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return err
	}

	for i := range items {
		items[i].OrderID = o.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price_paise, quantity_milli)
			VALUES ($1, $2, $3, $4, $5)`,
			items[i].OrderID,
			items[i].ProductID,
			items[i].Name,
			items[i].UnitPrice.Paise,
			int64(items[i].Quantity),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	return s.scanOrder(s.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
}

func (s *Store) Items(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, product_id, name, unit_price_paise, quantity_milli
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		var qty int64
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice.Paise, &qty); err != nil {
			return nil, err
		}
		it.Quantity = types.Quantity(qty)
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order forward guarded by the optimistic
// status_version check; a false return means another actor won the
// race. riderPhone, when set, is written with the same statement so
// assignment and status move commit atomically.
func (s *Store) UpdateStatus(ctx context.Context, id int64, from, to Status, version int, riderPhone *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    rider_phone = COALESCE($2, rider_phone)
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		riderPhone,
		id,
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetLocation records or overwrites the delivery pin. Delivered orders
// are closed and keep their final coordinates.
func (s *Store) SetLocation(ctx context.Context, id int64, pt types.Point) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET location_lat = $1, location_lng = $2
		WHERE id = $3 AND status <> $4`,
		pt.Lat, pt.Lng, id, string(StatusDelivered),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// OldestPlaced returns the longest-waiting PLACED order, ties broken
// by creation order.
func (s *Store) OldestPlaced(ctx context.Context) (*Order, error) {
	return s.scanOrder(s.db.QueryRow(ctx, selectOrder+`
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT 1`, string(StatusPlaced)))
}

// LatestActiveByRider returns the rider's most recent order still in
// flight (assigned or out for delivery).
func (s *Store) LatestActiveByRider(ctx context.Context, riderPhone string) (*Order, error) {
	return s.scanOrder(s.db.QueryRow(ctx, selectOrder+`
		WHERE rider_phone = $1 AND status = ANY($2)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		riderPhone,
		[]string{string(StatusRiderAssigned), string(StatusOutForDelivery)},
	))
}

func (s *Store) RecentByCustomer(ctx context.Context, phone string, limit int) ([]*Order, error) {
	rows, err := s.db.Query(ctx, selectOrder+`
		WHERE customer_phone = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// EnsureRider creates the rider row on first assignment.
func (s *Store) EnsureRider(ctx context.Context, r Rider) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO riders (phone, name)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO NOTHING`, r.Phone, r.Name)
	return err
}

const selectOrder = `
	SELECT id, customer_phone, status, status_version,
	       item_total_paise, delivery_fee_paise, grand_total_paise,
	       location_lat, location_lng, rider_phone, created_at
	FROM orders`

func (s *Store) scanOrder(row pgx.Row) (*Order, error) {
	return scanOrderRow(row)
}

func scanOrderRow(row pgx.Row) (*Order, error) {
	var o Order
	var lat, lng *float64
	err := row.Scan(
		&o.ID, &o.CustomerPhone, &o.Status, &o.StatusVersion,
		&o.ItemTotal.Paise, &o.DeliveryFee.Paise, &o.GrandTotal.Paise,
		&lat, &lng, &o.RiderPhone, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		o.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &o, nil
}
