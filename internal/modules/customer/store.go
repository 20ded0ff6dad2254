// README: Customer store backed by PostgreSQL.
package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, phone string) (Customer, error) {
	row := s.db.QueryRow(ctx, `
		SELECT phone, name, address FROM customers WHERE phone = $1`, phone)
	var c Customer
	err := row.Scan(&c.Phone, &c.Name, &c.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *Store) GetOrCreate(ctx context.Context, phone string) (Customer, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO customers (phone, name, address)
		VALUES ($1, '', '')
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING phone, name, address`, phone)
	var c Customer
	if err := row.Scan(&c.Phone, &c.Name, &c.Address); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *Store) SetName(ctx context.Context, phone, name string) error {
	_, err := s.db.Exec(ctx, `UPDATE customers SET name = $2 WHERE phone = $1`, phone, name)
	return err
}

func (s *Store) SetAddress(ctx context.Context, phone, address string) error {
	_, err := s.db.Exec(ctx, `UPDATE customers SET address = $2 WHERE phone = $1`, phone, address)
	return err
}
