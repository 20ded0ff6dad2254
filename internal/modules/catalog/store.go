// README: Catalog store backed by PostgreSQL.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListActive returns all active products ordered by category then
// name, the order the WhatsApp list menu renders them in.
func (s *Store) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, price_paise, category, active, COALESCE(image_url, '')
		FROM products
		WHERE active
		ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price.Paise, &p.Category, &p.Active, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID resolves an active product. Inactive and unknown ids both
// come back as ErrNotFound so stale menu selections are rejected.
func (s *Store) GetByID(ctx context.Context, id int64) (Product, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, price_paise, category, active, COALESCE(image_url, '')
		FROM products
		WHERE id = $1 AND active`, id)
	return scanProduct(row)
}

// GetByName resolves a product by exact name; with fuzzy set, falls
// back to case-folded substring containment in either direction, first
// match in menu order winning.
func (s *Store) GetByName(ctx context.Context, name string, fuzzy bool) (Product, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, price_paise, category, active, COALESCE(image_url, '')
		FROM products
		WHERE name = $1 AND active`, name)
	p, err := scanProduct(row)
	if err == nil || !fuzzy {
		return p, err
	}
	if !errors.Is(err, ErrNotFound) {
		return Product{}, err
	}

	all, err := s.ListActive(ctx)
	if err != nil {
		return Product{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Product{}, ErrNotFound
	}
	for _, p := range all {
		hay := strings.ToLower(p.Name)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price.Paise, &p.Category, &p.Active, &p.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}
