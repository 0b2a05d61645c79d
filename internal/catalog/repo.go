package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.name, p.category, p.price_cents, p.created_at, p.updated_at, i.quantity
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents,
			&p.CreatedAt, &p.UpdatedAt, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT p.id, p.name, p.category, p.price_cents, p.created_at, p.updated_at, i.quantity
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
