package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/gostorefront/shop-api/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a pgx connection pool.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTxStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTxStore struct{ tx pgx.Tx }

func (s *pgTxStore) CartSnapshot(ctx context.Context, userID string) (*CartSnapshot, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT c.id, ci.product_id, p.name, ci.quantity, p.price_cents, i.quantity
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		JOIN products p    ON p.id = ci.product_id
		LEFT JOIN inventory i ON i.product_id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.product_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &CartSnapshot{}
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(&snap.CartID, &line.ProductID, &line.Name,
			&line.Qty, &line.PriceCents, &line.Stock); err != nil {
			return nil, err
		}
		snap.Lines = append(snap.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *pgTxStore) DecrementStock(ctx context.Context, productID string, qty int) (int64, error) {
	ct, err := s.tx.Exec(ctx, `
		UPDATE inventory
		SET quantity = quantity - $2, updated_at = now()
		WHERE product_id = $1 AND quantity >= $2`, productID, qty)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *pgTxStore) InsertOrder(ctx context.Context, userID string, totalCents int, lines []OrderLine) (*orders.Order, error) {
	o := &orders.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		TotalCents: totalCents,
	}
	err := s.tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, total_cents)
		VALUES ($1, $2, $3)
		RETURNING created_at`, o.ID, o.UserID, o.TotalCents).Scan(&o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		it := orders.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  line.ProductID,
			Qty:        line.Qty,
			PriceCents: line.PriceCents,
		}
		if _, err := s.tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, it.OrderID, it.ProductID, it.Qty, it.PriceCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, nil
}

func (s *pgTxStore) DeleteCartItems(ctx context.Context, cartID string) error {
	_, err := s.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
