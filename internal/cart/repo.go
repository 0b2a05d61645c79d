package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrOutOfStock     = errors.New("product is out of stock")
)

type Repo struct{ DB *pgxpool.Pool }

// AddItem upserts the user's cart and increments the item quantity by qty,
// inserting with that quantity when the product is not in the cart yet.
//
// The stock check here is a soft gate: it stops obviously dead adds but makes
// no atomicity promise. Authority over stock lives in checkout's conditional
// decrement.
func (r *Repo) AddItem(ctx context.Context, userID, productID string, qty int) (*Item, error) {
	if qty <= 0 {
		return nil, errors.New("qty must be positive")
	}

	var stock *int
	err := r.DB.QueryRow(ctx, `
		SELECT i.quantity
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidProduct
	}
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, ErrInvalidProduct
	}
	if *stock <= 0 {
		return nil, ErrOutOfStock
	}

	var cartID string
	err = r.DB.QueryRow(ctx, `
		INSERT INTO carts(id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`, uuid.NewString(), userID).Scan(&cartID)
	if err != nil {
		return nil, err
	}

	var it Item
	err = r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING product_id, quantity`, cartID, productID, qty).
		Scan(&it.ProductID, &it.Qty)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) GetCart(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT ci.product_id, p.name, ci.quantity, p.price_cents, i.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN inventory i ON i.product_id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Qty, &it.PriceCents, &it.Stock); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (r *Repo) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = $2`,
		userID, productID)
	return err
}

func (r *Repo) ClearCart(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1`, userID)
	return err
}
