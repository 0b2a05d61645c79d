package checkout

import (
	"context"

	"github.com/gostorefront/shop-api/internal/orders"
)

// CartLine is one cart item joined with its product and inventory as seen by
// the checkout snapshot.
type CartLine struct {
	ProductID  string
	Name       string
	Qty        int
	PriceCents int
	// Stock is nil when the product has no inventory row at all.
	Stock *int
}

type CartSnapshot struct {
	CartID string
	Lines  []CartLine
}

type OrderLine struct {
	ProductID  string
	Qty        int
	PriceCents int
}

// TxStore is the transactional boundary the checkout algorithm runs against.
// All methods execute inside the transaction opened by Store.WithinTx.
type TxStore interface {
	// CartSnapshot loads the user's cart with items, product prices and
	// current inventory in one consistent read. Returns a snapshot with zero
	// lines when the user has no cart or the cart is empty.
	CartSnapshot(ctx context.Context, userID string) (*CartSnapshot, error)

	// DecrementStock applies the conditional decrement
	// "quantity = quantity - qty WHERE product_id = id AND quantity >= qty"
	// and reports how many rows were affected (0 or 1).
	DecrementStock(ctx context.Context, productID string, qty int) (int64, error)

	// InsertOrder persists the order and its line items and returns the
	// created record.
	InsertOrder(ctx context.Context, userID string, totalCents int, lines []OrderLine) (*orders.Order, error)

	// DeleteCartItems removes every item belonging to the cart. The cart row
	// itself stays for reuse.
	DeleteCartItems(ctx context.Context, cartID string) error
}

// Store runs a function inside a single transaction: fn either commits as a
// whole or every write it made is rolled back.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error
}
