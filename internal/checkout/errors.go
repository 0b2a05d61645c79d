package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when the user has no cart or the cart has no items.
var ErrEmptyCart = errors.New("cart is empty")

// InventoryMissingError: a cart item references a product with no inventory row.
type InventoryMissingError struct {
	ProductID string
}

func (e *InventoryMissingError) Error() string {
	return fmt.Sprintf("inventory missing for product %s", e.ProductID)
}

// InsufficientStockError: the snapshot shows less stock than the cart requests.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StockConflictError: a concurrent transaction consumed the stock between the
// validation snapshot and the conditional decrement. The whole checkout rolls
// back; the caller may retry.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed while checking out product %s", e.ProductID)
}
