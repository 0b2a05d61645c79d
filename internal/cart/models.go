package cart

import "time"

type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Item    `json:"items"`
}

type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
	// Stock mirrors the current inventory quantity for display. It is
	// advisory only; checkout re-validates inside its own transaction.
	Stock *int `json:"stock,omitempty"`
}
