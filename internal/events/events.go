package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

const (
	TopicOrderPlaced = "order.placed"
)

// PartitionKey keeps all events of one order on the same partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderItemPayload struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderPlacedPayload struct {
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	TotalCents int                `json:"total_cents"`
	Items      []OrderItemPayload `json:"items"`
}
