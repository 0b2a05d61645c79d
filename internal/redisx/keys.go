package redisx

import "time"

const (
	// Product list cache: cache:products -> JSON array
	KeyProductList = "cache:products"

	// Order status cache: order_status:{order_id} -> {"status": "...", ...}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLProductList = 1 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
