package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gostorefront/shop-api/internal/events"
	kafkax "github.com/gostorefront/shop-api/internal/kafka"
	"github.com/gostorefront/shop-api/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Service consumes order.placed events, refreshes the order-status cache and
// emits a notification log line per order. Duplicate deliveries are dropped
// via a Redis dedup key on event id.
type Service struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
	_ = s.Redis.Set(ctx, statusKey, `{"status":"PLACED"}`, redisx.TTLStatusCache).Err()

	s.Log.Info("order placed",
		zap.String("order_id", p.OrderID),
		zap.String("user_id", p.UserID),
		zap.Int("total_cents", p.TotalCents),
		zap.Int("items", len(p.Items)),
		zap.String("trace_id", env.TraceID))
	return nil
}
