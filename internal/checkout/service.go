package checkout

import (
	"context"

	"github.com/gostorefront/shop-api/internal/orders"
	"go.uber.org/zap"
)

// Service converts a user's cart into an order atomically while enforcing
// inventory constraints. It performs no internal retry: on a stock conflict
// the whole transaction rolls back and the caller decides whether to retry.
type Service struct {
	Store Store
	Log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{Store: store, Log: log}
}

// Checkout validates the cart against live inventory, decrements stock with a
// conditional update per item, creates the order from the snapshot and clears
// the cart, all in one transaction. On any failure no state changes.
//
// Order item prices are frozen at snapshot time: the price read in the
// snapshot is the price written to the order, even if a price change commits
// between the snapshot and the decrement.
func (s *Service) Checkout(ctx context.Context, userID string) (*orders.Order, error) {
	var out *orders.Order

	err := s.Store.WithinTx(ctx, func(tx TxStore) error {
		snap, err := tx.CartSnapshot(ctx, userID)
		if err != nil {
			return err
		}
		if snap == nil || len(snap.Lines) == 0 {
			return ErrEmptyCart
		}

		// Validation pass over the snapshot. No writes happen here, so any
		// violation aborts with zero side effects.
		total := 0
		for _, line := range snap.Lines {
			if line.Stock == nil {
				return &InventoryMissingError{ProductID: line.ProductID}
			}
			if *line.Stock < line.Qty {
				return &InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Qty,
					Available: *line.Stock,
				}
			}
			total += line.Qty * line.PriceCents
		}

		// Conditional decrements re-check sufficiency at write time. A zero
		// row count means a concurrent checkout consumed the stock after our
		// snapshot; rolling back the transaction undoes any decrement already
		// applied in this loop.
		for _, line := range snap.Lines {
			affected, err := tx.DecrementStock(ctx, line.ProductID, line.Qty)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &StockConflictError{ProductID: line.ProductID}
			}
		}

		lines := make([]OrderLine, 0, len(snap.Lines))
		for _, line := range snap.Lines {
			lines = append(lines, OrderLine{
				ProductID:  line.ProductID,
				Qty:        line.Qty,
				PriceCents: line.PriceCents,
			})
		}
		order, err := tx.InsertOrder(ctx, userID, total, lines)
		if err != nil {
			return err
		}

		if err := tx.DeleteCartItems(ctx, snap.CartID); err != nil {
			return err
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("checkout committed",
		zap.String("user_id", userID),
		zap.String("order_id", out.ID),
		zap.Int("total_cents", out.TotalCents),
		zap.Int("items", len(out.Items)))
	return out, nil
}
