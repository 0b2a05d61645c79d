package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gostorefront/shop-api/internal/auth"
	"github.com/gostorefront/shop-api/internal/checkout"
	"github.com/gostorefront/shop-api/internal/events"
	kafkax "github.com/gostorefront/shop-api/internal/kafka"
	"github.com/gostorefront/shop-api/internal/metrics"
	"github.com/gostorefront/shop-api/internal/orders"
	"github.com/gostorefront/shop-api/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersHandler struct {
	Checkout *checkout.Service
	Repo     *orders.Repo
	Producer *kafkax.Producer
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Tokens   *auth.TokenIssuer
	Service  string
}

type checkoutErrorResp struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	ProductID string `json:"product_id,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(h.Tokens))
		r.Post("/orders/checkout", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
	})
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := auth.UserID(ctx)
	start := time.Now()
	order, err := h.Checkout.Checkout(ctx, userID)
	if err != nil {
		h.Metrics.ObserveCheckout(outcomeFor(err), time.Since(start))
		writeCheckoutError(w, err)
		return
	}
	h.Metrics.ObserveCheckout("success", time.Since(start))

	// Cache status and publish, outside the committed transaction. Neither
	// failing invalidates the checkout.
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"PLACED"}`, redisx.TTLStatusCache).Err()

	items := make([]events.OrderItemPayload, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, events.OrderItemPayload{
			ProductID:  it.ProductID,
			Qty:        it.Qty,
			PriceCents: it.PriceCents,
		})
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: order.ID,
		Payload: kafkax.MustMarshal(events.OrderPlacedPayload{
			OrderID:    order.ID,
			UserID:     order.UserID,
			TotalCents: order.TotalCents,
			Items:      items,
		}),
	}
	h.Producer.Publish(events.PartitionKey(order.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, order)
}

func outcomeFor(err error) string {
	var inv *checkout.InventoryMissingError
	var ins *checkout.InsufficientStockError
	var cf *checkout.StockConflictError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &inv):
		return "inventory_missing"
	case errors.As(err, &ins):
		return "insufficient_stock"
	case errors.As(err, &cf):
		return "stock_conflict"
	default:
		return "error"
	}
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var inv *checkout.InventoryMissingError
	var ins *checkout.InsufficientStockError
	var cf *checkout.StockConflictError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, checkoutErrorResp{
			Error: "cart is empty", Code: "EMPTY_CART"})
	case errors.As(err, &inv):
		writeJSON(w, http.StatusBadRequest, checkoutErrorResp{
			Error: err.Error(), Code: "INVENTORY_MISSING", ProductID: inv.ProductID})
	case errors.As(err, &ins):
		writeJSON(w, http.StatusBadRequest, checkoutErrorResp{
			Error: err.Error(), Code: "INSUFFICIENT_STOCK", ProductID: ins.ProductID})
	case errors.As(err, &cf):
		// retryable by the client: the race may have resolved
		writeJSON(w, http.StatusConflict, checkoutErrorResp{
			Error: err.Error(), Code: "STOCK_CONFLICT", ProductID: cf.ProductID})
	default:
		writeError(w, http.StatusInternalServerError, "checkout failed")
	}
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o.UserID != auth.UserID(ctx) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListByUser(ctx, auth.UserID(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}
