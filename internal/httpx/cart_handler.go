package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gostorefront/shop-api/internal/auth"
	"github.com/gostorefront/shop-api/internal/cart"
)

type CartHandler struct {
	Repo   *cart.Repo
	Tokens *auth.TokenIssuer
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(h.Tokens))
		r.Post("/cart/add", h.addItem)
		r.Get("/cart", h.getCart)
		r.Delete("/cart/items/{productID}", h.removeItem)
		r.Delete("/cart", h.clearCart)
	})
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing product_id")
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	it, err := h.Repo.AddItem(ctx, auth.UserID(ctx), req.ProductID, req.Qty)
	switch {
	case errors.Is(err, cart.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, "invalid product")
	case errors.Is(err, cart.ErrOutOfStock):
		writeError(w, http.StatusBadRequest, "product is out of stock")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to add item")
	default:
		writeJSON(w, http.StatusOK, it)
	}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Repo.GetCart(ctx, auth.UserID(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.RemoveItem(ctx, auth.UserID(ctx), chi.URLParam(r, "productID")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.ClearCart(ctx, auth.UserID(ctx)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
