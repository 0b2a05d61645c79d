package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gostorefront/shop-api/internal/catalog"
	"github.com/gostorefront/shop-api/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type CatalogHandler struct {
	Repo  *catalog.Repo
	Redis *redis.Client
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first; DB stays the source of truth
	if s, err := h.Redis.Get(ctx, redisx.KeyProductList).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
		return
	}

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	b, _ := json.Marshal(ps)
	_ = h.Redis.Set(ctx, redisx.KeyProductList, b, redisx.TTLProductList).Err()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetProduct(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
