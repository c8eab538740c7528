// Package httpapi exposes the storefront over HTTP: catalog listing and
// detail, the session cart, and the checkout hand-off.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/kv"
)

// Catalog provides normalized products to the HTTP layer.
type Catalog interface {
	List(ctx context.Context) ([]catalog.Product, error)
	GetBySlug(ctx context.Context, slug string) (*catalog.Product, error)
	Related(ctx context.Context, slug string, limit int) ([]catalog.Product, error)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ShopDomain is the shop domain checkout permalinks point at.
	ShopDomain string
}

// Handler wires the domain services into HTTP routes.
type Handler struct {
	catalog    Catalog
	carts      kv.Store
	shopDomain string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cfg HandlerConfig, cat Catalog, carts kv.Store) *Handler {
	return &Handler{
		catalog:    cat,
		carts:      carts,
		shopDomain: cfg.ShopDomain,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.getProduct)
	mux.HandleFunc("GET /api/products/{slug}/related", h.relatedProducts)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/checkout", h.checkout)
}
