package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"

	"github.com/dElCIoGio/ghbi-storefront/internal/cart"
	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
)

type cartItemDTO struct {
	ID             string                  `json:"id"`
	ProductID      string                  `json:"productId"`
	Name           string                  `json:"name"`
	Slug           string                  `json:"slug"`
	Image          string                  `json:"image"`
	Price          float64                 `json:"price"`
	OriginalPrice  float64                 `json:"originalPrice,omitempty"`
	Quantity       int                     `json:"quantity"`
	MaxQuantity    int                     `json:"maxQuantity"`
	SelectedColor  *catalog.SelectedOption `json:"selectedColor,omitempty"`
	SelectedLength *catalog.SelectedOption `json:"selectedLength,omitempty"`
	SKU            string                  `json:"sku"`
}

type cartResponse struct {
	Items     []cartItemDTO `json:"items"`
	Total     float64       `json:"total"`
	ItemCount int           `json:"itemCount"`
}

type addItemRequest struct {
	Slug            string                   `json:"slug"`
	Quantity        int                      `json:"quantity"`
	SelectedOptions []catalog.SelectedOption `json:"selectedOptions"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// loadCart resolves the session cookie and loads that session's cart.
func (h *Handler) loadCart(w http.ResponseWriter, r *http.Request) *cart.Store {
	return cart.Load(r.Context(), h.carts, sessionID(w, r), zctx.From(r.Context()))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, toCartResponse(h.loadCart(w, r)))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slug == "" {
		respondError(w, r, http.StatusBadRequest, "slug is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		respondError(w, r, http.StatusBadRequest, "quantity must be positive")
		return
	}

	p, err := h.catalog.GetBySlug(r.Context(), req.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}

	variant := catalog.ResolveVariant(p.Variants, req.SelectedOptions)
	if variant == nil {
		respondError(w, r, http.StatusUnprocessableEntity, "selected combination is not available")
		return
	}
	if variant.QuantityAvailable <= 0 {
		respondError(w, r, http.StatusUnprocessableEntity, "variant is out of stock")
		return
	}

	c := h.loadCart(w, r)
	if err := c.Add(r.Context(), buildItem(p, variant, req.Quantity)); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(c))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	c := h.loadCart(w, r)
	if err := c.UpdateQuantity(r.Context(), itemID(r), req.Quantity); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.loadCart(w, r)
	if err := c.Remove(r.Context(), itemID(r)); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c := h.loadCart(w, r)
	if err := c.Clear(r.Context()); err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(c))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	c := h.loadCart(w, r)

	url, err := cart.CheckoutURL(h.shopDomain, c.Items())
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			respondError(w, r, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, checkoutResponse{URL: url})
}

// itemID is the variant id path segment. Variant ids are gid URIs, so
// clients send them percent-encoded; PathValue hands them back decoded.
func itemID(r *http.Request) string {
	return r.PathValue("id")
}

// buildItem snapshots the product and resolved variant into a cart line.
func buildItem(p *catalog.Product, v *catalog.Variant, quantity int) cart.Item {
	item := cart.Item{
		ID:          v.ID,
		ProductID:   p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Price:       v.Price,
		Quantity:    quantity,
		MaxQuantity: v.QuantityAvailable,
		SKU:         v.SKU,
	}
	if len(p.Images) > 0 {
		item.Image = p.Images[0].URL
	}
	if v.CompareAtPrice.GreaterThan(decimal.Zero) {
		item.OriginalPrice = v.CompareAtPrice
	}
	for _, opt := range v.SelectedOptions {
		switch {
		case strings.EqualFold(opt.Name, "Color") || strings.EqualFold(opt.Name, "Colour"):
			o := opt
			item.SelectedColor = &o
		case strings.EqualFold(opt.Name, "Length"):
			o := opt
			item.SelectedLength = &o
		}
	}
	return item
}

func toCartResponse(c *cart.Store) cartResponse {
	items := c.Items()
	dtos := make([]cartItemDTO, len(items))
	for i, item := range items {
		dtos[i] = cartItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Slug:           item.Slug,
			Image:          item.Image,
			Price:          item.Price.InexactFloat64(),
			OriginalPrice:  item.OriginalPrice.InexactFloat64(),
			Quantity:       item.Quantity,
			MaxQuantity:    item.MaxQuantity,
			SelectedColor:  item.SelectedColor,
			SelectedLength: item.SelectedLength,
			SKU:            item.SKU,
		}
	}
	return cartResponse{
		Items:     dtos,
		Total:     c.Total().InexactFloat64(),
		ItemCount: c.ItemCount(),
	}
}
