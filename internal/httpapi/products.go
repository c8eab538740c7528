package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/listing"
)

// relatedLimit caps the related-products strip.
const relatedLimit = 4

type productDTO struct {
	ID            string            `json:"id"`
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Price         float64           `json:"price"`
	Discount      int               `json:"discount,omitempty"`
	SKU           string            `json:"sku"`
	StockQuantity int               `json:"stockQuantity"`
	StockStatus   string            `json:"stockStatus"`
	Category      string            `json:"category"`
	Type          string            `json:"type"`
	Texture       string            `json:"texture"`
	Colour        string            `json:"colour"`
	Length        string            `json:"length"`
	Rating        float64           `json:"rating"`
	IsNew         bool              `json:"isNew"`
	IsBestseller  bool              `json:"isBestseller"`
	IsHighlighted bool              `json:"isHighlighted"`
	Images        []imageDTO        `json:"images"`
	Colors        []optionValueDTO  `json:"colors"`
	Lengths       []optionValueDTO  `json:"lengths"`
	Textures      []optionValueDTO  `json:"textures"`
	Features      []string          `json:"features"`
	Care          []string          `json:"careInstructions"`
	Specs         map[string]string `json:"specifications"`
	Variants      []variantDTO      `json:"variants"`
}

type imageDTO struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	IsVideo bool   `json:"isVideo"`
}

type optionValueDTO struct {
	Value   string `json:"value"`
	InStock bool   `json:"inStock"`
}

type variantDTO struct {
	ID                string                   `json:"id"`
	SKU               string                   `json:"sku"`
	Price             float64                  `json:"price"`
	QuantityAvailable int                      `json:"quantityAvailable"`
	SelectedOptions   []catalog.SelectedOption `json:"selectedOptions,omitempty"`
}

type listResponse struct {
	Items         []productDTO `json:"items"`
	Total         int          `json:"total"`
	Page          int          `json:"page"`
	PageSize      int          `json:"pageSize"`
	ActiveFilters int          `json:"activeFilters"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	params, err := parseListingParams(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	result := listing.List(products, params)
	respondJSON(w, r, http.StatusOK, listResponse{
		Items:         productDTOs(result.Items),
		Total:         result.Total,
		Page:          result.Page,
		PageSize:      result.PageSize,
		ActiveFilters: listing.ActiveFilterCount(params),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductDTO(*p))
}

func (h *Handler) relatedProducts(w http.ResponseWriter, r *http.Request) {
	related, err := h.catalog.Related(r.Context(), r.PathValue("slug"), relatedLimit)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, productDTOs(related))
}

// parseListingParams reads the listing state from the query string.
// Multi-select dimensions take comma-separated values; a missing page
// defaults to 1, so clients that drop the parameter on filter change start
// back on the first page.
func parseListingParams(r *http.Request) (listing.Params, error) {
	q := r.URL.Query()
	params := listing.DefaultParams()

	params.Query = q.Get("q")
	params.Categories = splitValues(q.Get("category"))
	params.Types = splitValues(q.Get("type"))
	params.Colors = splitValues(q.Get("color"))
	params.Textures = splitValues(q.Get("texture"))
	params.Lengths = splitValues(q.Get("length"))

	if v := q.Get("sort"); v != "" {
		params.Sort = listing.Sort(v)
	}

	if v := q.Get("min_price"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return params, errors.New("invalid min_price")
		}
		params.Price.Min = min
	}
	if v := q.Get("max_price"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			return params, errors.New("invalid max_price")
		}
		params.Price.Max = max
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, errors.New("invalid page")
		}
		params.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return params, errors.New("invalid page_size")
		}
		params.PageSize = size
	}

	return params, nil
}

func splitValues(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func productDTOs(products []catalog.Product) []productDTO {
	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = toProductDTO(p)
	}
	return out
}

func toProductDTO(p catalog.Product) productDTO {
	dto := productDTO{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		Discount:      p.Discount,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		StockStatus:   string(p.StockStatus),
		Category:      p.Category,
		Type:          p.Type,
		Texture:       p.Texture,
		Colour:        p.Colour,
		Length:        string(p.Length),
		Rating:        p.Rating,
		IsNew:         p.IsNew,
		IsBestseller:  p.IsBestseller,
		IsHighlighted: p.IsHighlighted,
		Features:      p.Features,
		Care:          p.CareInstructions,
		Specs:         p.Specifications,
	}

	dto.Images = make([]imageDTO, len(p.Images))
	for i, img := range p.Images {
		dto.Images[i] = imageDTO{URL: img.URL, AltText: img.AltText, IsVideo: img.IsVideo}
	}

	dto.Colors = optionValueDTOs(p.Colors)
	dto.Lengths = optionValueDTOs(p.Lengths)
	dto.Textures = optionValueDTOs(p.Textures)

	dto.Variants = make([]variantDTO, len(p.Variants))
	for i, v := range p.Variants {
		dto.Variants[i] = variantDTO{
			ID:                v.ID,
			SKU:               v.SKU,
			Price:             v.Price.InexactFloat64(),
			QuantityAvailable: v.QuantityAvailable,
			SelectedOptions:   v.SelectedOptions,
		}
	}
	return dto
}

func optionValueDTOs(values []catalog.OptionValue) []optionValueDTO {
	out := make([]optionValueDTO, len(values))
	for i, v := range values {
		out[i] = optionValueDTO{Value: v.Value, InStock: v.InStock}
	}
	return out
}
