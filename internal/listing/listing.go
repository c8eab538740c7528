// Package listing is the pure product listing engine: search, multi-select
// dimension filters, price range, sort and pagination over the in-memory
// normalized catalog. It performs no I/O.
package listing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
)

// Sort enumerates the supported sort options.
type Sort string

const (
	SortFeatured    Sort = "featured"
	SortPriceLow    Sort = "price-low"
	SortPriceHigh   Sort = "price-high"
	SortNewest      Sort = "newest"
	SortBestselling Sort = "bestselling"
	SortRating      Sort = "rating"
)

// DefaultPageSize is the reference page size of the storefront grid.
const DefaultPageSize = 9

// DefaultPriceRange spans the full catalog; a range equal to it counts as
// "no price filter" for the active-filter badge.
func DefaultPriceRange() PriceRange {
	return PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(1000)}
}

// PriceRange is an inclusive [Min, Max] price filter.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Params is the full listing state: one value describes one visible page.
type Params struct {
	Query string

	// Multi-select filter dimensions. An empty set means the dimension does
	// not filter; all dimensions are ANDed.
	Categories []string
	Types      []string
	Colors     []string
	Textures   []string
	Lengths    []string

	Price PriceRange

	Sort     Sort
	Page     int // 1-based
	PageSize int
}

// DefaultParams returns the initial listing state: no filters, featured
// sort, first page.
func DefaultParams() Params {
	return Params{
		Price:    DefaultPriceRange(),
		Sort:     SortFeatured,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// ClearFilters returns a copy with every filter dimension, the price range,
// the search query and the sort back at their defaults. The current page is
// deliberately preserved; resetting pagination on filter change is the
// caller's responsibility.
func (p Params) ClearFilters() Params {
	cleared := DefaultParams()
	cleared.Page = p.Page
	cleared.PageSize = p.PageSize
	return cleared
}

// ActiveFilterCount is the number of active filter values across all five
// dimensions, plus one when the price range differs from the default.
func ActiveFilterCount(p Params) int {
	count := len(p.Categories) + len(p.Types) + len(p.Colors) + len(p.Textures) + len(p.Lengths)
	def := DefaultPriceRange()
	if !p.Price.Min.Equal(def.Min) || !p.Price.Max.Equal(def.Max) {
		count++
	}
	return count
}

// Result is one visible page of the filtered catalog.
type Result struct {
	Items []catalog.Product
	// Total is the filtered product count before pagination.
	Total    int
	Page     int
	PageSize int
}

// List applies search, filters, sort and pagination in order and returns the
// requested page. A page beyond the last yields an empty slice, never an
// error.
func List(products []catalog.Product, p Params) Result {
	filtered := make([]catalog.Product, 0, len(products))
	for _, prod := range products {
		if matches(prod, p) {
			filtered = append(filtered, prod)
		}
	}

	sortProducts(filtered, p.Sort)

	page, size := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	start := (page - 1) * size
	end := start + size
	items := []catalog.Product{}
	if start < len(filtered) {
		if end > len(filtered) {
			end = len(filtered)
		}
		items = filtered[start:end]
	}

	return Result{Items: items, Total: len(filtered), Page: page, PageSize: size}
}

// matches applies the search predicate, the five ANDed dimension filters and
// the inclusive price range.
func matches(p catalog.Product, params Params) bool {
	if params.Query != "" &&
		!strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Query)) {
		return false
	}

	if !dimensionMatches(params.Categories, p.Category) {
		return false
	}
	if !dimensionMatches(params.Types, p.Type) {
		return false
	}
	if !dimensionMatches(params.Colors, p.Colour) {
		return false
	}
	if !dimensionMatches(params.Textures, p.Texture) {
		return false
	}
	if !dimensionMatches(params.Lengths, string(p.Length)) {
		return false
	}

	if p.Price.LessThan(params.Price.Min) || p.Price.GreaterThan(params.Price.Max) {
		return false
	}
	return true
}

// dimensionMatches reports whether value belongs to the active set; an empty
// set passes everything.
func dimensionMatches(active []string, value string) bool {
	if len(active) == 0 {
		return true
	}
	for _, a := range active {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}

// sortProducts orders the filtered slice in place. Flag-based sorts
// (featured, newest, bestselling) are stable partitions: flagged products
// first, relative order preserved everywhere else.
func sortProducts(products []catalog.Product, s Sort) {
	switch s {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsNew && !products[j].IsNew
		})
	case SortBestselling:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsBestseller && !products[j].IsBestseller
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case SortFeatured:
		fallthrough
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsHighlighted && !products[j].IsHighlighted
		})
	}
}
