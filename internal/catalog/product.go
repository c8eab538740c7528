// Package catalog holds the normalized product model and the pure logic that
// shapes it: normalization of raw Storefront API nodes and variant option
// resolution.
package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// StockStatus describes availability derived from a stock quantity.
type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

// lowStockThreshold is the quantity below which a product counts as low stock.
const lowStockThreshold = 5

// StockStatusFor buckets a quantity into a StockStatus.
func StockStatusFor(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity < lowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// LengthBucket is the coarse length classification used as a filter key.
type LengthBucket string

const (
	LengthShort   LengthBucket = "short"
	LengthMedium  LengthBucket = "medium"
	LengthLong    LengthBucket = "long"
	LengthDefault LengthBucket = "default"
)

// Product is an immutable normalized snapshot of one catalog item.
type Product struct {
	ID          string
	Slug        string
	Name        string
	Description string

	// Price, SKU and StockQuantity are first-variant defaults, used before
	// the shopper picks options.
	Price         decimal.Decimal
	Discount      int // percentage 0-100, 0 means no discount
	SKU           string
	StockQuantity int
	StockStatus   StockStatus

	Category string
	Type     string
	Texture  string
	Colour   string
	Length   LengthBucket
	Rating   float64

	IsNew         bool
	IsBestseller  bool
	IsHighlighted bool

	Images []Image

	// Distinct option values observed across variants, in first-seen order.
	Colors   []OptionValue
	Lengths  []OptionValue
	Textures []OptionValue

	Features         []string
	CareInstructions []string
	Specifications   map[string]string

	Variants []Variant
}

// Image is one product image or video thumbnail.
type Image struct {
	URL     string
	AltText string
	IsVideo bool
}

// OptionValue is one derived option value for a product dimension.
type OptionValue struct {
	Value   string
	InStock bool
}

// Variant is one purchasable SKU of a product.
type Variant struct {
	ID                string
	SKU               string
	Price             decimal.Decimal
	CompareAtPrice    decimal.Decimal // zero when absent
	QuantityAvailable int
	SelectedOptions   []SelectedOption
}

// SelectedOption is one name/value pair identifying a variant dimension,
// e.g. {"Color", "Black"}.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
