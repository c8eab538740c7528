package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dElCIoGio/ghbi-storefront/internal/shopify"
)

// Defaults applied when the corresponding metafield is absent or empty.
const (
	defaultCategory = "Bundles"
	defaultTexture  = "straight"
)

// Length bucket boundaries, in inches, applied to the first variant's Length
// option. Inclusive upper bounds.
const (
	shortMaxInches  = 14
	mediumMaxInches = 22
)

// Normalize maps one raw Storefront API product node into the internal
// Product record. It is a total function: malformed or missing optional
// fields degrade to defaults per field, never to a failed product.
func Normalize(raw shopify.Product) Product {
	variants := flattenVariants(raw.Variants)

	p := Product{
		ID:          raw.ID,
		Slug:        raw.Handle,
		Name:        raw.Title,
		Description: raw.Description,
		Type:        raw.ProductType,

		Category: metafieldOr(raw.Category, defaultCategory),
		Texture:  metafieldOr(raw.Texture, defaultTexture),
		Rating:   parseRating(raw.Rating),

		IsNew:         hasTag(raw.Tags, "new"),
		IsBestseller:  hasTag(raw.Tags, "bestseller"),
		IsHighlighted: raw.Highlighted != nil && raw.Highlighted.Value == "true",

		Images: normalizeMedia(raw),

		Colors:   deriveOptionValues(variants, "color"),
		Lengths:  deriveOptionValues(variants, "length"),
		Textures: deriveOptionValues(variants, "texture"),

		Features:         parseStringList(raw.Features),
		CareInstructions: parseStringList(raw.CareInstructions),
		Specifications:   parseSpecifications(raw.Specifications),

		Variants: variants,
	}

	// First-variant defaults: price, SKU, stock, discount, length bucket
	// and display colour all come from the variant list head.
	p.Length = LengthDefault
	if len(variants) > 0 {
		first := variants[0]
		p.Price = first.Price
		p.SKU = first.SKU
		p.StockQuantity = first.QuantityAvailable
		p.Discount = discountPercent(first)
		p.Length = lengthBucket(optionValue(first.SelectedOptions, "length"))
		p.Colour = optionValue(first.SelectedOptions, "color")
	}
	p.StockStatus = StockStatusFor(p.StockQuantity)

	return p
}

// flattenVariants converts the variant connection into a flat list in source
// order. Unparseable price amounts degrade to zero.
func flattenVariants(conn shopify.VariantConnection) []Variant {
	if len(conn.Edges) == 0 {
		return nil
	}
	variants := make([]Variant, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		node := edge.Node
		v := Variant{
			ID:                node.ID,
			SKU:               node.SKU,
			Price:             parseAmount(node.Price.Amount),
			QuantityAvailable: node.QuantityAvailable,
		}
		if node.CompareAtPrice != nil {
			v.CompareAtPrice = parseAmount(node.CompareAtPrice.Amount)
		}
		for _, opt := range node.SelectedOptions {
			v.SelectedOptions = append(v.SelectedOptions, SelectedOption{
				Name:  opt.Name,
				Value: opt.Value,
			})
		}
		variants = append(variants, v)
	}
	return variants
}

// parseAmount decodes a Storefront money amount string; garbage yields zero.
func parseAmount(amount string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// deriveOptionValues collects the distinct values of the named option across
// all variants, first-seen order. The option name match is case-insensitive.
//
// Every value is marked in stock unconditionally: availability is only
// authoritative at the fully resolved variant, not per option value.
func deriveOptionValues(variants []Variant, name string) []OptionValue {
	var values []OptionValue
	seen := make(map[string]struct{})
	for _, v := range variants {
		for _, opt := range v.SelectedOptions {
			if !strings.EqualFold(opt.Name, name) {
				continue
			}
			if _, ok := seen[opt.Value]; ok {
				continue
			}
			seen[opt.Value] = struct{}{}
			values = append(values, OptionValue{Value: opt.Value, InStock: true})
		}
	}
	return values
}

// optionValue returns the value of the named option, matching the name
// case-insensitively, or "" when absent.
func optionValue(options []SelectedOption, name string) string {
	for _, opt := range options {
		if strings.EqualFold(opt.Name, name) {
			return opt.Value
		}
	}
	return ""
}

// lengthBucket classifies a Length option value by its leading numeric part:
// <=14 short, <=22 medium, above long. Non-numeric or absent values bucket
// as default.
func lengthBucket(value string) LengthBucket {
	n, ok := leadingNumber(value)
	if !ok {
		return LengthDefault
	}
	switch {
	case n <= shortMaxInches:
		return LengthShort
	case n <= mediumMaxInches:
		return LengthMedium
	default:
		return LengthLong
	}
}

// leadingNumber parses the leading numeric prefix of s, e.g. "18in" -> 18.
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// discountPercent derives the discount percentage from a variant's
// compare-at price. Zero when there is no markdown.
func discountPercent(v Variant) int {
	if v.CompareAtPrice.IsZero() || !v.CompareAtPrice.GreaterThan(v.Price) {
		return 0
	}
	ratio := v.Price.Div(v.CompareAtPrice)
	pct := decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// normalizeMedia prefers the media connection when it yields at least one
// displayable entry, falling back to the plain image list. Video entries
// surface their preview image as the thumbnail.
func normalizeMedia(raw shopify.Product) []Image {
	var images []Image
	for _, edge := range raw.Media.Edges {
		node := edge.Node
		img := Image{AltText: node.Alt, IsVideo: node.IsVideo()}
		switch {
		case node.Image != nil && node.Image.URL != "":
			img.URL = node.Image.URL
			if node.Image.AltText != "" {
				img.AltText = node.Image.AltText
			}
		case node.PreviewImage != nil && node.PreviewImage.URL != "":
			img.URL = node.PreviewImage.URL
		default:
			continue
		}
		images = append(images, img)
	}
	if len(images) > 0 {
		return images
	}

	for _, edge := range raw.Images.Edges {
		images = append(images, Image{URL: edge.Node.URL, AltText: edge.Node.AltText})
	}
	return images
}

// parseStringList decodes a metafield holding a JSON array of strings.
// Absent metafields and parse failures yield an empty list.
func parseStringList(m *shopify.Metafield) []string {
	if m == nil || m.Value == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(m.Value), &items); err != nil {
		return nil
	}
	return items
}

// parseSpecifications decodes a metafield holding a JSON object of
// label->value pairs. On JSON failure it falls back to parsing a
// "key: value, key2: value2" string; on total absence the mapping is empty.
func parseSpecifications(m *shopify.Metafield) map[string]string {
	specs := make(map[string]string)
	if m == nil || m.Value == "" {
		return specs
	}

	if err := json.Unmarshal([]byte(m.Value), &specs); err == nil {
		return specs
	}

	for pair := range strings.SplitSeq(m.Value, ",") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" {
			specs[key] = value
		}
	}
	return specs
}

// parseRating decodes a numeric rating metafield, 0 on absence or garbage.
func parseRating(m *shopify.Metafield) float64 {
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
	if err != nil {
		return 0
	}
	return n
}

// metafieldOr returns the metafield value or fallback when absent or empty.
func metafieldOr(m *shopify.Metafield, fallback string) string {
	if m == nil || strings.TrimSpace(m.Value) == "" {
		return fallback
	}
	return m.Value
}

// hasTag reports whether tags contains tag, ignoring case.
func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
