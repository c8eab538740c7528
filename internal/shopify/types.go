package shopify

// Wire types for the Storefront GraphQL API. Connections keep the raw
// edge/node envelope; flattening happens in the catalog normalizer, not here.

// graphQLRequest is the POST body sent to the graphql.json endpoint.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the generic GraphQL response envelope.
type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Product is a raw Storefront API product node.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Handle      string   `json:"handle"`
	ProductType string   `json:"productType"`
	Tags        []string `json:"tags"`

	Images   ImageConnection   `json:"images"`
	Media    MediaConnection   `json:"media"`
	Variants VariantConnection `json:"variants"`

	// Named metafields, requested as aliases in the product query. Each is
	// null when the shop has not populated the field.
	Features         *Metafield `json:"features"`
	CareInstructions *Metafield `json:"careInstructions"`
	Category         *Metafield `json:"category"`
	Texture          *Metafield `json:"texture"`
	Specifications   *Metafield `json:"specifications"`
	Highlighted      *Metafield `json:"highlighted"`
	Rating           *Metafield `json:"rating"`
}

// Metafield is an opaque custom data slot; the value is often JSON-encoded.
type Metafield struct {
	Value string `json:"value"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type ProductConnection struct {
	Edges    []ProductEdge `json:"edges"`
	PageInfo PageInfo      `json:"pageInfo"`
}

type ProductEdge struct {
	Node Product `json:"node"`
}

type VariantConnection struct {
	Edges []VariantEdge `json:"edges"`
}

type VariantEdge struct {
	Node Variant `json:"node"`
}

// Variant is a raw Storefront API product variant node.
type Variant struct {
	ID                string         `json:"id"`
	SKU               string         `json:"sku"`
	Price             Money          `json:"price"`
	CompareAtPrice    *Money         `json:"compareAtPrice"`
	QuantityAvailable int            `json:"quantityAvailable"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
}

// SelectedOption is one name/value pair identifying a variant dimension.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Money carries a decimal amount as a string, per the Storefront API.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type ImageConnection struct {
	Edges []ImageEdge `json:"edges"`
}

type ImageEdge struct {
	Node Image `json:"node"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type MediaConnection struct {
	Edges []MediaEdge `json:"edges"`
}

type MediaEdge struct {
	Node Media `json:"node"`
}

// Media is an image or video attached to a product. Video entries carry a
// preview image instead of a direct image.
type Media struct {
	MediaContentType string `json:"mediaContentType"`
	Alt              string `json:"alt"`
	Image            *Image `json:"image"`
	PreviewImage     *Image `json:"previewImage"`
}

// IsVideo reports whether the media entry is a video source.
func (m Media) IsVideo() bool {
	return m.MediaContentType == "VIDEO" || m.MediaContentType == "EXTERNAL_VIDEO"
}

type productsQueryData struct {
	Products ProductConnection `json:"products"`
}

type productByHandleQueryData struct {
	Product *Product `json:"productByHandle"`
}
