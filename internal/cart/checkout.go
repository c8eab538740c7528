package cart

import (
	"fmt"
	"strings"
)

// CheckoutURL builds the hosted-checkout permalink for the cart: the shop's
// /cart/ path followed by comma-joined "variant:quantity" pairs. This is the
// only write this system performs against the order domain; the shopper is
// redirected, no order API is called.
func CheckoutURL(shopDomain string, items []Item) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	pairs := make([]string, len(items))
	for i, item := range items {
		pairs[i] = fmt.Sprintf("%s:%d", variantRef(item.ID), item.Quantity)
	}
	return fmt.Sprintf("https://%s/cart/%s", shopDomain, strings.Join(pairs, ",")), nil
}

// variantRef reduces a gid-style identifier ("gid://shopify/ProductVariant/123")
// to its trailing segment; plain ids pass through unchanged.
func variantRef(id string) string {
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}
