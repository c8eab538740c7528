// Package shopify is a minimal Storefront GraphQL API client. It fetches raw
// product nodes; all shaping into the internal catalog model happens in the
// catalog package.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a product handle does not exist upstream.
var ErrNotFound = errors.New("product not found")

const accessTokenHeader = "X-Shopify-Storefront-Access-Token"

// Config holds the Storefront API connection settings.
type Config struct {
	// Domain is the shop domain, e.g. "ghbi-hair.myshopify.com".
	Domain string
	// AccessToken is the public Storefront API access token.
	AccessToken string
	// APIVersion is the Storefront API version, e.g. "2024-10".
	APIVersion string
	// Timeout bounds a single API round trip. Zero means 10s.
	Timeout time.Duration
}

// Client talks to one shop's Storefront GraphQL endpoint.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a Client for the configured shop.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.Domain, cfg.APIVersion),
		token:    cfg.AccessToken,
		http:     &http.Client{Timeout: timeout},
	}
}

// productFields is the shared selection set for product nodes. Metafields are
// aliased so the response decodes straight into the Product wire type.
const productFields = `
id
title
description
handle
productType
tags
images(first: 20) { edges { node { url altText } } }
media(first: 20) {
  edges {
    node {
      mediaContentType
      alt
      ... on MediaImage { image { url altText } }
      ... on Video { previewImage { url altText } }
      ... on ExternalVideo { previewImage { url altText } }
    }
  }
}
variants(first: 100) {
  edges {
    node {
      id
      sku
      price { amount currencyCode }
      compareAtPrice { amount currencyCode }
      quantityAvailable
      selectedOptions { name value }
    }
  }
}
features: metafield(namespace: "custom", key: "features") { value }
careInstructions: metafield(namespace: "custom", key: "care_instructions") { value }
category: metafield(namespace: "custom", key: "category") { value }
texture: metafield(namespace: "custom", key: "texture") { value }
specifications: metafield(namespace: "custom", key: "specifications") { value }
highlighted: metafield(namespace: "custom", key: "highlighted") { value }
rating: metafield(namespace: "custom", key: "rating") { value }
`

var productsQuery = fmt.Sprintf(`
query Products($first: Int!) {
  products(first: $first) {
    edges { node { %s } }
    pageInfo { hasNextPage endCursor }
  }
}`, productFields)

var productByHandleQuery = fmt.Sprintf(`
query ProductByHandle($handle: String!) {
  productByHandle(handle: $handle) { %s }
}`, productFields)

// Products fetches up to first products from the shop catalog.
func (c *Client) Products(ctx context.Context, first int) ([]Product, error) {
	var data productsQueryData
	err := c.query(ctx, productsQuery, map[string]any{"first": first}, &data)
	if err != nil {
		return nil, errors.Wrap(err, "products query")
	}

	products := make([]Product, len(data.Products.Edges))
	for i, edge := range data.Products.Edges {
		products[i] = edge.Node
	}
	return products, nil
}

// ProductByHandle fetches one product by its handle (slug). It returns
// ErrNotFound when the handle does not resolve to a product.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*Product, error) {
	var data productByHandleQueryData
	err := c.query(ctx, productByHandleQuery, map[string]any{"handle": handle}, &data)
	if err != nil {
		return nil, errors.Wrapf(err, "product by handle %q", handle)
	}
	if data.Product == nil {
		return nil, ErrNotFound
	}
	return data.Product, nil
}

// query executes one GraphQL operation and decodes the data payload into out.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "storefront api")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("storefront api: unexpected status %d", resp.StatusCode)
	}

	envelope := graphQLResponse[json.RawMessage]{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if len(envelope.Errors) > 0 {
		return errors.Errorf("storefront api: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}
