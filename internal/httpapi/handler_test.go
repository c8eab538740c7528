package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/kv"
	"github.com/dElCIoGio/ghbi-storefront/internal/listing"
)

type stubCatalog struct {
	products []catalog.Product
	err      error
}

func (s *stubCatalog) List(context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) GetBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.products {
		if s.products[i].Slug == slug {
			return &s.products[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) Related(ctx context.Context, slug string, limit int) ([]catalog.Product, error) {
	p, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	var related []catalog.Product
	for _, other := range s.products {
		if other.Slug != p.Slug && other.Category == p.Category && len(related) < limit {
			related = append(related, other)
		}
	}
	return related, nil
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:            "gid://shopify/Product/1",
			Slug:          "silk-lace-wig",
			Name:          "Silk Lace Wig",
			Price:         decimal.RequireFromString("185.00"),
			Category:      "Wigs",
			Texture:       "straight",
			StockQuantity: 10,
			StockStatus:   catalog.StockIn,
			Images:        []catalog.Image{{URL: "https://cdn/wig.jpg"}},
			Variants: []catalog.Variant{
				{
					ID:                "gid://shopify/ProductVariant/11",
					SKU:               "WIG-BLK-18",
					Price:             decimal.RequireFromString("185.00"),
					QuantityAvailable: 10,
					SelectedOptions: []catalog.SelectedOption{
						{Name: "Color", Value: "Black"},
						{Name: "Length", Value: "18\""},
					},
				},
				{
					ID:                "gid://shopify/ProductVariant/12",
					SKU:               "WIG-BLK-22",
					Price:             decimal.RequireFromString("205.00"),
					QuantityAvailable: 0,
					SelectedOptions: []catalog.SelectedOption{
						{Name: "Color", Value: "Black"},
						{Name: "Length", Value: "22\""},
					},
				},
			},
		},
		{
			ID:       "gid://shopify/Product/2",
			Slug:     "clip-in-set",
			Name:     "Clip-In Set",
			Price:    decimal.RequireFromString("95.00"),
			Category: "Extensions",
			Variants: []catalog.Variant{
				{ID: "gid://shopify/ProductVariant/21", Price: decimal.RequireFromString("95.00"), QuantityAvailable: 3},
			},
		},
		{
			ID:       "gid://shopify/Product/3",
			Slug:     "satin-bonnet",
			Name:     "Satin Bonnet",
			Price:    decimal.RequireFromString("18.00"),
			Category: "Wigs",
			Variants: []catalog.Variant{
				{ID: "gid://shopify/ProductVariant/31", Price: decimal.RequireFromString("18.00"), QuantityAvailable: 50},
			},
		},
	}
}

func newTestServer(t *testing.T, products []catalog.Product) *httptest.Server {
	t.Helper()

	h := NewHandler(HandlerConfig{ShopDomain: "ghbi-hair.myshopify.com"},
		&stubCatalog{products: products}, kv.NewMemory())
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newClient carries the session cookie between requests like a browser would.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantSlugs []string
	}{
		{
			name:      "no filters returns everything",
			query:     "",
			wantTotal: 3,
			wantSlugs: []string{"silk-lace-wig", "clip-in-set", "satin-bonnet"},
		},
		{
			name:      "category filter",
			query:     "?category=Wigs",
			wantTotal: 2,
			wantSlugs: []string{"silk-lace-wig", "satin-bonnet"},
		},
		{
			name:      "search matches name",
			query:     "?q=clip",
			wantTotal: 1,
			wantSlugs: []string{"clip-in-set"},
		},
		{
			name:      "price range is inclusive",
			query:     "?min_price=18&max_price=95",
			wantTotal: 2,
			wantSlugs: []string{"clip-in-set", "satin-bonnet"},
		},
		{
			name:      "sort by price ascending",
			query:     "?sort=" + string(listing.SortPriceLow),
			wantTotal: 3,
			wantSlugs: []string{"satin-bonnet", "clip-in-set", "silk-lace-wig"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/products"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got listResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.wantTotal, got.Total)

			slugs := make([]string, len(got.Items))
			for i, item := range got.Items {
				slugs[i] = item.Slug
			}
			assert.Equal(t, tt.wantSlugs, slugs)
		})
	}
}

func TestListProducts_BadParams(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	for _, query := range []string{"?page=0", "?page=abc", "?page_size=-1", "?min_price=cheap"} {
		resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/products"+query, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestGetProduct(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/silk-lace-wig", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got productDTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Silk Lace Wig", got.Name)
	assert.InDelta(t, 185.00, got.Price, 0.001)
	assert.Len(t, got.Variants, 2)

	t.Run("unknown slug is 404", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRelatedProducts(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	resp, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/products/silk-lace-wig/related", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []productDTO
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "satin-bonnet", got[0].Slug)
}

func TestAddCartItem(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	selection := []catalog.SelectedOption{
		{Name: "Color", Value: "Black"},
		{Name: "Length", Value: "18\""},
	}

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items", addItemRequest{
		Slug:            "silk-lace-wig",
		Quantity:        2,
		SelectedOptions: selection,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got cartResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "gid://shopify/ProductVariant/11", got.Items[0].ID)
	assert.Equal(t, "WIG-BLK-18", got.Items[0].SKU)
	assert.Equal(t, 2, got.Items[0].Quantity)
	require.NotNil(t, got.Items[0].SelectedColor)
	assert.Equal(t, "Black", got.Items[0].SelectedColor.Value)

	t.Run("same variant merges", func(t *testing.T) {
		resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items", addItemRequest{
			Slug:            "silk-lace-wig",
			SelectedOptions: selection, // quantity omitted defaults to 1
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got cartResponse
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got.Items, 1)
		assert.Equal(t, 3, got.Items[0].Quantity)
	})
}

func TestAddCartItem_Failures(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	tests := []struct {
		name       string
		req        addItemRequest
		wantStatus int
	}{
		{
			name:       "unknown product",
			req:        addItemRequest{Slug: "nope"},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "unavailable combination",
			req: addItemRequest{
				Slug: "silk-lace-wig",
				SelectedOptions: []catalog.SelectedOption{
					{Name: "Color", Value: "Blonde"},
					{Name: "Length", Value: "18\""},
				},
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "out of stock variant",
			req: addItemRequest{
				Slug: "silk-lace-wig",
				SelectedOptions: []catalog.SelectedOption{
					{Name: "Color", Value: "Black"},
					{Name: "Length", Value: "22\""},
				},
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing slug",
			req:        addItemRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative quantity",
			req:        addItemRequest{Slug: "clip-in-set", Quantity: -1},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items", tt.req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCartLifecycle(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items",
		addItemRequest{Slug: "clip-in-set", Quantity: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id := "gid:%2F%2Fshopify%2FProductVariant%2F21"

	resp, body := doJSON(t, client, http.MethodPatch, srv.URL+"/api/cart/items/"+id,
		updateItemRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got cartResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.InDelta(t, 285.00, got.Total, 0.001)

	resp, body = doJSON(t, client, http.MethodDelete, srv.URL+"/api/cart/items/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Empty(t, got.Items)

	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items",
		addItemRequest{Slug: "satin-bonnet"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, client, http.MethodDelete, srv.URL+"/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Empty(t, got.Items)
	assert.Zero(t, got.ItemCount)
}

func TestCartSessionCookie(t *testing.T) {
	srv := newTestServer(t, testProducts())

	first := newClient(t)
	resp, _ := doJSON(t, first, http.MethodPost, srv.URL+"/api/cart/items",
		addItemRequest{Slug: "satin-bonnet"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var minted bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			minted = true
		}
	}
	assert.True(t, minted, "first request must set the session cookie")

	// A different client gets its own session and an empty cart.
	second := newClient(t)
	resp, body := doJSON(t, second, http.MethodGet, srv.URL+"/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got cartResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Empty(t, got.Items)

	// The first client still sees its item.
	resp, body = doJSON(t, first, http.MethodGet, srv.URL+"/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got.Items, 1)
}

func TestCheckout(t *testing.T) {
	srv := newTestServer(t, testProducts())
	client := newClient(t)

	t.Run("empty cart is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/checkout", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/cart/items",
		addItemRequest{Slug: "clip-in-set", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/checkout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got checkoutResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "https://ghbi-hair.myshopify.com/cart/21:2", got.URL)
	assert.True(t, strings.HasPrefix(got.URL, "https://"))
}
