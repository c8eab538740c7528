package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
)

func product(slug, category string, price int64) catalog.Product {
	return catalog.Product{
		Slug:     slug,
		Name:     slug,
		Category: category,
		Price:    decimal.NewFromInt(price),
	}
}

func slugs(items []catalog.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Slug
	}
	return out
}

func TestList_FilterANDSemantics(t *testing.T) {
	products := []catalog.Product{
		product("wig-cheap", "wigs", 50),
		product("bundle-dear", "bundles", 200),
	}

	t.Run("category and price both constrain", func(t *testing.T) {
		p := DefaultParams()
		p.Categories = []string{"wigs"}
		p.Price = PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(100)}

		res := List(products, p)
		assert.Equal(t, []string{"wig-cheap"}, slugs(res.Items))
		assert.Equal(t, 1, res.Total)
	})

	t.Run("price excludes a category match", func(t *testing.T) {
		p := DefaultParams()
		p.Categories = []string{"wigs", "bundles"}
		p.Price = PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(100)}

		res := List(products, p)
		assert.Equal(t, []string{"wig-cheap"}, slugs(res.Items))
	})

	t.Run("empty dimension passes everything", func(t *testing.T) {
		res := List(products, DefaultParams())
		assert.Equal(t, 2, res.Total)
	})
}

func TestList_Search(t *testing.T) {
	products := []catalog.Product{
		{Slug: "a", Name: "Silk Lace Wig", Price: decimal.NewFromInt(10), Category: "wigs"},
		{Slug: "b", Name: "Clip-in Extensions", Price: decimal.NewFromInt(10), Category: "extensions"},
	}

	p := DefaultParams()
	p.Query = "lace"

	res := List(products, p)
	assert.Equal(t, []string{"a"}, slugs(res.Items))
}

func TestList_PriceRangeInclusive(t *testing.T) {
	products := []catalog.Product{product("edge", "wigs", 100)}

	p := DefaultParams()
	p.Price = PriceRange{Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(100)}

	res := List(products, p)
	assert.Equal(t, 1, res.Total, "bounds are inclusive")
}

func TestList_SortFeaturedIsStable(t *testing.T) {
	products := []catalog.Product{
		{Slug: "1", Price: decimal.Zero},
		{Slug: "2", Price: decimal.Zero, IsHighlighted: true},
		{Slug: "3", Price: decimal.Zero},
	}

	p := DefaultParams()
	p.Price = PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(1000)}

	res := List(products, p)
	assert.Equal(t, []string{"2", "1", "3"}, slugs(res.Items),
		"highlighted first, relative order preserved among the rest")
}

func TestList_SortByPrice(t *testing.T) {
	products := []catalog.Product{
		product("mid", "wigs", 100),
		product("low", "wigs", 10),
		product("high", "wigs", 500),
	}

	p := DefaultParams()
	p.Sort = SortPriceLow
	res := List(products, p)
	assert.Equal(t, []string{"low", "mid", "high"}, slugs(res.Items))

	p.Sort = SortPriceHigh
	res = List(products, p)
	assert.Equal(t, []string{"high", "mid", "low"}, slugs(res.Items))
}

func TestList_SortByRating(t *testing.T) {
	products := []catalog.Product{
		{Slug: "ok", Rating: 3.1, Price: decimal.NewFromInt(1)},
		{Slug: "best", Rating: 4.9, Price: decimal.NewFromInt(1)},
		{Slug: "good", Rating: 4.2, Price: decimal.NewFromInt(1)},
	}

	p := DefaultParams()
	p.Sort = SortRating
	res := List(products, p)
	assert.Equal(t, []string{"best", "good", "ok"}, slugs(res.Items))
}

func TestList_Pagination(t *testing.T) {
	var products []catalog.Product
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		products = append(products, product(s, "wigs", 10))
	}

	p := DefaultParams()
	p.PageSize = 2

	t.Run("first page", func(t *testing.T) {
		p := p
		p.Page = 1
		res := List(products, p)
		assert.Equal(t, []string{"a", "b"}, slugs(res.Items))
		assert.Equal(t, 5, res.Total)
	})

	t.Run("last partial page", func(t *testing.T) {
		p := p
		p.Page = 3
		res := List(products, p)
		assert.Equal(t, []string{"e"}, slugs(res.Items))
	})

	t.Run("page beyond the end is empty, not an error", func(t *testing.T) {
		p := p
		p.Page = 9
		res := List(products, p)
		assert.Empty(t, res.Items)
		assert.Equal(t, 5, res.Total)
	})

	t.Run("zero page clamps to first", func(t *testing.T) {
		p := p
		p.Page = 0
		res := List(products, p)
		assert.Equal(t, []string{"a", "b"}, slugs(res.Items))
	})
}

func TestActiveFilterCount(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 0, ActiveFilterCount(p))

	p.Categories = []string{"wigs", "bundles"}
	p.Colors = []string{"Black"}
	assert.Equal(t, 3, ActiveFilterCount(p))

	p.Price = PriceRange{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(100)}
	assert.Equal(t, 4, ActiveFilterCount(p), "non-default price range counts as one")
}

// ClearFilters resets every filter but keeps the page: a caller sitting on
// page 3 stays on page 3 unless it resets pagination itself.
func TestClearFilters_PreservesPage(t *testing.T) {
	p := DefaultParams()
	p.Query = "lace"
	p.Categories = []string{"wigs"}
	p.Sort = SortPriceHigh
	p.Page = 3

	cleared := p.ClearFilters()

	require.Equal(t, 0, ActiveFilterCount(cleared))
	assert.Empty(t, cleared.Query)
	assert.Equal(t, SortFeatured, cleared.Sort)
	assert.Equal(t, 3, cleared.Page)
}
