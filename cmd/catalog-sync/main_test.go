package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
)

func TestWriteDump(t *testing.T) {
	products := []catalog.Product{
		{Slug: "silk-lace-wig", Name: "Silk Lace Wig", Category: "Wigs", Price: decimal.NewFromInt(185)},
		{Slug: "satin-bonnet", Name: "Satin Bonnet", Category: "Accessories", Price: decimal.NewFromInt(15)},
	}
	path := filepath.Join(t.TempDir(), "catalog.json.gz")

	require.NoError(t, writeDump(path, products))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := pgzip.NewReader(f)
	require.NoError(t, err)

	var got []catalog.Product
	require.NoError(t, json.NewDecoder(zr).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "silk-lace-wig", got[0].Slug)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(185)))
}

func TestWriteDump_CreateFailure(t *testing.T) {
	err := writeDump(filepath.Join(t.TempDir(), "no-such-dir", "catalog.json.gz"), nil)
	require.Error(t, err)
}
