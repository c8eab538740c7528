// catalog-sync pulls the full catalog from the Storefront API, normalizes
// it, and writes a gzip-compressed JSON dump. The dump feeds offline jobs
// (feeds, search indexing) without hitting the API per consumer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/shopify"
)

func main() {
	var (
		domain     string
		token      string
		apiVersion string
		outFile    string
		fetchLimit int
	)

	flag.StringVar(&domain, "shop-domain", "", "shop domain, e.g. example.myshopify.com (or GHBI_SHOPIFY_DOMAIN env)")
	flag.StringVar(&token, "storefront-token", "", "Storefront API access token (or GHBI_SHOPIFY_ACCESSTOKEN env)")
	flag.StringVar(&apiVersion, "api-version", "2024-10", "Storefront API version")
	flag.StringVar(&outFile, "out", "catalog.json.gz", "output path for the compressed catalog dump")
	flag.IntVar(&fetchLimit, "limit", 100, "maximum products to fetch")
	flag.Parse()

	if domain == "" {
		domain = os.Getenv("GHBI_SHOPIFY_DOMAIN")
	}
	if domain == "" {
		slog.Error("shop domain is required: set --shop-domain or GHBI_SHOPIFY_DOMAIN")
		os.Exit(1)
	}
	if token == "" {
		token = os.Getenv("GHBI_SHOPIFY_ACCESSTOKEN")
	}
	if token == "" {
		slog.Error("storefront token is required: set --storefront-token or GHBI_SHOPIFY_ACCESSTOKEN")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, domain, token, apiVersion, outFile, fetchLimit); err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("sync completed successfully")
}

func run(ctx context.Context, domain, token, apiVersion, outFile string, fetchLimit int) error {
	client := shopify.NewClient(shopify.Config{
		Domain:      domain,
		AccessToken: token,
		APIVersion:  apiVersion,
		Timeout:     30 * time.Second,
	})

	slog.Info("fetching catalog", slog.String("shop", domain), slog.Int("limit", fetchLimit))

	raw, err := client.Products(ctx, fetchLimit)
	if err != nil {
		return errors.Wrap(err, "fetch products")
	}

	products := make([]catalog.Product, len(raw))
	for i, r := range raw {
		products[i] = catalog.Normalize(r)
	}

	slog.Info("writing dump", slog.String("path", outFile), slog.Int("products", len(products)))

	if err := writeDump(outFile, products); err != nil {
		return errors.Wrap(err, "write dump")
	}
	return nil
}

func writeDump(path string, products []catalog.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}

	zw := pgzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(products); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "encode catalog")
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "close gzip writer")
	}
	return f.Close()
}
