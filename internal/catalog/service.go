package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dElCIoGio/ghbi-storefront/internal/shopify"
)

// Source provides raw product nodes from the commerce platform.
type Source interface {
	Products(ctx context.Context, first int) ([]shopify.Product, error)
	ProductByHandle(ctx context.Context, handle string) (*shopify.Product, error)
}

// ServiceConfig tunes the catalog cache.
type ServiceConfig struct {
	// TTL is how long a fetched catalog stays fresh. Zero means 5m.
	TTL time.Duration
	// FetchLimit is the max products requested per catalog fetch. Zero means 100.
	FetchLimit int
}

// Service serves the normalized catalog with a TTL cache over the upstream
// source. Concurrent refreshes collapse into a single upstream call, and an
// expired cache is still served when a refresh fails.
type Service struct {
	source Source
	ttl    time.Duration
	limit  int

	group singleflight.Group

	mu        sync.RWMutex
	products  []Product
	fetchedAt time.Time
}

// NewService creates a catalog Service over the given source.
func NewService(source Source, cfg ServiceConfig) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.FetchLimit == 0 {
		cfg.FetchLimit = 100
	}
	return &Service{
		source: source,
		ttl:    cfg.TTL,
		limit:  cfg.FetchLimit,
	}
}

// List returns the normalized catalog, refreshing it from upstream when the
// cache has expired.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if products, ok := s.cached(); ok {
		return products, nil
	}

	result, err, _ := s.group.Do("catalog", func() (any, error) {
		// Re-check under the flight: another caller may have refreshed.
		if products, ok := s.cached(); ok {
			return products, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		// Stale-while-error: a previously fetched catalog beats a hard failure.
		if stale := s.staleCopy(); stale != nil {
			zctx.From(ctx).Warn("Serving stale catalog after refresh failure", zap.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return result.([]Product), nil
}

// GetBySlug returns one normalized product. The cached catalog is consulted
// first; on a miss the product is fetched by handle. Returns ErrNotFound
// when the slug does not exist.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	products, err := s.List(ctx)
	if err == nil {
		for i := range products {
			if products[i].Slug == slug {
				return &products[i], nil
			}
		}
	}

	raw, err := s.source.ProductByHandle(ctx, slug)
	if err != nil {
		if errors.Is(err, shopify.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "fetch product")
	}
	p := Normalize(*raw)
	return &p, nil
}

// Related returns up to limit products sharing the category of the product
// identified by slug, excluding the product itself.
func (s *Service) Related(ctx context.Context, slug string, limit int) ([]Product, error) {
	target, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	related := make([]Product, 0, limit)
	for _, p := range products {
		if p.Slug == slug {
			continue
		}
		if !strings.EqualFold(p.Category, target.Category) {
			continue
		}
		related = append(related, p)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// cached returns the product list when it is still fresh.
func (s *Service) cached() ([]Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.products == nil || time.Since(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return s.products, true
}

// staleCopy returns whatever catalog is held, fresh or not.
func (s *Service) staleCopy() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// refresh fetches and normalizes the catalog, replacing the cache.
func (s *Service) refresh(ctx context.Context) ([]Product, error) {
	raw, err := s.source.Products(ctx, s.limit)
	if err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}

	products := make([]Product, len(raw))
	for i, r := range raw {
		products[i] = Normalize(r)
	}

	s.mu.Lock()
	s.products = products
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return products, nil
}
