package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (GHBI_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	CartBackend string `default:"memory" usage:"Cart storage backend: memory, redis, or postgres" flag:"cart-backend"`
	RedisURL    string `usage:"Redis connection URL (GHBI_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	DatabaseURL string `usage:"PostgreSQL connection URL (GHBI_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Shopify   ShopifyConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ShopifyConfig points the catalog at one shop's Storefront API.
type ShopifyConfig struct {
	Domain      string        `usage:"Shop domain, e.g. example.myshopify.com" flag:"shop-domain"`
	AccessToken string        `usage:"Storefront API public access token" flag:"storefront-token"`
	APIVersion  string        `default:"2024-10" usage:"Storefront API version" flag:"api-version"`
	Timeout     time.Duration `default:"10s" usage:"Storefront API request timeout"`
}

// CatalogConfig controls the in-process catalog cache.
type CatalogConfig struct {
	TTL        time.Duration `default:"5m" usage:"Catalog cache time-to-live"`
	FetchLimit int           `default:"100" usage:"Products fetched per catalog refresh" flag:"fetch-limit"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"120" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers. Credentials
// default to true because the cart session rides on a cookie.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GHBI",
		Files:     []string{"config.yaml", "/etc/ghbi/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Shopify.Domain == "" {
		return nil, errors.New("shop domain is required: set GHBI_SHOPIFY_DOMAIN")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, errors.New("storefront token is required: set GHBI_SHOPIFY_ACCESSTOKEN")
	}
	switch cfg.CartBackend {
	case "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("redis backend needs GHBI_REDIS_URL or REDIS_URL")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres backend needs GHBI_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown cart backend %q", cfg.CartBackend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's GHBI_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
