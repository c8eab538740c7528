// Package app wires configuration, the Shopify-backed catalog, cart storage,
// and the HTTP server into one runnable unit.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/dElCIoGio/ghbi-storefront/internal/catalog"
	"github.com/dElCIoGio/ghbi-storefront/internal/httpapi"
	"github.com/dElCIoGio/ghbi-storefront/internal/kv"
	"github.com/dElCIoGio/ghbi-storefront/internal/shopify"
	"github.com/dElCIoGio/ghbi-storefront/pkg/health"
	"github.com/dElCIoGio/ghbi-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("shop", cfg.Shopify.Domain),
		zap.String("cart_backend", cfg.CartBackend),
	)

	// Storefront API client + cached catalog.
	client := shopify.NewClient(shopify.Config{
		Domain:      cfg.Shopify.Domain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
	})
	catalogSvc := catalog.NewService(client, catalog.ServiceConfig{
		TTL:        cfg.Catalog.TTL,
		FetchLimit: cfg.Catalog.FetchLimit,
	})

	// Cart storage backend.
	carts, closeCarts, err := newCartStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "create cart store")
	}
	defer closeCarts()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(5*time.Second))
	healthSvc.AddReadinessCheck("cart-store", 5*time.Second, carts.Ping)
	healthSvc.AddReadinessCheck("catalog", 10*time.Second, func(ctx context.Context) error {
		_, err := catalogSvc.List(ctx)
		return err
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP routes: health endpoints + API on one mux.
	h := httpapi.NewHandler(
		httpapi.HandlerConfig{ShopDomain: cfg.Shopify.Domain},
		catalogSvc,
		carts,
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	handler := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:           cfg.RateLimit.Max,
			Window:        cfg.RateLimit.Window,
			SessionCookie: httpapi.SessionCookie,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(handler, "storefront",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newCartStore builds the configured cart backend. The returned closer is
// always safe to call.
func newCartStore(ctx context.Context, cfg *Config) (kv.Store, func(), error) {
	switch cfg.CartBackend {
	case "redis":
		store, err := kv.NewRedis(kv.RedisConfig{
			URL:    cfg.RedisURL,
			TTL:    30 * 24 * time.Hour,
			Prefix: "ghbi:cart:",
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}
