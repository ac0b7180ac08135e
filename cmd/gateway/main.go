package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	authapp "github.com/dwikikusuma/marketplace/internal/auth/app"
	authpg "github.com/dwikikusuma/marketplace/internal/auth/infra/postgres"
	"github.com/dwikikusuma/marketplace/internal/auth/infra/jwtsession"
	"github.com/dwikikusuma/marketplace/internal/auth/infra/supabase"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	carthttp "github.com/dwikikusuma/marketplace/internal/cart/httpapi"
	cartadapter "github.com/dwikikusuma/marketplace/internal/cart/infra/adapter"
	cartmemory "github.com/dwikikusuma/marketplace/internal/cart/infra/memory"
	cartredis "github.com/dwikikusuma/marketplace/internal/cart/infra/redis"

	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/marketplace/internal/catalog/httpapi"
	catalogmemory "github.com/dwikikusuma/marketplace/internal/catalog/infra/memory"
	catalogpg "github.com/dwikikusuma/marketplace/internal/catalog/infra/postgres"

	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/marketplace/internal/checkout/httpapi"
	checkoutadapter "github.com/dwikikusuma/marketplace/internal/checkout/infra/adapter"

	orderapp "github.com/dwikikusuma/marketplace/internal/order/app"
	orderhttp "github.com/dwikikusuma/marketplace/internal/order/httpapi"
	orderpg "github.com/dwikikusuma/marketplace/internal/order/infra/postgres"

	"github.com/dwikikusuma/marketplace/pkg/config"
	"github.com/dwikikusuma/marketplace/pkg/logger"
	"github.com/dwikikusuma/marketplace/pkg/metrics"
	"github.com/dwikikusuma/marketplace/pkg/middleware"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
	"github.com/dwikikusuma/marketplace/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "gateway",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.Config{
		Host: cfg.Postgres.Host,
		Port: cfg.Postgres.Port,
		User: cfg.Postgres.User,
		Pass: cfg.Postgres.Pass,
		DB:   cfg.Postgres.DB,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(db); err != nil {
			log.Error("migration failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	m := metrics.New()

	// Catalog
	products, err := catalogRepo(cfg, db)
	if err != nil {
		log.Error("catalog init failed", slog.Any("err", err))
		os.Exit(1)
	}
	catalogSvc := catalogapp.NewService(products)

	// Cart
	store, purge, closeStore, err := cartStore(ctx, cfg)
	if err != nil {
		log.Error("cart store init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()
	cartSvc := cartapp.NewService(store, cartapp.Options{
		NonPositive:     cartapp.QuantityPolicy(cfg.Cart.NonPositiveQuantity),
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
		OnMutation:      m.CartMutation,
	})

	// Orders
	orderSvc := orderapp.NewService(orderpg.NewOrderRepo(db))

	// Checkout (adapters)
	cartReader := checkoutadapter.NewCartServiceReader(cartSvc)
	checkoutSvc := checkoutapp.NewService(
		cartReader,
		checkoutadapter.NewCatalogServiceReader(catalogSvc),
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		cartReader,
		cfg.CheckoutMaxConcurrent,
	)

	gate, err := adminGate(cfg, db)
	if err != nil {
		log.Error("admin gate init failed", slog.Any("err", err))
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := routes{
		log:      log,
		metrics:  m,
		limiter:  limiter,
		origins:  cfg.CORSAllowedOrigins,
		catalog:  cataloghttp.NewHandler(catalogSvc),
		cart:     carthttp.NewHandler(cartSvc, cartadapter.NewCatalogResolver(catalogSvc, cfg.CheckoutMaxConcurrent)),
		checkout: checkouthttp.NewHandler(checkoutSvc),
		orders:   orderhttp.NewHandler(orderSvc),
		gate:     gate,
		ready:    db.PingContext,
	}.handler()

	jobs := cron.New()
	if purge != nil && cfg.Cart.TTL > 0 {
		if _, err := jobs.AddFunc("@every 5m", func() {
			if n := purge(cfg.Cart.TTL); n > 0 {
				m.CartsPurged(n)
				log.Info("idle carts purged", slog.Int("count", n))
			}
		}); err != nil {
			log.Error("schedule cart purge failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
	if _, err := jobs.AddFunc("@every 1m", func() { limiter.Cleanup(10 * time.Minute) }); err != nil {
		log.Error("schedule limiter cleanup failed", slog.Any("err", err))
		os.Exit(1)
	}
	jobs.Start()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting",
			slog.String("addr", addr),
			slog.String("cart_backend", cfg.Cart.Backend),
			slog.String("admin_strategy", cfg.Admin.Strategy),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	<-jobs.Stop().Done()

	wg.Wait()
	log.Info("bye")
}

func catalogRepo(cfg config.Config, db *sqlx.DB) (catalogapp.ProductRepo, error) {
	if cfg.Catalog.SeedFile != "" {
		return catalogmemory.LoadFile(cfg.Catalog.SeedFile)
	}
	return catalogpg.NewProductRepo(db), nil
}

// cartStore builds the configured backend. purge is nil for backends that
// expire carts on their own.
func cartStore(ctx context.Context, cfg config.Config) (store cartapp.Store, purge func(time.Duration) int, closeFn func(), err error) {
	switch cfg.Cart.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return cartredis.NewStore(client, cfg.Cart.TTL), nil, func() { _ = client.Close() }, nil
	default:
		s := cartmemory.NewStore()
		return s, s.PurgeIdle, func() {}, nil
	}
}

func adminGate(cfg config.Config, db *sqlx.DB) (*authapp.Gate, error) {
	directory := authpg.NewDirectory(db)

	switch cfg.Admin.Strategy {
	case "pair":
		return authapp.NewGate(authapp.PairCredentials{
			Directory:   directory,
			IDCookie:    cfg.Admin.IDCookie,
			EmailCookie: cfg.Admin.EmailCookie,
		}), nil
	case "session":
		var resolver authapp.SessionResolver
		switch cfg.Session.Provider {
		case "supabase":
			resolver = supabase.NewResolver(supabase.Config{URL: cfg.Supabase.URL, AnonKey: cfg.Supabase.AnonKey}, directory)
		case "jwt":
			resolver = jwtsession.NewResolver(cfg.Session.JWTSecret)
		default:
			return nil, fmt.Errorf("unknown session provider %q", cfg.Session.Provider)
		}
		return authapp.NewGate(authapp.SessionCredentials{Resolver: resolver, Cookie: cfg.Session.Cookie}), nil
	default:
		return nil, fmt.Errorf("unknown admin strategy %q", cfg.Admin.Strategy)
	}
}

