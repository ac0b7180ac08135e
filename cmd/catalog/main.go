// Command catalog imports a YAML catalog seed into Postgres.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	catalogapp "github.com/dwikikusuma/marketplace/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/marketplace/internal/catalog/infra/memory"
	catalogpg "github.com/dwikikusuma/marketplace/internal/catalog/infra/postgres"

	"github.com/dwikikusuma/marketplace/pkg/config"
	"github.com/dwikikusuma/marketplace/pkg/logger"
	"github.com/dwikikusuma/marketplace/pkg/postgres"
	"github.com/dwikikusuma/marketplace/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadTooling()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	var file string
	var dryRun bool
	flag.StringVar(&file, "file", cfg.Catalog.SeedFile, "catalog seed file (default: $CATALOG_SEED_FILE)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate the seed without writing")
	flag.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "apply migrations before importing")
	flag.Parse()

	log := logger.New(logger.Options{Service: "catalog-import", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if file == "" {
		log.Error("no seed file given; pass -file or set CATALOG_SEED_FILE")
		os.Exit(2)
	}

	seed, err := catalogmemory.LoadFile(file)
	if err != nil {
		log.Error("seed load failed", slog.String("file", file), slog.Any("err", err))
		os.Exit(1)
	}
	from := catalogapp.NewService(seed)

	if dryRun {
		n, err := countProducts(context.Background(), from)
		if err != nil {
			log.Error("seed read failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("seed is valid", slog.String("file", file), slog.Int("products", n))
		return
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
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
	}

	to := catalogapp.NewService(catalogpg.NewProductRepo(db))
	res, err := importCatalog(ctx, from, to, func(seedID, newID string) {
		log.Debug("product imported", slog.String("seed_id", seedID), slog.String("id", newID))
	})
	if err != nil {
		log.Error("import failed", slog.Int("imported", res.Imported), slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("import finished",
		slog.String("file", file),
		slog.Int("imported", res.Imported),
		slog.Int("skipped", res.Skipped),
	)
}
