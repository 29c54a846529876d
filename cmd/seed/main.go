package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/config"
	"github.com/angelmondragon/storefront-catalog/pkg/db"
	"github.com/angelmondragon/storefront-catalog/pkg/env"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/migrate"
	"github.com/angelmondragon/storefront-catalog/pkg/redis"
)

//go:embed catalog.json
var defaultCatalog []byte

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_, err := env.Load(".")
	requireResource(ctx, logg, "dotenv", err)

	file := flag.String("file", "", "catalog fixture (JSON); defaults to the bundled demo catalog")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "file": *file})

	var source io.Reader = bytes.NewReader(defaultCatalog)
	if *file != "" {
		fh, err := os.Open(*file)
		requireResource(ctx, logg, "fixture file", err)
		defer fh.Close()
		source = fh
	}

	f, err := decodeFixture(source)
	requireResource(ctx, logg, "fixture", err)
	rows, err := buildRows(f)
	requireResource(ctx, logg, "fixture rows", err)

	dbClient, err := db.Open(ctx, cfg, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	repo := catalog.NewRepository(dbClient.DB())
	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		if err := txRepo.UpsertCategories(ctx, rows.categories); err != nil {
			if db.IsUniqueViolation(err, "categories_slug_key") {
				return fmt.Errorf("category slug already used by another id: %w", err)
			}
			return err
		}
		return txRepo.UpsertProducts(ctx, rows.products)
	})
	requireResource(ctx, logg, "upsert", err)

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer redisClient.Close()
		if err := catalog.NewSnapshotCache(redisClient, cfg.Catalog.CacheTTL).Invalidate(ctx); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "failed to invalidate cached catalog snapshot")
		}
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"categories": len(rows.categories),
		"products":   len(rows.products),
	})
	logg.Info(ctx, "catalog seeded")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
