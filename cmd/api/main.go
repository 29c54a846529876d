package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-catalog/api/routes"
	"github.com/angelmondragon/storefront-catalog/internal/browse"
	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/config"
	"github.com/angelmondragon/storefront-catalog/pkg/db"
	"github.com/angelmondragon/storefront-catalog/pkg/env"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
	"github.com/angelmondragon/storefront-catalog/pkg/migrate"
	"github.com/angelmondragon/storefront-catalog/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if loaded, err := env.Load("."); err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "dotenv load failed, relying on environment")
	} else if len(loaded) == 0 {
		logg.Info(context.Background(), "no dotenv files found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.Open(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient   *redis.Client
		snapshotCache catalog.Cache
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		snapshotCache = catalog.NewSnapshotCache(redisClient, cfg.Catalog.CacheTTL)
	} else {
		logg.Warn(context.Background(), "redis not configured; snapshot cache, rate limiting and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	loader := catalog.NewLoader(catalog.NewRepository(dbClient.DB()), snapshotCache, catalog.LoaderOptions{
		FetchTimeout: cfg.Catalog.FetchTimeout,
		MaxAge:       cfg.Catalog.CacheTTL,
		Metrics:      engineMetrics,
		Logger:       logg,
	})

	browseService, err := browse.NewService(browse.ServiceParams{
		Loader:             loader,
		Logger:             logg,
		Metrics:            engineMetrics,
		BasePath:           cfg.Catalog.BasePath,
		CategoryPathPrefix: cfg.Catalog.CategoryPathPrefix,
		URLDebounce:        cfg.Catalog.URLDebounce,
		IdleTTL:            cfg.Sessions.IdleTTL,
		SweepInterval:      cfg.Sessions.SweepInterval,
		MaxSessions:        cfg.Sessions.MaxSessions,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create browse service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// warm the snapshot; a failure here is served as an error until the store recovers
	if _, err := loader.Load(ctx); err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{"error": err.Error()}), "initial catalog load failed")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, browseService, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sessionsDone := make(chan error, 1)
	go func() {
		sessionsDone <- browseService.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	if err := <-sessionsDone; err != nil && !errors.Is(err, context.Canceled) {
		shutdownErr = multierr.Append(shutdownErr, err)
	}
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, dbClient.Close())

	if shutdownErr != nil {
		logg.Error(ctx, "api server shutdown incomplete", shutdownErr)
		exitCode = 1
	}
	logg.Info(ctx, "api server shut down")
	cancel()
	stop()
	os.Exit(exitCode)
}
