package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/pkg/config"
	"github.com/angelmondragon/storefront-catalog/pkg/db"
	"github.com/angelmondragon/storefront-catalog/pkg/env"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_, err := env.Load(".")
	requireResource(ctx, logg, "dotenv", err)

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate|verify")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the migrations directory
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	dbClient, err := db.Open(ctx, cfg, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := run(ctx, logg, dbClient, opts); err != nil {
		logg.Error(ctx, "migrate failed", err)
		dbClient.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, dbClient *db.Client, opts options) error {
	if opts.cmd == "verify" {
		report, err := verifyCatalog(ctx, catalog.NewRepository(dbClient.DB()))
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, report.fields()), "catalog verified")
		return nil
	}

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	dialect := migrate.Dialect(dbClient.Driver())

	switch opts.cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, dialect, opts.dir, opts.cmd); err != nil {
			return err
		}
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.dir, opts.version); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}

	if opts.cmd == "up" {
		report, err := verifyCatalog(ctx, catalog.NewRepository(dbClient.DB()))
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, report.fields()), "migrations applied")
	}
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
