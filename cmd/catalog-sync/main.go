// Command catalog-sync pulls the WooCommerce product feed into the local
// catalog. It runs from cron; a failed run exits non-zero and is safe to
// restart because products are upserted by slug.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/horus-optical/horus-backend/internal/catalog"
	"github.com/horus-optical/horus-backend/internal/config"
	"github.com/horus-optical/horus-backend/internal/migrate"
	"github.com/horus-optical/horus-backend/internal/repository/postgres"
	"github.com/horus-optical/horus-backend/internal/repository/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	defaultLimit = 100
	fullLimit    = 1000
)

func main() {
	var (
		full    bool
		limit   int
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "catalog-sync",
		Short: "Sync the product catalog from the upstream shop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if full && !cmd.Flags().Changed("limit") {
				limit = fullLimit
			}
			return run(limit, timeout)
		},
	}

	rootCmd.Flags().BoolVar(&full, "full", false, "sync the full catalog instead of the incremental window")
	rootCmd.Flags().IntVar(&limit, "limit", defaultLimit, "maximum number of products to sync")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "overall run timeout")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Catalog sync failed")
		os.Exit(1)
	}
}

func run(limit int, timeout time.Duration) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if !cfg.Woo.Configured() {
		return fmt.Errorf("WOO_BASE_URL, WOO_CONSUMER_KEY and WOO_CONSUMER_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Image mirroring is optional; without a bucket the catalog keeps the
	// upstream image URLs
	var mirror catalog.ImageMirror
	if cfg.S3.Enabled() {
		images, err := storage.NewS3ImageRepository(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init image storage: %w", err)
		}
		mirror = storage.NewProductImageMirror(images)
	}

	feed := catalog.NewWooClient(cfg.Woo)
	repo := postgres.NewProductRepository(pool)
	syncer := catalog.NewSyncer(feed, repo, mirror, log.Logger)

	stats, err := syncer.Run(ctx, limit)
	if err != nil {
		return fmt.Errorf("sync aborted after %d products: %w", stats.Synced, err)
	}

	total, err := repo.Count(ctx)
	if err == nil {
		log.Info().Int64("catalog_size", total).Msg("Catalog up to date")
	}
	return nil
}
