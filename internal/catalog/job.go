package catalog

import (
	"context"
	"fmt"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/rs/zerolog"
)

// Feed supplies pages of upstream products
type Feed interface {
	FetchPage(ctx context.Context, page int) ([]WooProduct, error)
}

// ImageMirror copies upstream image URLs into owned storage and returns the
// replacement URLs
type ImageMirror interface {
	Mirror(ctx context.Context, slug string, urls []string) ([]string, error)
}

// Stats summarizes one sync run
type Stats struct {
	Pages   int
	Synced  int
	Skipped int
}

// Syncer walks the upstream feed and upserts products by slug. A failure on
// one product skips it and continues; a failed page fetch aborts the run,
// which is safe to restart from the top because upserts are idempotent.
type Syncer struct {
	feed       Feed
	repo       domain.ProductRepository
	images     ImageMirror
	normalizer *Normalizer
	logger     zerolog.Logger
}

// NewSyncer creates a Syncer. images may be nil to keep upstream image URLs.
func NewSyncer(feed Feed, repo domain.ProductRepository, images ImageMirror, logger zerolog.Logger) *Syncer {
	return &Syncer{
		feed:       feed,
		repo:       repo,
		images:     images,
		normalizer: NewNormalizer(),
		logger:     logger,
	}
}

// SetClassifier replaces the frequency classifier
func (s *Syncer) SetClassifier(classify FrequencyClassifier) {
	s.normalizer = NewNormalizerWithClassifier(classify)
}

// Run syncs up to limit products and returns run statistics
func (s *Syncer) Run(ctx context.Context, limit int) (Stats, error) {
	var stats Stats

	for page := 1; stats.Synced+stats.Skipped < limit; page++ {
		batch, err := s.feed.FetchPage(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		stats.Pages++

		for _, raw := range batch {
			if stats.Synced+stats.Skipped >= limit {
				break
			}
			if err := s.syncOne(ctx, raw); err != nil {
				stats.Skipped++
				s.logger.Warn().Err(err).
					Str("slug", raw.Slug).
					Int64("wooId", raw.ID).
					Msg("skipping product")
				continue
			}
			stats.Synced++
		}
	}

	s.logger.Info().
		Int("pages", stats.Pages).
		Int("synced", stats.Synced).
		Int("skipped", stats.Skipped).
		Msg("catalog sync finished")
	return stats, nil
}

func (s *Syncer) syncOne(ctx context.Context, raw WooProduct) error {
	if raw.Slug == "" {
		return fmt.Errorf("product %d has no slug", raw.ID)
	}

	product := s.normalizer.Normalize(raw)

	if s.images != nil && len(product.Images) > 0 {
		mirrored, err := s.images.Mirror(ctx, product.Slug, product.Images)
		if err != nil {
			// keep upstream URLs when mirroring fails
			s.logger.Warn().Err(err).Str("slug", product.Slug).Msg("image mirror failed")
		} else {
			product.Images = mirrored
		}
	}

	if _, err := s.repo.Upsert(ctx, product); err != nil {
		return fmt.Errorf("upsert %s: %w", product.Slug, err)
	}
	return nil
}
