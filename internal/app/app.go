// Package app builds the catalog source, scoring engine and pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dsjohal14/shopsearch/internal/libs/config"
	"github.com/dsjohal14/shopsearch/internal/libs/obs"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/db"
	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/scoring"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

// connectTimeout bounds the initial database connection
const connectTimeout = 30 * time.Second

// OpenSource returns the configured catalog source and a function that releases it
func OpenSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (catalog.Source, func(), error) {
	noop := func() {}

	switch cfg.CatalogSource {
	case config.SourceHTTP:
		var src catalog.Source = catalog.NewHTTPSource(cfg.CatalogURL, cfg.CatalogTimeout)
		if cfg.CatalogRetries > 0 {
			rc := catalog.DefaultRetryConfig()
			rc.MaxRetries = uint64(cfg.CatalogRetries)
			src = catalog.NewRetryingSource(src, rc, logger)
		}
		logger.Info().Str("url", cfg.CatalogURL).Int("retries", cfg.CatalogRetries).Msg("using http catalog")
		return src, noop, nil

	case config.SourcePostgres:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Msg("using postgres catalog")
		return database, database.Close, nil

	case config.SourceFile:
		src, err := catalog.NewFileSource(cfg.CatalogFile)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("file", cfg.CatalogFile).Int("items", src.Count()).Msg("using file catalog")
		return src, noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown catalog source %q", config.ErrInvalidConfig, cfg.CatalogSource)
	}
}

// NewPipeline builds the search pipeline, loading scoring preset overrides when configured
func NewPipeline(cfg *config.Config, src catalog.Source, metrics *obs.Metrics, logger zerolog.Logger) (*search.Pipeline, error) {
	presets, err := scoring.LoadPresetsFile(cfg.ScoringPresetsFile)
	if err != nil {
		return nil, err
	}
	if cfg.ScoringPresetsFile != "" {
		logger.Info().Str("file", cfg.ScoringPresetsFile).Strs("presets", presets.Names()).Msg("loaded scoring presets")
	}

	return search.New(src,
		search.WithEngine(scoring.NewEngine(presets)),
		search.WithLogger(logger),
		search.WithMetrics(metrics),
		search.WithBrands(cfg.Brands),
		search.WithLimits(cfg.DefaultLimit, cfg.MaxLimit),
	), nil
}

// NewMatcher builds the UI intent matcher with the configured threshold
func NewMatcher(cfg *config.Config) *intent.Matcher {
	return intent.NewMatcher(intent.WithThreshold(cfg.UIFallbackThreshold))
}
