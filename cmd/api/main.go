// Package main implements the HTTP API server for shopsearch.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	apihttp "github.com/dsjohal14/shopsearch/internal/http"
	"github.com/dsjohal14/shopsearch/internal/app"
	"github.com/dsjohal14/shopsearch/internal/libs/config"
	"github.com/dsjohal14/shopsearch/internal/libs/obs"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := app.OpenSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open catalog source")
	}
	defer closeSource()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	pipeline, err := app.NewPipeline(cfg, src, metrics, obs.Logger("search"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build search pipeline")
	}

	// Create HTTP handler
	handler := apihttp.NewHandler(apihttp.Deps{
		Pipeline:   pipeline,
		Source:     src,
		SourceName: cfg.CatalogSource,
		Matcher:    app.NewMatcher(cfg),
		Metrics:    metrics,
		Brands:     cfg.Brands,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apihttp.NewRouter(handler, reg, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	// Start server
	logger.Info().Str("addr", srv.Addr).Str("catalog_source", cfg.CatalogSource).Msg("starting API server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}
