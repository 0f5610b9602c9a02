package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/doclens/doclens/internal/cache"
	"github.com/doclens/doclens/internal/config"
	"github.com/doclens/doclens/internal/flatten"
	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
	"github.com/doclens/doclens/internal/ocr"
	"github.com/doclens/doclens/internal/ocr/tesseract"
	"github.com/doclens/doclens/internal/render"
)

// engine bundles the wired-up lookup components shared by all commands.
type engine struct {
	locator *locator.Locator
	printer *flatten.Pipeline
	cleanup func()
}

// buildEngine wires the renderer, cache store, OCR client, locator and
// print pipeline from the configuration.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	renderer := render.NewFileRenderer(render.DirResolver(cfg.Documents.Dir))

	store, cleanup, err := buildCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	langs := strings.Split(cfg.OCR.Languages, ",")
	for i := range langs {
		langs[i] = strings.TrimSpace(langs[i])
	}

	client := ocr.NewClient(tesseract.NewEngine(langs...), store,
		ocr.WithTTL(cfg.CacheTTL()),
		ocr.WithTimeout(cfg.OCRTimeout()),
	)

	loc := locator.New(renderer, client, match.FoldContains)
	printer := flatten.New(loc, renderer, cfg.Print.Scale)

	return &engine{locator: loc, printer: printer, cleanup: cleanup}, nil
}

// buildCacheStore selects the coordinate cache backend.
func buildCacheStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if !cfg.UseRedisCache() {
		slog.Debug("Using in-memory coordinate cache")
		return cache.NewMemoryStore(), func() {}, nil
	}

	store, err := cache.NewRedisStoreAddr(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis cache at %s: %w", cfg.Cache.RedisAddr, err)
	}
	slog.Info("Using Redis coordinate cache", "addr", cfg.Cache.RedisAddr, "db", cfg.Cache.RedisDB)

	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close redis cache", "error", err)
		}
	}, nil
}
