package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/epavlov/todolite/internal/assets"
	"github.com/epavlov/todolite/internal/botcheck"
	"github.com/epavlov/todolite/internal/config"
	"github.com/epavlov/todolite/internal/localstate"
	"github.com/epavlov/todolite/internal/logging"
	"github.com/epavlov/todolite/internal/session"
	"github.com/epavlov/todolite/internal/todostore"
)

// Bootstrap builds the view controller with its real collaborators: the
// identity provider client, the reCAPTCHA gate, the hosted todo store, the
// object store uploader, and the local state cache. Background workers
// (widget loading, token refresh) are started later by Run so they share
// its lifetime.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cache, err := localstate.Open(ctx, cfg.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("local state init error: %w", err)
	}

	store, err := todostore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("todo store init error: %w", err)
	}

	uploads := assets.NewS3Uploader(cfg, logger)
	gate := botcheck.NewRecaptcha(cfg, logger)
	sessions := session.NewRESTClient(cfg, logger)

	a := NewApp(sessions, gate, store, uploads, cache, logger)
	a.background = append(a.background,
		func(ctx context.Context) {
			if err := gate.Load(ctx); err != nil {
				logger.Warn(ctx, "captcha widget did not load", "err", err)
			}
		},
		func(ctx context.Context) {
			sessions.StartRefresh(ctx, cfg.SessionRefreshInterval)
		},
	)
	a.closers = append(a.closers, sessions.Close, store.Close, cache.Close)
	return a, nil
}
