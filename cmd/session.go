package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/cache"
	"github.com/tayloree/shopcli/internal/config"
	"github.com/tayloree/shopcli/internal/display"
	"github.com/tayloree/shopcli/internal/logger"
	"go.uber.org/zap"
)

// session is the per-invocation state shared by every command: validated
// config, the global logger, and a way to obtain the catalog.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	source *cache.Source
	client *api.Client
}

func newSession() (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, invalidArgsError(err.Error(), "Check shopcli.yaml or SHOPCLI_* environment variables.")
	}
	if flagAPI != "" {
		cfg.API.BaseURL = flagAPI
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logger.Init(logger.Options{Env: cfg.Log.Env, Level: level, File: cfg.Log.File})

	return &session{cfg: cfg, log: logger.L()}, nil
}

// catalogSource builds the cached API source on first use.
func (s *session) catalogSource() *cache.Source {
	if s.source != nil {
		return s.source
	}

	s.client = api.NewClientWithOptions(api.ClientOptions{
		BaseURL: s.cfg.API.BaseURL,
		Timeout: s.cfg.API.Timeout,
		Retries: s.cfg.API.Retries,
	})

	var store cache.Store
	if addr := s.cfg.Cache.RedisAddr; addr != "" {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     addr,
			Password: s.cfg.Cache.RedisPassword,
			DB:       s.cfg.Cache.RedisDB,
		}, cache.WithLogger(s.log))
		if err != nil {
			// The catalog still loads straight from the API.
			s.log.Warn("redis cache unavailable, using in-process cache", zap.String("addr", addr), zap.Error(err))
		} else {
			store = redisStore
		}
	}

	s.source = cache.NewSource(s.client, store, s.cfg.Cache.TTL, s.log)
	return s.source
}

// loadCatalog returns the snapshot named by --catalog, or the API catalog.
func (s *session) loadCatalog(ctx context.Context) (*api.Snapshot, string, error) {
	if flagCatalog != "" {
		body, err := os.ReadFile(flagCatalog)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, "", invalidArgsError(
					fmt.Sprintf("catalog file %s does not exist", flagCatalog),
					"shopcli browse Electronics --catalog ./catalog.json",
				)
			}
			return nil, "", fmt.Errorf("reading catalog file: %w", err)
		}
		snap, err := api.ParseSnapshot(body)
		if err != nil {
			return nil, "", invalidArgsError(
				fmt.Sprintf("catalog file %s: %v", flagCatalog, err),
				`Expected {"categories": [...], "products": [...]}.`,
			)
		}
		return snap, flagCatalog, nil
	}

	snap, err := s.catalogSource().Load(ctx)
	if err != nil {
		return nil, "", upstreamError("loading catalog", err)
	}
	return snap, s.client.BaseURL(), nil
}

func (s *session) Close() {
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			s.log.Debug("closing catalog cache", zap.Error(err))
		}
	}
	if s.client != nil {
		_ = s.client.Close()
	}
	logger.Sync()
}

// withCatalog opens a session, loads the catalog and hands both to fn.
func withCatalog(cmd *cobra.Command, fn func(s *session, snap *api.Snapshot) error) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	snap, source, err := s.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	s.log.Debug("catalog loaded",
		zap.String("source", source),
		zap.Int("categories", len(snap.Categories)),
		zap.Int("products", len(snap.Products)),
	)
	if !flagJSON {
		display.PrintCatalogContext(cmd.OutOrStdout(), source, len(snap.Products))
	}
	return fn(s, snap)
}
