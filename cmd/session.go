package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/cdn"
	"github.com/kaboocam/kaboocam/internal/config"
	"github.com/kaboocam/kaboocam/internal/store"
	"github.com/kaboocam/kaboocam/internal/ui/common"
)

// session owns the cache database and the clients built on it.
type session struct {
	deps common.Deps
	db   *cache.DB
}

func openSession(cfg config.Config, logger *zap.Logger) (*session, error) {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	jar, err := api.NewJar(cfg.SessionPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	tokens := store.New(db.Session())
	client := api.NewClient(cfg.APIBaseURL, tokens,
		api.WithJar(jar),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.Named("api")),
	)
	accessor := cdn.New(client.HTTPClient(), client,
		cdn.WithLogger(logger.Named("cdn")),
		cdn.WithIssueTimeout(cfg.CookieTimeout),
		cdn.WithConcurrency(cfg.MaxConcurrent),
	)
	return &session{
		db: db,
		deps: common.Deps{
			Cfg:    cfg,
			Client: client,
			CDN:    accessor,
			Cache:  db,
			Store:  tokens,
			Logger: logger,
		},
	}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}
