package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/persistence"
)

// openBackend builds the document backend selected by STORE_BACKEND. The
// returned close function is never nil.
func openBackend(ctx context.Context, cfg *config.Config, migrationsDir string, logger *zap.Logger) (persistence.DocumentBackend, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.BackendFile:
		logger.Info("ticket store on disk", zap.String("path", cfg.Store.FilePath))
		return persistence.NewFileDocument(cfg.Store.FilePath), noop, nil

	case config.BackendRedis:
		r := persistence.NewRedis(ctx, cfg.Redis, logger)
		return persistence.NewRedisDocument(r, cfg.Store.Key), r.Close, nil

	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg, migrationsDir, logger); err != nil {
				pg.Close()
				return nil, noop, err
			}
		}
		return persistence.NewPostgresDocument(pg, cfg.Store.Key), pg.Close, nil

	case config.BackendMemory:
		logger.Warn("ticket store is in memory; tickets are lost on restart")
		return persistence.NewMemoryDocument(), noop, nil
	}
	return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}
