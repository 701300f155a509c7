package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Options struct {
	DSN         string
	MaxConns    int32
	SeedCatalog bool
}

// Open connects the shared pool, bootstraps the schema and optionally seeds the
// catalog. The caller owns the returned pool and closes it on shutdown.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if opts.SeedCatalog {
		seeded, err := SeedCatalog(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		if seeded {
			logger.Info("catalog seeded", zap.Int("products", len(catalogSeed)))
		}
	}

	logger.Info("postgres ready",
		zap.String("host", cfg.ConnConfig.Host),
		zap.String("database", cfg.ConnConfig.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return pool, nil
}
