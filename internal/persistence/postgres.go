package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required for the postgres backend")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Postgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// PostgresDocument stores the document as one jsonb row keyed by name.
type PostgresDocument struct {
	pg   *Postgres
	name string
}

// NewPostgresDocument returns a backend bound to the named row.
func NewPostgresDocument(pg *Postgres, name string) *PostgresDocument {
	return &PostgresDocument{pg: pg, name: name}
}

func (d *PostgresDocument) Read(ctx context.Context) ([]byte, error) {
	const query = `SELECT document FROM ticket_store_documents WHERE name=$1`
	var data []byte
	if err := d.pg.Pool.QueryRow(ctx, query, d.name).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", d.name, err)
	}
	return data, nil
}

// Write upserts the row; the single statement replaces the whole document.
func (d *PostgresDocument) Write(ctx context.Context, data []byte) error {
	const query = `
        INSERT INTO ticket_store_documents (name, document, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`
	if _, err := d.pg.Pool.Exec(ctx, query, d.name, string(data)); err != nil {
		return fmt.Errorf("upsert document %s: %w", d.name, err)
	}
	return nil
}

func (d *PostgresDocument) Ping(ctx context.Context) error {
	return d.pg.Ping(ctx)
}
