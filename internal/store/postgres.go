package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hoodmarket/ticket-bot/internal/config"
)

const snapshotName = "ticket-bot"

// PostgresStore persists the snapshot as a single jsonb row. The upsert
// replaces the document in one statement, which satisfies the atomic
// whole-document contract.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool and ensures the schema.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store: POSTGRES_DSN required for postgres backend")
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

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres")
	return s, nil
}

func (p *PostgresStore) ensureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS snapshots (
            name       TEXT PRIMARY KEY,
            body       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// Load fetches and decodes the snapshot row.
func (p *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	const query = `SELECT body FROM snapshots WHERE name=$1`
	var data []byte
	if err := p.pool.QueryRow(ctx, query, snapshotName).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewSnapshot(), nil
		}
		return nil, fmt.Errorf("store: select snapshot: %w", err)
	}
	snapshot := NewSnapshot()
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("store: decode snapshot: %w", err)
	}
	snapshot.normalize()
	return snapshot, nil
}

// Save upserts the snapshot row.
func (p *PostgresStore) Save(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	const query = `
        INSERT INTO snapshots (name, body, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET body=EXCLUDED.body, updated_at=NOW()`
	if _, err := p.pool.Exec(ctx, query, snapshotName, data); err != nil {
		return fmt.Errorf("store: upsert snapshot: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases pool resources.
func (p *PostgresStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}
