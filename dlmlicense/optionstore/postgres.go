package optionstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPostgresTable = "dlm_options"

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTableName sets the PostgreSQL table name. Default: "dlm_options".
func WithTableName(name string) PostgresOption {
	return func(s *PostgresStore) {
		s.tableName = name
	}
}

// WithPostgresSite sets the site scope. Default: DefaultSite.
func WithPostgresSite(site string) PostgresOption {
	return func(s *PostgresStore) {
		s.site = siteOrDefault(site)
	}
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool      *pgxpool.Pool
	tableName string
	site      string
}

// NewPostgresStore creates a new PostgreSQL-backed option store.
// It auto-creates the table on initialization.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		pool:      pool,
		tableName: defaultPostgresTable,
		site:      DefaultSite,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !validIdentifier.MatchString(s.tableName) {
		return nil, fmt.Errorf("invalid table name %q: must match [a-zA-Z_][a-zA-Z0-9_]*", s.tableName)
	}
	if err := s.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return s, nil
}

// ForSite returns a store sharing the pool and table, scoped to site.
func (s *PostgresStore) ForSite(site string) *PostgresStore {
	return &PostgresStore{pool: s.pool, tableName: s.tableName, site: siteOrDefault(site)}
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			site_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (site_id, name)
		);
	`, s.tableName)
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE site_id = $1 AND name = $2`, s.tableName)
	var value string
	err := s.pool.QueryRow(ctx, query, s.site, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get option %s: %w", name, err)
	}
	return []byte(value), nil
}

func (s *PostgresStore) Set(ctx context.Context, name string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, name, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (site_id, name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, s.site, name, string(value)); err != nil {
		return fmt.Errorf("set option %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE site_id = $1 AND name = $2`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, s.site, name); err != nil {
		return fmt.Errorf("delete option %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Close(_ context.Context) error {
	return nil // caller manages the pgxpool.Pool lifecycle
}
