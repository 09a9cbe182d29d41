// Package postgres provides Postgres-backed persistence: the append-only lake
// table sink and the run ledger.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PoolConfig controls the Postgres connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type copyCloser interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// Sink appends assembled rows to lake tables with the COPY protocol.
type Sink struct {
	pool copyCloser
}

// NewPool opens a pgx pool from cfg.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// NewSink creates a Postgres-backed Sink using the provided config.
func NewSink(ctx context.Context, cfg PoolConfig) (*Sink, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Sink{pool: pool}, nil
}

// NewSinkWithPool constructs a sink over an existing pool. The pool stays owned
// by the caller when it is shared with the run ledger.
func NewSinkWithPool(pool copyCloser) (*Sink, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Sink{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Sink) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Append copies rows into schema's table. Rows must already be in column order.
// The table is never created, truncated or altered.
func (s *Sink) Append(ctx context.Context, schema warehouse.TableSchema, rows [][]any) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}
	ident, err := identifier(schema)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	columns := schema.ColumnNames()
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("append %s row %d: got %d values for %d columns", schema.Table, i, len(row), len(columns))
		}
	}
	n, err := s.pool.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", schema.Table, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", schema.Table, n, len(rows))
	}
	return nil
}

func identifier(schema warehouse.TableSchema) (pgx.Identifier, error) {
	if !validIdentifier.MatchString(schema.Table) {
		return nil, fmt.Errorf("invalid table name %q", schema.Table)
	}
	if schema.Dataset == "" {
		return pgx.Identifier{schema.Table}, nil
	}
	if !validIdentifier.MatchString(schema.Dataset) {
		return nil, fmt.Errorf("invalid dataset name %q", schema.Dataset)
	}
	return pgx.Identifier{schema.Dataset, schema.Table}, nil
}
