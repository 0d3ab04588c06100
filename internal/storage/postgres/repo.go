// Package postgres stores report rows in Postgres using pgx v5 and the COPY
// protocol.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dmml/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "postgres"

// OptMaxConns caps the pool size.
const OptMaxConns = "max_conns"

// conn is the subset of *pgxpool.Pool the repository uses.
type conn interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	conn  conn
	table string
}

// NewRepository opens a pool for cfg.DSN and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if err := storage.CheckTable(cfg.Table); err != nil {
		return nil, nil, err
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if n := cfg.Options.Int(OptMaxConns, 0); n > 0 {
		pcfg.MaxConns = int32(n)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{conn: pool, table: cfg.Table}, pool.Close, nil
}

// CreateTableSQL is the DDL for the report table.
func CreateTableSQL(table string) string {
	return storage.CreateTableSQL(table, "CREATE TABLE IF NOT EXISTS ", pgIdent, sqlType)
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt:
		return "INTEGER"
	case storage.TypeBool:
		return "BOOLEAN"
	case storage.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// EnsureTable creates the report table if missing.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, CreateTableSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// CopyFrom streams rows with COPY into the target table.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.conn.CopyFrom(ctx, pgx.Identifier(strings.Split(r.table, ".")), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", r.table, err)
	}
	return n, nil
}

func pgIdent(s string) string { return pgx.Identifier{s}.Sanitize() }
