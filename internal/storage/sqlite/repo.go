// Package sqlite implements a SQLite-backed report store using database/sql.
// Rows are inserted with a prepared statement inside one transaction per
// batch; SQLite has no bulk-load API comparable to COPY.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"dmml/internal/config"
	"dmml/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a SQLite-backed storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository opens the database at cfg.DSN, e.g. "metadata/quality.db" or
// "file:quality.db?_pragma=busy_timeout(5000)".
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if err := storage.CheckTable(cfg.Table); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	opts := cfg.Options
	if opts == nil {
		opts = config.Options{}
	}
	// One writer; concurrent writers only contend on the file lock.
	if _, set := opts[storage.OptMaxOpenConns]; !set {
		opts = withDefault(opts, storage.OptMaxOpenConns, 1)
	}
	db, err := storage.OpenDB(ctx, "sqlite", cfg.DSN, opts)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Repository{db: db, table: cfg.Table}, nil
}

func withDefault(o config.Options, key string, v any) config.Options {
	out := make(config.Options, len(o)+1)
	for k, val := range o {
		out[k] = val
	}
	out[key] = v
	return out
}

// CreateTableSQL is the DDL for the report table.
func CreateTableSQL(table string) string {
	return storage.CreateTableSQL(table, "CREATE TABLE IF NOT EXISTS ", ident, sqlType)
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt, storage.TypeBool:
		return "INTEGER"
	case storage.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func ident(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

// EnsureTable creates the report table if missing.
func (r *Repository) EnsureTable(ctx context.Context) error {
	return r.Exec(ctx, CreateTableSQL(r.table))
}

// CopyFrom inserts rows in a single transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ident(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		storage.QuoteQualified(r.table, ident),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec runs a statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// DB exposes the handle for queries over stored reports.
func (r *Repository) DB() *sql.DB { return r.db }

// Close closes the database.
func (r *Repository) Close() { _ = r.db.Close() }
