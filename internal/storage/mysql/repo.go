// Package mysql stores report rows in MySQL using go-sql-driver/mysql and
// multi-row INSERT statements.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"dmml/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "mysql"

// maxPlaceholders is the server's limit on bind parameters per statement.
const maxPlaceholders = 65535

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository parses cfg.DSN, opens a pool and returns a Close function for
// cleanup. parseTime is always enabled so DATETIME columns scan into
// time.Time.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if err := storage.CheckTable(cfg.Table); err != nil {
		return nil, nil, err
	}
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.OpenDB(ctx, "mysql", dsn, cfg.Options)
	if err != nil {
		return nil, nil, err
	}
	return newWithDB(db, cfg.Table), func() { _ = db.Close() }, nil
}

func newWithDB(db *sql.DB, table string) *Repository {
	return &Repository{db: db, table: table}
}

func normalizeDSN(dsn string) (string, error) {
	mc, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

// CreateTableSQL is the DDL for the report table.
func CreateTableSQL(table string) string {
	return storage.CreateTableSQL(table, "CREATE TABLE IF NOT EXISTS ", myIdent, sqlType)
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeID:
		return "VARCHAR(64)"
	case storage.TypeName:
		return "VARCHAR(255)"
	case storage.TypeInt:
		return "INT"
	case storage.TypeBool:
		return "BOOLEAN"
	case storage.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// EnsureTable creates the report table if missing.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CreateTableSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// CopyFrom inserts rows with multi-row INSERTs in one transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	chunk := maxPlaceholders / len(columns)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	var inserted int64
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		query, args, err := insertSQL(r.table, columns, rows[start:end])
		if err != nil {
			rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", myFQN(table), strings.Join(mapIdent(columns), ", "))

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
		args = append(args, row...)
	}
	return b.String(), args, nil
}

func myIdent(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" }

func myFQN(s string) string { return storage.QuoteQualified(s, myIdent) }

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = myIdent(c)
	}
	return out
}
