// Package mssql stores report rows in Microsoft SQL Server using the
// go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"dmml/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "mssql"

// Repository is an MSSQL-backed storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository validates the DSN, opens a pool and returns a Close function
// for cleanup.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if err := storage.CheckTable(cfg.Table); err != nil {
		return nil, nil, err
	}
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := storage.OpenDB(ctx, "sqlserver", cfg.DSN, cfg.Options)
	if err != nil {
		return nil, nil, err
	}
	return newWithDB(db, cfg.Table), func() { _ = db.Close() }, nil
}

func newWithDB(db *sql.DB, table string) *Repository {
	return &Repository{db: db, table: table}
}

// CreateTableSQL is the DDL for the report table, guarded by OBJECT_ID.
func CreateTableSQL(table string) string {
	prefix := fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE ", table)
	return storage.CreateTableSQL(table, prefix, msIdent, sqlType)
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeID:
		return "NVARCHAR(64)"
	case storage.TypeName:
		return "NVARCHAR(255)"
	case storage.TypeInt:
		return "INT"
	case storage.TypeBool:
		return "BIT"
	case storage.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// EnsureTable creates the report table if missing.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CreateTableSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// CopyFrom bulk-inserts rows directly into the target table.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msFQN(r.table), mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// msIdent quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.quality_report".
func msFQN(name string) string { return storage.QuoteQualified(name, msIdent) }
