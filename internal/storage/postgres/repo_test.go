package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmml/internal/storage"
)

type fakeConn struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
	execs   []string
	err     error
}

func (f *fakeConn) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.table, f.columns = table, columns
	var n int64
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return n, err
		}
		f.rows = append(f.rows, vals)
		n++
	}
	return n, src.Err()
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.err
}

func TestCopyFrom(t *testing.T) {
	fc := &fakeConn{}
	r := &Repository{conn: fc, table: "dq.quality_report"}

	n, err := r.CopyFrom(context.Background(), []string{"a", "b"}, [][]any{{1, "x"}, {2, "y"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, pgx.Identifier{"dq", "quality_report"}, fc.table)
	assert.Equal(t, []string{"a", "b"}, fc.columns)
	assert.Equal(t, [][]any{{1, "x"}, {2, "y"}}, fc.rows)

	n, err = r.CopyFrom(context.Background(), []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopyFrom_Error(t *testing.T) {
	r := &Repository{conn: &fakeConn{err: errors.New("conn reset")}, table: "t"}
	_, err := r.CopyFrom(context.Background(), []string{"a"}, [][]any{{1}})
	assert.EqualError(t, err, "copy into t: conn reset")
}

func TestEnsureTable(t *testing.T) {
	fc := &fakeConn{}
	r := &Repository{conn: fc, table: "public.quality_report"}
	require.NoError(t, r.EnsureTable(context.Background()))
	require.Len(t, fc.execs, 1)
	assert.Contains(t, fc.execs[0], `CREATE TABLE IF NOT EXISTS "public"."quality_report" (`)
	assert.Contains(t, fc.execs[0], `"generated_at" TIMESTAMPTZ NOT NULL,`)
	assert.Contains(t, fc.execs[0], `"degraded" BOOLEAN NOT NULL,`)
}

func TestFactory_UsesHook(t *testing.T) {
	old := newRepository
	t.Cleanup(func() { newRepository = old })

	var closed bool
	fc := &fakeConn{}
	newRepository = func(_ context.Context, cfg storage.Config) (*Repository, func(), error) {
		return &Repository{conn: fc, table: cfg.Table}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: Kind, DSN: "postgres://x", Table: "quality_report"})
	require.NoError(t, err)
	n, err := repo.CopyFrom(context.Background(), []string{"a"}, [][]any{{1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	repo.Close()
	assert.True(t, closed)
}

func TestNewRepository_BadConfig(t *testing.T) {
	_, _, err := NewRepository(context.Background(), storage.Config{DSN: "postgres://x", Table: "a b"})
	assert.ErrorContains(t, err, "invalid table name")

	_, _, err = NewRepository(context.Background(), storage.Config{DSN: "postgres://u@localhost:notaport/db", Table: "t"})
	assert.ErrorContains(t, err, "pgxpool")
}
