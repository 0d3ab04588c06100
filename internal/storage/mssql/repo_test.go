package mssql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmml/internal/storage"
)

func TestHelpers_Quoting(t *testing.T) {
	assert.Equal(t, "[a]", msIdent("a"))
	assert.Equal(t, "[we]]ird]", msIdent("we]ird"))
	assert.Equal(t, "[dbo].[quality_report]", msFQN("dbo.quality_report"))
}

func TestCreateTableSQL(t *testing.T) {
	ddl := CreateTableSQL("dbo.quality_report")
	assert.True(t, regexp.MustCompile(`^IF OBJECT_ID\(N'dbo\.quality_report', N'U'\) IS NULL\nCREATE TABLE \[dbo\]\.\[quality_report\] \(`).MatchString(ddl))
	assert.Contains(t, ddl, "[degraded] BIT NOT NULL,")
	assert.Contains(t, ddl, "[details] NVARCHAR(MAX) NOT NULL,")
	assert.Contains(t, ddl, "PRIMARY KEY ([run_id], [position])")
}

func TestNewRepository_BadConfig(t *testing.T) {
	_, _, err := NewRepository(context.Background(), storage.Config{DSN: "sqlserver://sa@localhost?database=dq", Table: "x;y"})
	assert.ErrorContains(t, err, "invalid table name")

	_, _, err = NewRepository(context.Background(), storage.Config{DSN: "sqlserver://sa@localhost:notaport", Table: "t"})
	assert.ErrorContains(t, err, "mssql dsn")
}

func TestCopyFrom_BulkCopy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERTBULK")
	prep.ExpectExec().WithArgs("r", 1).WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs("r", 2).WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	r := newWithDB(db, "dbo.quality_report")
	n, err := r.CopyFrom(context.Background(), []string{"run_id", "position"}, [][]any{{"r", 1}, {"r", 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERTBULK").ExpectExec().WillReturnError(errors.New("type mismatch"))
	mock.ExpectRollback()

	r := newWithDB(db, "t")
	_, err = r.CopyFrom(context.Background(), []string{"a"}, [][]any{{"x"}})
	assert.ErrorContains(t, err, "bulk row 0: type mismatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_UsesHook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	old := newRepository
	t.Cleanup(func() { newRepository = old })
	newRepository = func(_ context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newWithDB(db, cfg.Table), func() { _ = db.Close() }, nil
	}

	mock.ExpectExec("IF OBJECT_ID").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	repo, err := storage.New(context.Background(), storage.Config{Kind: Kind, Table: "quality_report"})
	require.NoError(t, err)
	require.NoError(t, repo.EnsureTable(context.Background()))
	repo.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}
