package mysql

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
	assert.Equal(t, "`a`", myIdent("a"))
	assert.Equal(t, "`we``ird`", myIdent("we`ird"))
	assert.Equal(t, "`dq`.`quality_report`", myFQN("dq.quality_report"))
	assert.Equal(t, []string{"`x`", "`y`"}, mapIdent([]string{"x", "y"}))
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("user:pw@tcp(localhost:3306)/dq")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = normalizeDSN("not a dsn")
	assert.ErrorContains(t, err, "mysql dsn")
}

func TestCopyFrom_MultiRowInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `quality_report` (`run_id`, `position`) VALUES (?, ?), (?, ?)")).
		WithArgs("r1", 1, "r1", 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	r := newWithDB(db, "quality_report")
	n, err := r.CopyFrom(context.Background(), []string{"run_id", "position"}, [][]any{{"r1", 1}, {"r1", 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	r := newWithDB(db, "quality_report")
	_, err = r.CopyFrom(context.Background(), []string{"a"}, [][]any{{1}})
	assert.ErrorContains(t, err, "duplicate entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_RowWidthMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	r := newWithDB(db, "t")
	_, err = r.CopyFrom(context.Background(), []string{"a", "b"}, [][]any{{1}})
	assert.ErrorContains(t, err, "row length 1 != columns length 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `quality_report` (")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, newWithDB(db, "quality_report").EnsureTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())

	ddl := CreateTableSQL("quality_report")
	assert.Contains(t, ddl, "`run_id` VARCHAR(64) NOT NULL,")
	assert.Contains(t, ddl, "`generated_at` DATETIME(6) NOT NULL,")
	assert.Contains(t, ddl, "PRIMARY KEY (`run_id`, `position`)")
}

func TestSaveReportThroughFactory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	old := newRepository
	t.Cleanup(func() { newRepository = old })
	newRepository = func(_ context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newWithDB(db, cfg.Table), func() { _ = db.Close() }, nil
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `dq`.`report`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectClose()

	repo, err := storage.New(context.Background(), storage.Config{Kind: Kind, DSN: "u@/dq", Table: "dq.report"})
	require.NoError(t, err)
	_, err = repo.CopyFrom(context.Background(), storage.ReportColumns(), [][]any{make([]any, len(storage.ReportColumns()))})
	require.NoError(t, err)
	repo.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}
