package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmml/internal/config"
	"dmml/internal/report"
	"dmml/internal/storage"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), storage.Config{
		Kind:  Kind,
		DSN:   filepath.Join(t.TempDir(), "quality.db"),
		Table: "quality_report",
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.EnsureTable(context.Background()))
	return repo
}

func TestSaveReport_RoundTrip(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()

	rep := report.Assemble("telco", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "run-42", map[report.CheckKind][]report.Row{
		report.MissingValues: {
			{Check: report.MissingValues, Column: "tenure", Details: report.Count(0)},
			{Check: report.MissingValues, Column: "TotalCharges", Details: report.Count(11)},
		},
		report.DuplicateRows: {{Check: report.DuplicateRows, Column: report.AllColumns, Details: report.Count(0)}},
		report.DataType:      {{Check: report.DataType, Column: "tenure", Details: report.Text("numeric")}},
	})

	n, err := storage.SaveReport(ctx, repo, rep, storage.LoadOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	rows, err := repo.DB().QueryContext(ctx,
		`SELECT "position", "check_kind", "column_name", "details", "degraded" FROM "quality_report" WHERE "run_id" = ? ORDER BY "position"`, "run-42")
	require.NoError(t, err)
	defer rows.Close()

	type stored struct {
		pos      int
		check    string
		column   string
		details  string
		degraded bool
	}
	var got []stored
	for rows.Next() {
		var s stored
		require.NoError(t, rows.Scan(&s.pos, &s.check, &s.column, &s.details, &s.degraded))
		got = append(got, s)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []stored{
		{1, "Missing Values", "tenure", "0", false},
		{2, "Missing Values", "TotalCharges", "11", false},
		{3, "Duplicate Rows", "all_columns", "0", false},
		{4, "Data Type", "tenure", "numeric", false},
	}, got)
}

func TestCopyFrom_DuplicateKeyRollsBack(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()
	cols := storage.ReportColumns()
	row := func(pos int) []any {
		return []any{"r", "d", time.Now().UTC(), pos, "Anomalies", "x", "0", false}
	}

	_, err := repo.CopyFrom(ctx, cols, [][]any{row(1), row(1)})
	require.Error(t, err)

	var n int
	require.NoError(t, repo.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM "quality_report"`).Scan(&n))
	assert.Zero(t, n)

	_, err = repo.CopyFrom(ctx, cols, [][]any{{"short"}})
	assert.ErrorContains(t, err, "row length 1 != columns length 8")

	n64, err := repo.CopyFrom(ctx, cols, nil)
	require.NoError(t, err)
	assert.Zero(t, n64)
}

func TestRegisteredFactory(t *testing.T) {
	repo, err := storage.New(context.Background(), storage.Config{
		Kind:    Kind,
		DSN:     filepath.Join(t.TempDir(), "q.db"),
		Table:   "dq_report",
		Options: config.Options{storage.OptMaxOpenConns: 2},
	})
	require.NoError(t, err)
	defer repo.Close()
	assert.NoError(t, repo.EnsureTable(context.Background()))
	assert.NoError(t, repo.EnsureTable(context.Background()), "idempotent")
}

func TestNewRepository_Errors(t *testing.T) {
	_, err := NewRepository(context.Background(), storage.Config{Table: "t"})
	assert.ErrorContains(t, err, "DSN must not be empty")

	_, err = NewRepository(context.Background(), storage.Config{DSN: "x.db", Table: "bad name"})
	assert.ErrorContains(t, err, "invalid table name")
}

func TestCreateTableSQL(t *testing.T) {
	want := `CREATE TABLE IF NOT EXISTS "quality_report" (
  "run_id" TEXT NOT NULL,
  "dataset" TEXT NOT NULL,
  "generated_at" TIMESTAMP NOT NULL,
  "position" INTEGER NOT NULL,
  "check_kind" TEXT NOT NULL,
  "column_name" TEXT NOT NULL,
  "details" TEXT NOT NULL,
  "degraded" INTEGER NOT NULL,
  PRIMARY KEY ("run_id", "position")
)`
	assert.Equal(t, want, CreateTableSQL("quality_report"))
}
