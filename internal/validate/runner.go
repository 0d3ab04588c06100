// Package validate runs one validation pass: load the dataset, run the
// quality checks, assemble the report and persist it.
package validate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"dmml/internal/datasource/file"
	"dmml/internal/datasource/httpds"
	"dmml/internal/logging"
	"dmml/internal/metrics"
	pcsv "dmml/internal/parser/csv"
	"dmml/internal/quality"
	"dmml/internal/report"
	"dmml/internal/storage"
	"dmml/internal/table"
)

// Runner holds the collaborators of a validation run. Log and ReportDir are
// required; everything else is optional.
type Runner struct {
	Log *logging.Logger
	Job string

	Parser   pcsv.Options
	Checks   quality.Options
	Parallel bool

	ReportDir string

	// Store receives the report rows after the CSV is written.
	Store           storage.Repository
	StoreBatchSize  int
	AutoCreateTable bool

	// HTTP reads inputs given as http(s) URLs.
	HTTP *httpds.Client

	// Now and RunID are fixed by tests; zero values mean time.Now and a
	// random UUID.
	Now   func() time.Time
	RunID string
}

// Result is what a successful run produced.
type Result struct {
	Table  *table.Table
	Report *report.QualityReport
	Path   string
	Stored int64
}

// Run validates input, a file path or URL. name overrides the dataset name
// derived from input. A load failure aborts the run before any check; check
// failures only degrade the report.
func (r *Runner) Run(ctx context.Context, input, name string) (*Result, error) {
	if r.Log == nil {
		return nil, fmt.Errorf("validate: nil logger")
	}
	if r.ReportDir == "" {
		return nil, fmt.Errorf("validate: empty report dir")
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if name == "" {
		name = pcsv.TableName(input)
	}
	log := r.Log.With(logging.Dataset(name))

	t, err := r.load(ctx, input, name)
	if err != nil {
		log.Error("Failed to load dataset", logging.Op("load"), zap.String("input", input), zap.Error(err))
		return nil, err
	}
	log.Info("Dataset Shape: " + t.Shape())
	log.Info("Columns: " + strings.Join(t.Names(), ", "))
	metrics.RecordRows(r.Job, "loaded", int64(t.Rows()))
	metrics.RecordRows(r.Job, "null_cells", nullCells(t))

	start := time.Now()
	results := quality.RunAll(ctx, quality.Default(r.Checks), t, r.Parallel)
	metrics.RecordStep(r.Job, "checks", ctx.Err(), time.Since(start))
	for _, res := range results {
		if res.Err != nil {
			log.Error("Check failed", logging.Check(res.Kind.Slug()), logging.Op("check"), zap.Error(res.Err))
		}
	}

	rep := report.Assemble(name, now(), r.RunID, quality.Collect(results))
	log = log.With(logging.RunID(rep.RunID))
	logReport(log, r.Job, rep)

	start = time.Now()
	path, err := report.WriteFile(r.ReportDir, rep)
	metrics.RecordStep(r.Job, "report", err, time.Since(start))
	if err != nil {
		log.Error("Failed to write quality report", logging.Op("report"), zap.Error(err))
		return nil, fmt.Errorf("write report: %w", err)
	}
	log.Info("Quality report saved to "+path, zap.Int("rows", len(rep.Rows)))

	out := &Result{Table: t, Report: rep, Path: path}
	if r.Store == nil {
		return out, nil
	}

	start = time.Now()
	out.Stored, err = r.store(ctx, log, rep)
	metrics.RecordStep(r.Job, "store", err, time.Since(start))
	if err != nil {
		log.Error("Failed to store quality report", logging.Op("store"), zap.Error(err))
		return out, fmt.Errorf("store report: %w", err)
	}
	metrics.RecordRows(r.Job, "stored", out.Stored)
	log.Info("Quality report stored", zap.Int64("rows", out.Stored))
	return out, nil
}

func (r *Runner) load(ctx context.Context, input, name string) (*table.Table, error) {
	start := time.Now()
	var (
		t   *table.Table
		err error
	)
	if isURL(input) {
		client := r.HTTP
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		t, err = pcsv.LoadSource(ctx, &httpds.Remote{Client: client, URL: input}, input, name, r.Parser)
	} else {
		t, err = pcsv.LoadSource(ctx, file.NewLocal(input), input, name, r.Parser)
	}
	metrics.RecordStep(r.Job, "load", err, time.Since(start))
	return t, err
}

func (r *Runner) store(ctx context.Context, log *logging.Logger, rep *report.QualityReport) (int64, error) {
	if r.AutoCreateTable {
		if err := r.Store.EnsureTable(ctx); err != nil {
			return 0, err
		}
	}
	return storage.SaveReport(ctx, r.Store, rep, storage.LoadOptions{
		BatchSize: r.StoreBatchSize,
		Log:       log.With(logging.Op("store")),
		Job:       r.Job,
	})
}

// logReport logs the duplicate count and every degraded row, and counts
// report rows per check.
func logReport(log *logging.Logger, job string, rep *report.QualityReport) {
	if row, ok := rep.Find(report.DuplicateRows, report.AllColumns); ok {
		if n, isCount := row.Details.Int(); isCount {
			log.Info(fmt.Sprintf("Duplicate Rows: %d", n))
			metrics.RecordRows(job, "duplicate", n)
		}
	}
	type key struct {
		check    report.CheckKind
		degraded bool
	}
	counts := map[key]int{}
	for _, row := range rep.Rows {
		counts[key{row.Check, row.Degraded}]++
		if row.Degraded {
			log.Warn("Check degraded",
				logging.Check(row.Check.Slug()),
				logging.Column(row.Column),
				logging.Op("check"),
				zap.String("details", row.Details.String()),
			)
		}
	}
	for k, n := range counts {
		metrics.RecordReportRows(job, k.check.Slug(), k.degraded, n)
	}
}

func nullCells(t *table.Table) int64 {
	var n int64
	for _, c := range t.Columns {
		n += c.NullCount()
	}
	return n
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
