package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dmml/internal/logging"
	"dmml/internal/metrics"
	pcsv "dmml/internal/parser/csv"
)

// Target is one configured download.
type Target struct {
	Source  Source
	Dataset string
	Dir     string
}

// Result is the outcome of one Target.
type Result struct {
	Source  string
	Dataset string
	Path    string
	Rows    int
	Err     error
}

// Stage runs the configured downloads one after another. A failing target
// is logged and recorded; the remaining targets still run.
type Stage struct {
	Log    *logging.Logger
	Job    string
	Parser pcsv.Options
}

// Run downloads every target and returns one Result per target plus the
// joined errors of the failed ones.
func (s *Stage) Run(ctx context.Context, targets []Target) ([]Result, error) {
	log := s.Log
	if log == nil {
		log = logging.Nop()
	}

	results := make([]Result, 0, len(targets))
	var errs []error
	for _, tg := range targets {
		name := tg.Source.Name()
		l := log.With(logging.Source(name), logging.Dataset(tg.Dataset), logging.Op("ingest"))
		l.Info("Starting " + name + " ingestion for " + tg.Dataset)

		start := time.Now()
		t, path, err := LoadTable(ctx, tg.Source, tg.Dataset, tg.Dir, s.Parser)
		metrics.RecordStep(s.Job, "ingest_"+name, err, time.Since(start))

		res := Result{Source: name, Dataset: tg.Dataset, Path: path, Err: err}
		if err != nil {
			l.Error(name+" ingestion failed", zap.Error(err))
			errs = append(errs, err)
			results = append(results, res)
			continue
		}
		res.Rows = t.Rows()
		metrics.RecordRows(s.Job, "ingested", int64(res.Rows))
		l.Info(name+" dataset saved to "+path,
			zap.Int("rows", res.Rows),
			zap.Int("columns", t.Width()),
			zap.String("at", time.Now().Format(logging.FileTimeLayout)),
		)
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
