// Package metrics provides a small, backend-agnostic abstraction for recording
// run metrics of the ingestion and validation stages.
//
// The package exposes a narrow interface (Backend) focused on counters and
// timing data, and a global, pluggable backend that defaults to a no-op
// implementation, so metrics are always safe to call even when no real
// backend is configured. Concrete systems (Prometheus Pushgateway, DogStatsD)
// live in subpackages.
package metrics

import (
	"io"
	"strconv"
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal       = "dmml_step_total"
	StepDuration    = "dmml_step_duration_seconds"
	RecordsTotal    = "dmml_records_total"
	ReportRowsTotal = "dmml_report_rows_total"
	BatchesTotal    = "dmml_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil restores the no-op
// backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// Close flushes the current backend and closes it when it holds resources
// (e.g. a statsd client), then restores the no-op backend.
func Close() error {
	b := current()
	err := b.Flush()
	if c, ok := b.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	SetBackend(nil)
	return err
}

// RecordStep measures latency and success/failure of one stage step
// (e.g. "ingest_kaggle", "load", "checks", "report", "store").
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given job and kind.
//
// Typical kinds:
//   - "loaded"     rows read into the table
//   - "duplicate"  rows equal to an earlier row
//   - "null_cells" null cells across all columns
//   - "stored"     report rows written to a store
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordReportRows counts report rows produced by check.
func RecordReportRows(job, check string, degraded bool, delta int) {
	if delta <= 0 {
		return
	}
	current().IncCounter(ReportRowsTotal, float64(delta), Labels{
		"job":      job,
		"check":    check,
		"degraded": strconv.FormatBool(degraded),
	})
}

// RecordBatches increments a batch-level counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
