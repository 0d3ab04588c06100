// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A validation run is a short-lived batch job, so metrics are pushed to a
// Pushgateway on Flush instead of being exposed on a scrape endpoint. The job
// label becomes the Pushgateway grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"dmml/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // dmml_step_total
	stepDuration *prometheus.SummaryVec // dmml_step_duration_seconds

	recordCounter    *prometheus.CounterVec // dmml_records_total
	reportRowCounter *prometheus.CounterVec // dmml_report_rows_total
	batchCounter     prometheus.Counter     // dmml_batches_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway "job" name; gatewayURL the Pushgateway base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dmml"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.StepTotal,
				Help: "Total number of stage steps, partitioned by step and status.",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.StepDuration,
				Help:       "Duration of stage steps in seconds, partitioned by step and status.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"step", "status"},
		),
		recordCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RecordsTotal,
				Help: "Record-level counts per kind (loaded, duplicate, null_cells, stored).",
			},
			[]string{"kind"},
		),
		reportRowCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.ReportRowsTotal,
				Help: "Quality report rows per check, split by degraded status.",
			},
			[]string{"check", "degraded"},
		),
		batchCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metrics.BatchesTotal,
				Help: "Total number of report batches written to a store.",
			},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":       b.stepCounter,
		"step summary":       b.stepDuration,
		"record counter":     b.recordCounter,
		"report row counter": b.reportRowCounter,
		"batch counter":      b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.ReportRowsTotal:
		if b.reportRowCounter == nil {
			return
		}
		b.reportRowCounter.WithLabelValues(labels["check"], labels["degraded"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway, replacing the
// metrics of the previous run of the same job.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
