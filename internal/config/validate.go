package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"dmml/internal/logging"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "ingest.sources[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c; callers
// decide whether warnings are fatal.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be pushed without a job label",
		})
	}
	issues = append(issues, validatePaths(c.Paths)...)
	issues = append(issues, validateDataset(c.Dataset)...)
	issues = append(issues, validateIngest(c.Ingest)...)
	issues = append(issues, validateChecks(c.Checks)...)
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "logging.level",
			Message:  fmt.Sprintf("unknown log level %q", c.Logging.Level),
		})
	}
	return issues
}

func validatePaths(p Paths) []Issue {
	var issues []Issue
	for _, f := range []struct{ path, val string }{
		{"paths.log_dir", p.LogDir},
		{"paths.raw_dir", p.RawDir},
		{"paths.report_dir", p.ReportDir},
	} {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  f.path + " must not be empty",
			})
		}
	}
	return issues
}

func validateDataset(d Dataset) []Issue {
	var issues []Issue
	if strings.TrimSpace(d.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.path",
			Message:  "dataset.path must not be empty",
		})
	}
	if r := []rune(d.Parser.Comma); len(r) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.parser.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", d.Parser.Comma),
		})
	} else if len(r) == 1 && (r[0] == '"' || r[0] == '\r' || r[0] == '\n') {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset.parser.comma",
			Message:  fmt.Sprintf("%q cannot be used as a delimiter", d.Parser.Comma),
		})
	}
	if d.Parser.NullValues != nil && len(d.Parser.NullValues) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "dataset.parser.null_values",
			Message:  "null_values is empty; no cell will be read as missing",
		})
	}
	return issues
}

func validateIngest(in Ingest) []Issue {
	var issues []Issue
	if len(in.Sources) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "ingest.sources",
			Message:  "no ingestion sources configured; ingest will do nothing",
		})
	}
	seen := map[string]bool{}
	for i, s := range in.Sources {
		path := fmt.Sprintf("ingest.sources[%d]", i)
		switch s {
		case SourceKaggle, SourceHuggingFace:
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("unknown source %q; expected %q or %q", s, SourceKaggle, SourceHuggingFace),
			})
			continue
		}
		if seen[s] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("source %q listed more than once", s),
			})
		}
		seen[s] = true
	}

	if seen[SourceKaggle] && strings.TrimSpace(in.Kaggle.Dataset) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ingest.kaggle.dataset",
			Message:  "kaggle source requires a dataset id (owner/name)",
		})
	}
	if seen[SourceHuggingFace] {
		hf := in.HuggingFace
		if strings.TrimSpace(hf.Dataset) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "ingest.huggingface.dataset",
				Message:  "huggingface source requires a dataset id (owner/name)",
			})
		}
		if u, err := url.Parse(hf.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "ingest.huggingface.base_url",
				Message:  fmt.Sprintf("base_url %q is not an absolute URL", hf.BaseURL),
			})
		}
		if hf.MaxRetries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "ingest.huggingface.max_retries",
				Message:  "max_retries must not be negative",
			})
		}
	}
	return issues
}

func validateChecks(c Checks) []Issue {
	var issues []Issue
	switch {
	case c.ZThreshold < 0:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "checks.z_threshold",
			Message:  "z_threshold must not be negative",
		})
	case c.ZThreshold > 0 && c.ZThreshold < 1:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "checks.z_threshold",
			Message:  fmt.Sprintf("z_threshold=%g flags most values as anomalies", c.ZThreshold),
		})
	}
	return issues
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// StorageKinds lists the storage kinds with a built-in backend.
var StorageKinds = []string{"sqlite", "postgres", "mysql", "mssql"}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if !s.Enabled() {
		return nil
	}

	known := false
	for _, k := range StorageKinds {
		if s.Kind == k {
			known = true
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; expected one of %s", s.Kind, strings.Join(StorageKinds, ", ")),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	if !tableNameRe.MatchString(s.Table) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  fmt.Sprintf("storage.table %q must be an identifier, optionally schema-qualified", s.Table),
		})
	}
	if s.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the default will be used", s.BatchSize),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "prometheus", "prom", "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires pushgateway_url",
			})
		}
	case "datadog", "dogstatsd":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog_addr is empty; the client default will be used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
