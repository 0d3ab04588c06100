// Package quality implements the data-quality checks run over a table.
//
// Every check is a pure function of a read-only table.Table: checks share no
// mutable state, so they may run in any order or concurrently. Each check
// returns its report rows; failures confined to one column are reported as
// degraded rows for that column instead of aborting the check.
package quality

import (
	"context"
	"errors"
	"fmt"

	"dmml/internal/report"
	"dmml/internal/table"
)

// ErrCheck marks errors raised while a check inspects the data.
var ErrCheck = errors.New("check failed")

// CheckError records a check failure for one column (or report.AllColumns).
type CheckError struct {
	Check  report.CheckKind
	Column string
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: column %s: %v", e.Check, e.Column, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCheck) match any *CheckError.
func (e *CheckError) Is(target error) bool { return target == ErrCheck }

// Row converts the error into a degraded report row.
func (e *CheckError) Row() report.Row {
	return report.Degrade(e.Check, e.Column, e.Err)
}

// Check is a single quality check.
type Check interface {
	// Kind identifies the check in the report.
	Kind() report.CheckKind
	// Run inspects t and returns the rows to report. A returned error means
	// the whole check failed; per-column problems are returned as degraded
	// rows instead.
	Run(ctx context.Context, t *table.Table) ([]report.Row, error)
}

// Options tunes the default checks.
type Options struct {
	// ZThreshold is the absolute standard score above which a value counts
	// as an anomaly. Zero selects DefaultZThreshold.
	ZThreshold float64

	// NullEqualsNull makes two null cells compare equal when detecting
	// duplicate rows. When false, a row holding any null never duplicates.
	NullEqualsNull bool
}

// DefaultZThreshold is the default anomaly cut-off.
const DefaultZThreshold = 3.0

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{ZThreshold: DefaultZThreshold, NullEqualsNull: true}
}

// Default returns the five checks in report order.
func Default(opt Options) []Check {
	if opt.ZThreshold <= 0 {
		opt.ZThreshold = DefaultZThreshold
	}
	return []Check{
		MissingValues{},
		DuplicateRows{NullEqualsNull: opt.NullEqualsNull},
		DataType{},
		RangeIssues{},
		Anomalies{Threshold: opt.ZThreshold},
	}
}

// numericColumns yields the columns numeric checks apply to.
func numericColumns(t *table.Table) []*table.Column {
	var out []*table.Column
	for _, c := range t.Columns {
		if c.Kind.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// floats returns the non-null values of c as numbers. A value that does not
// parse yields a *CheckError for kind.
func floats(kind report.CheckKind, c *table.Column) ([]float64, error) {
	out := make([]float64, 0, c.Len())
	for i := range c.Values {
		f, ok, err := c.Float(i)
		if err != nil {
			return nil, &CheckError{Check: kind, Column: c.Name, Err: err}
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}
