// Package report defines the quality report produced by a validation run and
// its on-disk CSV form.
//
// A QualityReport is assembled once from the rows emitted by the quality
// checks, written to durable storage, and never modified afterwards. Rows
// appear in a fixed check order (see Order) so that reports from different
// runs can be diffed line by line.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AllColumns is the column reference used by table-wide findings.
const AllColumns = "all_columns"

// ErrorPrefix starts the Details text of a degraded row.
const ErrorPrefix = "error: "

// CheckKind identifies the check that produced a row.
type CheckKind int

const (
	MissingValues CheckKind = iota // null cells per column
	DuplicateRows                  // rows repeating an earlier row
	DataType                       // inferred kind per column
	RangeIssue                     // negative values in numeric columns
	Anomalies                      // values beyond the z-score threshold
)

// Order is the fixed order of checks in an assembled report.
var Order = []CheckKind{MissingValues, DuplicateRows, DataType, RangeIssue, Anomalies}

var checkNames = map[CheckKind]string{
	MissingValues: "Missing Values",
	DuplicateRows: "Duplicate Rows",
	DataType:      "Data Type",
	RangeIssue:    "Range Issue",
	Anomalies:     "Anomalies",
}

// String returns the name written to the Check column.
func (k CheckKind) String() string {
	if s, ok := checkNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CheckKind(%d)", int(k))
}

// Slug returns a lowercase identifier for metrics labels and log fields.
func (k CheckKind) Slug() string {
	return strings.ReplaceAll(strings.ToLower(k.String()), " ", "_")
}

// ParseCheckKind is the inverse of CheckKind.String.
func ParseCheckKind(s string) (CheckKind, error) {
	for k, name := range checkNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("report: unknown check %q", s)
}

// Details is the kind-specific payload of a row: either a count or a text.
type Details struct {
	n       int64
	text    string
	isCount bool
}

// Count returns count details.
func Count(n int64) Details { return Details{n: n, isCount: true} }

// Text returns text details.
func Text(s string) Details { return Details{text: s} }

// Int returns the count and true for count details.
func (d Details) Int() (int64, bool) { return d.n, d.isCount }

// String renders the details as written to the report file.
func (d Details) String() string {
	if d.isCount {
		return strconv.FormatInt(d.n, 10)
	}
	return d.text
}

// ParseDetails reads a serialized Details value. Plain base-10 integers are
// counts; everything else is text.
func ParseDetails(s string) Details {
	if s != "" && strings.TrimLeft(s, "0123456789") == "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Count(n)
		}
	}
	return Text(s)
}

// Row is one finding about a column or the whole table.
type Row struct {
	Check   CheckKind
	Column  string
	Details Details

	// Degraded marks rows recording a check failure instead of a finding.
	Degraded bool
}

// Degrade returns the row recording that check failed on column.
func Degrade(check CheckKind, column string, err error) Row {
	return Row{Check: check, Column: column, Details: Text(ErrorPrefix + err.Error()), Degraded: true}
}

// QualityReport is the immutable result of one validation run.
type QualityReport struct {
	Dataset     string
	GeneratedAt time.Time
	RunID       string
	Rows        []Row
}

// Assemble concatenates per-check rows in Order. Rows of a check keep the
// order the check produced them in; kinds missing from results contribute no
// rows. An empty runID is replaced by a random UUID.
func Assemble(dataset string, generatedAt time.Time, runID string, results map[CheckKind][]Row) *QualityReport {
	if runID == "" {
		runID = uuid.NewString()
	}
	n := 0
	for _, rows := range results {
		n += len(rows)
	}
	rep := &QualityReport{
		Dataset:     dataset,
		GeneratedAt: generatedAt,
		RunID:       runID,
		Rows:        make([]Row, 0, n),
	}
	for _, k := range Order {
		rep.Rows = append(rep.Rows, results[k]...)
	}
	return rep
}

// RowsFor returns the rows produced by check k.
func (r *QualityReport) RowsFor(k CheckKind) []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Check == k {
			out = append(out, row)
		}
	}
	return out
}

// Find returns the first row for check k and column.
func (r *QualityReport) Find(k CheckKind, column string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Check == k && row.Column == column {
			return row, true
		}
	}
	return Row{}, false
}

// DegradedCount returns the number of degraded rows.
func (r *QualityReport) DegradedCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.Degraded {
			n++
		}
	}
	return n
}
