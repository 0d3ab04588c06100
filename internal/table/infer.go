package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred value kind of a column.
type Kind int

const (
	KindText     Kind = iota // anything else, and all-null columns
	KindNumeric              // integers and decimals
	KindBoolean              // true/false, yes/no and similar words
	KindDatetime             // dates and timestamps
)

// String returns the name reported by the Data Type check.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	default:
		return "text"
	}
}

// IsNumeric reports whether numeric checks apply to the kind.
func (k Kind) IsNumeric() bool { return k == KindNumeric }

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, nil
	case "numeric":
		return KindNumeric, nil
	case "boolean":
		return KindBoolean, nil
	case "datetime":
		return KindDatetime, nil
	}
	return KindText, fmt.Errorf("table: unknown kind %q", s)
}

// ErrNotNumber is returned by ParseNumber for text that is not a finite number.
var ErrNotNumber = errors.New("not a finite number")

// ParseNumber parses s as a finite decimal or scientific-notation number.
// Surrounding spaces are ignored; NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	st := strings.TrimSpace(s)
	if st == "" {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	f, err := strconv.ParseFloat(st, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	return f, nil
}

// InferKinds sets Kind on every column of t from its values.
func InferKinds(t *Table) {
	for _, c := range t.Columns {
		c.Kind = InferKind(c.Values)
	}
}

// InferKind guesses a column kind. Every non-null, non-blank value must
// satisfy the narrower kind: numeric, then boolean, then datetime, falling
// back to text. A column with no such values is text.
//
// Numbers are tried before booleans, so a 0/1 column is numeric. Blank
// values are ignored here; the numeric checks later report them as errors.
func InferKind(values []Value) Kind {
	sample := nonBlank(values)
	if len(sample) == 0 {
		return KindText
	}
	if allMatch(sample, isNumber) {
		return KindNumeric
	}
	if allMatch(sample, isBool) {
		return KindBoolean
	}
	if allMatch(sample, isDatetime) {
		return KindDatetime
	}
	return KindText
}

func nonBlank(values []Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Null {
			continue
		}
		if s := strings.TrimSpace(v.Raw); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	_, err := ParseNumber(s)
	return err == nil
}

// isBool accepts common textual booleans. 1/0 never reach here as they are
// numbers.
func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n":
		return true
	default:
		return false
	}
}

func isDatetime(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// dateLayouts are common date formats (no time component).
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01.02.2006",
	"02/01/2006",
	"01/02/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
}

// timestampLayouts are common timestamp formats (with time component).
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}
