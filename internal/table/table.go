// Package table holds the in-memory tabular dataset inspected by the quality
// checks. A Table is built once per run (by the CSV loader or the ingestion
// collaborator) and is read-only afterwards, so any number of goroutines may
// read it without locking.
package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRaggedColumns is returned when columns do not share the same length.
	ErrRaggedColumns = errors.New("table: columns have different lengths")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("table: duplicate column name")
)

// Value is a single nullable cell. Raw keeps the source text verbatim so
// equality checks compare exactly what was read.
type Value struct {
	Raw  string
	Null bool
}

// Null returns the null cell.
func Null() Value { return Value{Null: true} }

// Text returns a non-null cell holding s.
func Text(s string) Value { return Value{Raw: s} }

// Equal reports whether two cells hold the same value. Two nulls are equal.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	return v.Raw == o.Raw
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.Values) }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int64 {
	var n int64
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Float parses the i-th cell as a number. ok is false for null cells; err is
// non-nil when a non-null cell does not hold a finite number.
func (c *Column) Float(i int) (f float64, ok bool, err error) {
	v := c.Values[i]
	if v.Null {
		return 0, false, nil
	}
	f, err = ParseNumber(v.Raw)
	if err != nil {
		return 0, false, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
	}
	return f, true, nil
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	Name    string
	Columns []*Column

	rows  int
	index map[string]int
}

// New validates cols and returns a Table. All columns must have the same
// length and distinct names.
func New(name string, cols []*Column) (*Table, error) {
	t := &Table{
		Name:    name,
		Columns: cols,
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("table: column %d is nil", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		t.index[c.Name] = i
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.Columns) }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Row returns a copy of the i-th row across all columns.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Values[i]
	}
	return out
}

// Shape formats the table dimensions as "(rows, cols)".
func (t *Table) Shape() string {
	return fmt.Sprintf("(%d, %d)", t.rows, len(t.Columns))
}

// String is a short description used in logs.
func (t *Table) String() string {
	return fmt.Sprintf("%s%s [%s]", t.Name, t.Shape(), strings.Join(t.Names(), ", "))
}
