package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dmml/internal/report"
)

// ColumnType is the logical type of a report table column. Backends map it
// to their SQL types.
type ColumnType int

const (
	TypeID        ColumnType = iota // run id (uuid text)
	TypeName                        // short text: dataset, check, column
	TypeText                        // unbounded text
	TypeTimestamp                   // generation time
	TypeInt                         // row position
	TypeBool                        // degraded flag
)

// ColumnDef is one column of the report table.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// ReportTable is the layout of the report table; (run_id, position) is the
// primary key.
var ReportTable = []ColumnDef{
	{"run_id", TypeID},
	{"dataset", TypeName},
	{"generated_at", TypeTimestamp},
	{"position", TypeInt},
	{"check_kind", TypeName},
	{"column_name", TypeName},
	{"details", TypeText},
	{"degraded", TypeBool},
}

// PrimaryKey of the report table.
var PrimaryKey = []string{"run_id", "position"}

// ReportColumns returns the column names of ReportTable in order.
func ReportColumns() []string {
	out := make([]string, len(ReportTable))
	for i, c := range ReportTable {
		out[i] = c.Name
	}
	return out
}

// CreateTableSQL renders a CREATE TABLE statement for ReportTable. quote
// quotes one identifier, typeOf maps logical types, and prefix/suffix wrap
// the statement (e.g. "CREATE TABLE IF NOT EXISTS ").
func CreateTableSQL(table, prefix string, quote func(string) string, typeOf func(ColumnType) string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(QuoteQualified(table, quote))
	b.WriteString(" (\n")
	for _, c := range ReportTable {
		fmt.Fprintf(&b, "  %s %s NOT NULL,\n", quote(c.Name), typeOf(c.Type))
	}
	keys := make([]string, len(PrimaryKey))
	for i, k := range PrimaryKey {
		keys[i] = quote(k)
	}
	fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n)", strings.Join(keys, ", "))
	return b.String()
}

// QuoteQualified quotes each dot-separated part of a possibly
// schema-qualified name.
func QuoteQualified(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CheckTable rejects table names that are not plain identifiers.
func CheckTable(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// ReportRows flattens rep into rows aligned to ReportColumns. Positions
// start at 1.
func ReportRows(rep *report.QualityReport) [][]any {
	out := make([][]any, len(rep.Rows))
	for i, r := range rep.Rows {
		out[i] = []any{
			rep.RunID,
			rep.Dataset,
			rep.GeneratedAt.UTC(),
			i + 1,
			r.Check.String(),
			r.Column,
			r.Details.String(),
			r.Degraded,
		}
	}
	return out
}

// SaveReport streams the rows of rep through LoadBatches into repo.
func SaveReport(ctx context.Context, repo Repository, rep *report.QualityReport, opt LoadOptions) (int64, error) {
	rows := ReportRows(rep)
	in := make(chan []any, min(len(rows), 64))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return LoadBatches(ctx, ReportColumns(), in, opt, repo.CopyFrom)
}
