package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes rep as a human-readable table, e.g. for a terminal summary.
func Render(w io.Writer, rep *QualityReport) error {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s  %s", rep.Dataset, rep.GeneratedAt.Format("2006-01-02 15:04:05")))
	t.AppendHeader(table.Row{Header[0], Header[1], Header[2]})
	prev := CheckKind(-1)
	for _, row := range rep.Rows {
		if row.Check != prev && prev != -1 {
			t.AppendSeparator()
		}
		prev = row.Check
		t.AppendRow(table.Row{row.Check.String(), row.Column, row.Details.String()})
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})

	if _, err := io.WriteString(w, t.Render()+"\n"); err != nil {
		return err
	}
	return nil
}
