package quality

import (
	"context"
	"errors"

	"dmml/internal/report"
	"dmml/internal/table"
)

// NegativeValuesMessage is the Details text of a Range Issue row.
const NegativeValuesMessage = "Contains negative values"

// MissingValues counts null cells per column. It emits one row for every
// column, including columns with no nulls.
type MissingValues struct{}

func (MissingValues) Kind() report.CheckKind { return report.MissingValues }

func (MissingValues) Run(ctx context.Context, t *table.Table) ([]report.Row, error) {
	rows := make([]report.Row, 0, t.Width())
	for _, c := range t.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, report.Row{
			Check:   report.MissingValues,
			Column:  c.Name,
			Details: report.Count(c.NullCount()),
		})
	}
	return rows, nil
}

// DataType reports the inferred kind of every column.
type DataType struct{}

func (DataType) Kind() report.CheckKind { return report.DataType }

func (DataType) Run(ctx context.Context, t *table.Table) ([]report.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]report.Row, 0, t.Width())
	for _, c := range t.Columns {
		rows = append(rows, report.Row{
			Check:   report.DataType,
			Column:  c.Name,
			Details: report.Text(c.Kind.String()),
		})
	}
	return rows, nil
}

// RangeIssues flags numeric columns holding a strictly negative value.
// Columns without negative values produce no row.
type RangeIssues struct{}

func (RangeIssues) Kind() report.CheckKind { return report.RangeIssue }

func (RangeIssues) Run(ctx context.Context, t *table.Table) ([]report.Row, error) {
	var rows []report.Row
	for _, c := range numericColumns(t) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, err := floats(report.RangeIssue, c)
		if err != nil {
			rows = append(rows, degraded(report.RangeIssue, c, err))
			continue
		}
		for _, v := range vals {
			if v < 0 {
				rows = append(rows, report.Row{
					Check:   report.RangeIssue,
					Column:  c.Name,
					Details: report.Text(NegativeValuesMessage),
				})
				break
			}
		}
	}
	return rows, nil
}

// Anomalies counts values whose absolute standard score exceeds Threshold.
// Columns with a zero sample standard deviation produce no row; every other
// numeric column produces one, even with a zero count. A column with a single
// non-null value has no sample standard deviation and is skipped too, where a
// dataframe would report NaN scores and a zero count.
type Anomalies struct {
	Threshold float64
}

func (Anomalies) Kind() report.CheckKind { return report.Anomalies }

func (a Anomalies) Run(ctx context.Context, t *table.Table) ([]report.Row, error) {
	threshold := a.Threshold
	if threshold <= 0 {
		threshold = DefaultZThreshold
	}
	var rows []report.Row
	for _, c := range numericColumns(t) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, err := floats(report.Anomalies, c)
		if err != nil {
			rows = append(rows, degraded(report.Anomalies, c, err))
			continue
		}
		n, ok := countOutliers(vals, threshold)
		if !ok {
			continue
		}
		rows = append(rows, report.Row{
			Check:   report.Anomalies,
			Column:  c.Name,
			Details: report.Count(n),
		})
	}
	return rows, nil
}

// degraded turns a per-column error into its report row.
func degraded(kind report.CheckKind, c *table.Column, err error) report.Row {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Row()
	}
	return report.Degrade(kind, c.Name, err)
}
