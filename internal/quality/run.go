package quality

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dmml/internal/report"
	"dmml/internal/table"
)

// Result is the outcome of one check.
type Result struct {
	Kind report.CheckKind
	Rows []report.Row
	// Err is set when the whole check failed; Rows then holds a single
	// degraded row for report.AllColumns.
	Err error
}

// Safe runs c and never fails: an error or panic inside the check becomes a
// degraded report.AllColumns row.
func Safe(ctx context.Context, c Check, t *table.Table) (res Result) {
	res.Kind = c.Kind()
	defer func() {
		if p := recover(); p != nil {
			res.Err = &CheckError{Check: res.Kind, Column: report.AllColumns, Err: fmt.Errorf("panic: %v", p)}
			res.Rows = []report.Row{report.Degrade(res.Kind, report.AllColumns, res.Err)}
		}
	}()

	rows, err := c.Run(ctx, t)
	if err != nil {
		res.Err = &CheckError{Check: res.Kind, Column: report.AllColumns, Err: err}
		res.Rows = []report.Row{report.Degrade(res.Kind, report.AllColumns, err)}
		return res
	}
	res.Rows = rows
	return res
}

// RunAll runs checks over t and returns one Result per check, in the order
// of checks. With parallel set, checks run concurrently; the table is only
// read, so no locking is needed.
func RunAll(ctx context.Context, checks []Check, t *table.Table, parallel bool) []Result {
	out := make([]Result, len(checks))
	if !parallel {
		for i, c := range checks {
			out[i] = Safe(ctx, c, t)
		}
		return out
	}

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			out[i] = Safe(ctx, c, t)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Collect groups results by kind for report.Assemble.
func Collect(results []Result) map[report.CheckKind][]report.Row {
	m := make(map[report.CheckKind][]report.Row, len(results))
	for _, r := range results {
		m[r.Kind] = append(m[r.Kind], r.Rows...)
	}
	return m
}
