package quality

import (
	"context"
	"encoding/binary"

	"github.com/zeebo/xxh3"

	"dmml/internal/report"
	"dmml/internal/table"
)

// DuplicateRows counts rows equal, across all columns, to an earlier row.
// It always emits exactly one row for report.AllColumns.
//
// Rows are bucketed by an xxh3 hash of their cells; rows sharing a bucket
// are compared cell by cell, so hash collisions never inflate the count.
type DuplicateRows struct {
	// NullEqualsNull makes null cells compare equal. When false, a row
	// holding any null is never counted as a duplicate.
	NullEqualsNull bool
}

func (DuplicateRows) Kind() report.CheckKind { return report.DuplicateRows }

func (d DuplicateRows) Run(ctx context.Context, t *table.Table) ([]report.Row, error) {
	n, err := d.count(ctx, t)
	if err != nil {
		return nil, err
	}
	return []report.Row{{
		Check:   report.DuplicateRows,
		Column:  report.AllColumns,
		Details: report.Count(n),
	}}, nil
}

func (d DuplicateRows) count(ctx context.Context, t *table.Table) (int64, error) {
	var (
		dups    int64
		buckets = make(map[uint64][]int, t.Rows())
		h       = xxh3.New()
		lenBuf  [binary.MaxVarintLen64]byte
	)
rows:
	for i := 0; i < t.Rows(); i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if !d.NullEqualsNull && hasNull(t, i) {
			continue
		}

		h.Reset()
		for _, c := range t.Columns {
			v := c.Values[i]
			if v.Null {
				_, _ = h.Write([]byte{0})
				continue
			}
			// Tag and length prefix keep ("ab","c") distinct from ("a","bc").
			_, _ = h.Write([]byte{1})
			k := binary.PutUvarint(lenBuf[:], uint64(len(v.Raw)))
			_, _ = h.Write(lenBuf[:k])
			_, _ = h.WriteString(v.Raw)
		}
		sum := h.Sum64()

		for _, j := range buckets[sum] {
			if rowsEqual(t, i, j) {
				dups++
				continue rows
			}
		}
		buckets[sum] = append(buckets[sum], i)
	}
	return dups, nil
}

// checkEvery is how many rows are hashed between context checks.
const checkEvery = 4096

func hasNull(t *table.Table, i int) bool {
	for _, c := range t.Columns {
		if c.Values[i].Null {
			return true
		}
	}
	return false
}

func rowsEqual(t *table.Table, i, j int) bool {
	for _, c := range t.Columns {
		if !c.Values[i].Equal(c.Values[j]) {
			return false
		}
	}
	return true
}
