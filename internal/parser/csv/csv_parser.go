// Package csv loads a delimited text file with a header row into a
// table.Table. Unlike a lenient streaming reader it is strict: a single
// malformed row (bad quoting, wrong field count) fails the whole load, since
// quality figures computed over a partially read table would be misleading.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"dmml/internal/datasource"
	"dmml/internal/datasource/file"
	"dmml/internal/table"
)

// DefaultNullValues are the cell texts read as null when Options.NullValues
// is nil. They follow the defaults of common dataframe libraries.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// Options configures the loader. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each value before the
	// null check.
	TrimSpace bool

	// NullValues lists cell texts treated as null. nil selects
	// DefaultNullValues; an empty non-nil slice disables null detection.
	NullValues []string

	// HeaderMap renames source headers (exact match, after BOM removal).
	HeaderMap map[string]string

	// NormalizeHeaders folds header names to lowercase ASCII identifiers
	// (accents stripped, separators collapsed to "_"). Applied after
	// HeaderMap lookup misses.
	NormalizeHeaders bool
}

// checkEvery is how many rows are read between context checks.
const checkEvery = 4096

// Load reads all of r and builds a table named name with inferred column
// kinds. Any read or parse failure is returned as a *LoadError.
func Load(ctx context.Context, r io.Reader, name string, opt Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Zero enforces that every record has the header's width.
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, newLoadError(name, 1, errors.New("no header row"))
	}
	if err != nil {
		return nil, newLoadError(name, lineOf(err, 1), fmt.Errorf("read csv header: %w", err))
	}
	headers := normalizeHeaders(h, opt)

	cols := make([]*table.Column, len(headers))
	for i, hname := range headers {
		cols[i] = &table.Column{Name: hname}
	}

	nulls := nullSet(opt.NullValues)
	for line := 2; ; line++ {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, newLoadError(name, line, err)
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newLoadError(name, lineOf(err, line), err)
		}
		for i, val := range row {
			if opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if _, isNull := nulls[val]; isNull {
				cols[i].Values = append(cols[i].Values, table.Null())
				continue
			}
			cols[i].Values = append(cols[i].Values, table.Text(strings.Clone(val)))
		}
	}

	t, err := table.New(name, cols)
	if err != nil {
		return nil, newLoadError(name, 1, err)
	}
	table.InferKinds(t)
	return t, nil
}

// LoadFile opens path and loads it. The table is named after the file's base
// name without extension.
func LoadFile(ctx context.Context, path string, opt Options) (*table.Table, error) {
	return LoadSource(ctx, file.NewLocal(path), path, TableName(path), opt)
}

// LoadSource loads the table named name from src. path identifies the source
// in errors.
func LoadSource(ctx context.Context, src datasource.Source, path, name string, opt Options) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer rc.Close()

	t, err := Load(ctx, rc, name, opt)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return t, nil
}

// TableName derives a dataset name from a file path.
func TableName(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// lineOf extracts the source line from a *csv.ParseError when available.
func lineOf(err error, def int) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		return pe.Line
	}
	return def
}

func nullSet(vals []string) map[string]struct{} {
	if vals == nil {
		vals = DefaultNullValues
	}
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

// normalizeHeaders applies BOM removal, HeaderMap and optional ASCII folding.
// Empty names become "col_<i>".
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(append([]string(nil), h...))
	res := make([]string, len(h))
	for i, c := range h {
		c = strings.TrimSpace(c)
		if m, ok := opt.HeaderMap[c]; ok {
			res[i] = m
			continue
		}
		switch {
		case c == "":
			c = fmt.Sprintf("col_%d", i)
		case opt.NormalizeHeaders:
			c = NormalizeFieldName(c)
		}
		res[i] = c
	}
	return res
}
