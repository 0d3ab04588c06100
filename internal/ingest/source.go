// Package ingest downloads the raw dataset from external sources: the Kaggle
// CLI and the Hugging Face Hub. Each source writes a CSV file under its own
// raw-data directory; failures are *IngestionError values that callers log
// without aborting validation.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pcsv "dmml/internal/parser/csv"
	"dmml/internal/table"
)

// Source downloads a dataset into a local directory.
type Source interface {
	// Name identifies the source in logs, errors and metrics.
	Name() string
	// Fetch downloads datasetID into dir and returns the path of the CSV
	// file to load.
	Fetch(ctx context.Context, datasetID, dir string) (string, error)
}

// LoadTable fetches datasetID with src and loads the resulting CSV. Fetch
// failures are *IngestionError; load failures are *csv.LoadError.
func LoadTable(ctx context.Context, src Source, datasetID, dir string, opt pcsv.Options) (*table.Table, string, error) {
	path, err := src.Fetch(ctx, datasetID, dir)
	if err != nil {
		return nil, "", err
	}
	t, err := pcsv.LoadFile(ctx, path, opt)
	if err != nil {
		return nil, path, err
	}
	return t, path, nil
}

// findCSV returns dir/name when name is set and exists, otherwise the first
// *.csv file below dir in lexical order.
func findCSV(dir, name string) (string, error) {
	if name != "" {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			return "", err
		}
		return p, nil
	}

	var found []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", ErrNoCSV
	}
	sort.Strings(found)
	return found[0], nil
}
