package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrIngestion marks every download failure. Ingestion errors are
	// reported and never abort validation of an already available table.
	ErrIngestion = errors.New("ingestion failed")

	// ErrToolNotFound is wrapped when an external downloader binary is not
	// installed.
	ErrToolNotFound = errors.New("downloader tool not found")

	// ErrNoCSV is wrapped when a download produced no CSV file.
	ErrNoCSV = errors.New("no csv file found")
)

// IngestionError describes a failed download step.
type IngestionError struct {
	Source  string // "kaggle", "huggingface"
	Dataset string // owner/name
	Op      string // lookup, download, list, locate
	Err     error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s %s: %s: %v", e.Source, e.Dataset, e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrIngestion) match any *IngestionError.
func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }
