package csv

import (
	"errors"
	"fmt"
)

// ErrLoad marks every failure to turn a source into a table. A load error is
// fatal to a validation run: no report is produced without a table.
var ErrLoad = errors.New("load failed")

// LoadError describes why a source could not be loaded.
type LoadError struct {
	Path string // file path or dataset name
	Line int    // 1-based source line, 0 when unknown
	Err  error
}

func newLoadError(path string, line int, err error) *LoadError {
	return &LoadError{Path: path, Line: line, Err: err}
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLoad) match any *LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
