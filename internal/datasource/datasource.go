// Package datasource defines where raw dataset bytes come from. Concrete
// sources live in subpackages: file for local paths, httpds for HTTP.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of raw bytes. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
