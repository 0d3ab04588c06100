package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Kaggle downloads datasets with the kaggle CLI:
//
//	kaggle datasets download -d <id> -p <dir> --unzip
//
// The CLI reads its API token from ~/.kaggle/kaggle.json or the
// KAGGLE_USERNAME/KAGGLE_KEY environment variables.
type Kaggle struct {
	// Binary is the CLI executable; empty means "kaggle" from PATH.
	Binary string
	// File is the CSV to pick from the unpacked archive; empty picks the
	// first CSV file.
	File string
	// Timeout bounds the CLI run; zero means no limit beyond ctx.
	Timeout time.Duration
}

func (Kaggle) Name() string { return "kaggle" }

// Args returns the CLI arguments used to download datasetID into dir.
func (Kaggle) Args(datasetID, dir string) []string {
	return []string{"datasets", "download", "-d", datasetID, "-p", dir, "--unzip"}
}

func (k Kaggle) Fetch(ctx context.Context, datasetID, dir string) (string, error) {
	fail := func(op string, err error) error {
		return &IngestionError{Source: k.Name(), Dataset: datasetID, Op: op, Err: err}
	}

	bin := k.Binary
	if bin == "" {
		bin = "kaggle"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fail("lookup", fmt.Errorf("%w: %s (install with `pip install kaggle` and set up an API token): %v", ErrToolNotFound, bin, err))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fail("mkdir", err)
	}

	if k.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.Timeout)
		defer cancel()
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, k.Args(datasetID, dir)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fail("download", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		var ee *exec.ExitError
		if errors.As(err, &ee) && msg != "" {
			return "", fail("download", fmt.Errorf("%w: %s", err, msg))
		}
		return "", fail("download", err)
	}

	csvPath, err := findCSV(dir, k.File)
	if err != nil {
		return "", fail("locate", err)
	}
	return csvPath, nil
}
