package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout formats the timestamp part of report and log file names.
const TimestampLayout = "20060102_150405"

// Header is the first line of a report file.
var Header = []string{"Check", "Column", "Details"}

// FileName returns "<dataset>_quality_report_<YYYYMMDD_HHMMSS>.csv". Path
// separators in the dataset name are replaced so the result is a single path
// element.
func FileName(dataset string, at time.Time) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(dataset)
	return fmt.Sprintf("%s_quality_report_%s.csv", safe, at.Format(TimestampLayout))
}

// WriteCSV writes rep as a header line followed by one line per row.
func WriteCSV(w io.Writer, rep *QualityReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rep.Rows {
		if err := cw.Write([]string{row.Check.String(), row.Column, row.Details.String()}); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rep into dir under FileName and returns the final path.
// The file appears atomically: it is written to a temporary file in dir and
// renamed into place.
func WriteFile(dir string, rep *QualityReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	final := filepath.Join(dir, FileName(rep.Dataset, rep.GeneratedAt))

	tmp, err := os.CreateTemp(dir, ".report-*.csv.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := WriteCSV(tmp, rep); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		cleanup()
		return "", fmt.Errorf("rename report: %w", err)
	}
	return final, nil
}

// ReadCSV parses a report file back into rows. Degraded rows are recognised
// by their ErrorPrefix.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("report: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("report: read header: %w", err)
	}
	for i := range Header {
		if h[i] != Header[i] {
			return nil, fmt.Errorf("report: unexpected header %q", strings.Join(h, ","))
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		kind, err := ParseCheckKind(rec[0])
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Check:    kind,
			Column:   rec[1],
			Details:  ParseDetails(rec[2]),
			Degraded: strings.HasPrefix(rec[2], ErrorPrefix),
		})
	}
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
