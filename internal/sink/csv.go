package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"waybackseller/internal/cdx"
	"waybackseller/internal/models"
)

// CSVSink appends one single-column row per record to a per-day file.
// The file is opened in append mode for every record and no header is written.
type CSVSink struct {
	path string
}

// CSVPath returns <dir>/<domain>-<YYYY-MM-DD>.csv.
func CSVPath(dir, domain string, day time.Time) string {
	name := fmt.Sprintf("%s-%s.csv", cdx.DomainName(domain), day.Format("2006-01-02"))
	return filepath.Join(dir, name)
}

// NewCSVSink creates a sink writing to CSVPath(dir, domain, day).
func NewCSVSink(dir, domain string, day time.Time) *CSVSink {
	return &CSVSink{path: CSVPath(dir, domain, day)}
}

// Path returns the output file.
func (s *CSVSink) Path() string {
	return s.path
}

// Prepare creates the output directory.
func (s *CSVSink) Prepare(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return nil
}

// Record appends the record's url as one row.
func (s *CSVSink) Record(_ context.Context, rec models.CaptureRecord) (err error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", s.path, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.URL}); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}

	return nil
}
