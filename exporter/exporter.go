// Package exporter serializes collected records to CSV and JSON files.
package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-book-parser/models"
)

// ErrNoRecords is returned instead of writing an empty export.
var ErrNoRecords = errors.New("no records to export")

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatDual Format = "dual"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatDual:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: want csv, json, or dual", s)
	}
}

// ExportError wraps any serialization or I/O failure of an export.
type ExportError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("export %s to %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ToCSV renders a header row followed by one row per record.
func ToCSV(records []models.BookRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(models.RecordHeader); err != nil {
		return nil, &ExportError{Format: FormatCSV, Err: fmt.Errorf("write csv header: %w", err)}
	}
	for _, record := range records {
		if err := writer.Write(record.Fields()); err != nil {
			return nil, &ExportError{Format: FormatCSV, Err: fmt.Errorf("write csv record: %w", err)}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, &ExportError{Format: FormatCSV, Err: fmt.Errorf("flush csv records: %w", err)}
	}
	return buf.Bytes(), nil
}

// ToJSON renders an indented array of objects. Non-ASCII text and HTML
// characters are kept as-is.
func ToJSON(records []models.BookRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return nil, &ExportError{Format: FormatJSON, Err: fmt.Errorf("encode json records: %w", err)}
	}
	return buf.Bytes(), nil
}

// Encode dispatches to ToCSV or ToJSON.
func Encode(format Format, records []models.BookRecord) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ToCSV(records)
	case FormatJSON:
		return ToJSON(records)
	default:
		return nil, &ExportError{Format: format, Err: fmt.Errorf("cannot encode format %q to a single file", format)}
	}
}

// WriteFile serializes records and writes them to path, creating parent
// directories. Nothing is written when records is empty or encoding fails.
func WriteFile(path string, format Format, records []models.BookRecord) error {
	data, err := Encode(format, records)
	if err != nil {
		var exportErr *ExportError
		if errors.As(err, &exportErr) {
			exportErr.Path = path
		}
		return err
	}

	if err := ensureDir(path); err != nil {
		return &ExportError{Path: path, Format: format, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ExportError{Path: path, Format: format, Err: fmt.Errorf("write file: %w", err)}
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
