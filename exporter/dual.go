package exporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-book-parser/models"
)

// DualPaths derives the CSV and JSON destinations from one output path,
// e.g. out/books.csv gives out/books.csv and out/books.json.
func DualPaths(output string) (csvPath, jsonPath string) {
	stem := strings.TrimSuffix(output, filepath.Ext(output))
	return stem + ".csv", stem + ".json"
}

// WriteDual writes the same records as CSV and JSON. Both files are attempted
// even if the first one fails.
func WriteDual(csvPath, jsonPath string, records []models.BookRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	var errs []error
	if err := WriteFile(csvPath, FormatCSV, records); err != nil {
		errs = append(errs, fmt.Errorf("csv: %w", err))
	}
	if err := WriteFile(jsonPath, FormatJSON, records); err != nil {
		errs = append(errs, fmt.Errorf("json: %w", err))
	}
	return errors.Join(errs...)
}

// Export writes records to output in the given format and returns the paths
// it wrote.
func Export(output string, format Format, records []models.BookRecord) ([]string, error) {
	if format == FormatDual {
		csvPath, jsonPath := DualPaths(output)
		if err := WriteDual(csvPath, jsonPath, records); err != nil {
			return nil, err
		}
		return []string{csvPath, jsonPath}, nil
	}

	if err := WriteFile(output, format, records); err != nil {
		return nil, err
	}
	return []string{output}, nil
}
