// Package export serializes expenses to the CSV document format shared with
// existing exports. The header and row layout are a boundary contract: do
// not change them without checking downstream consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/outlayhq/outlay/internal/model"
)

// header is the fixed first row of every export.
var header = []string{"Date", "Category", "Amount", "Description"}

const (
	dateLayout          = "Jan 2, 2006"
	fallbackCategory    = "Uncategorized"
	exportedFilePattern = "expenses-*.csv"
)

// Exporter writes expense lists as CSV documents.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter. A nil logger falls back to the default.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Write serializes the expenses to w: one header row, then one row per
// expense with a human-readable date, the category name (or a fallback when
// absent), the amount with exactly two fraction digits, and the note.
func (e *Exporter) Write(expenses []model.Expense, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, exp := range expenses {
		category := exp.CategoryName
		if category == "" {
			category = fallbackCategory
		}

		record := []string{
			exp.Date.Format(dateLayout),
			category,
			exp.Amount.StringFixed(2),
			exp.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	e.logger.Info("exported expenses", "count", len(expenses))
	return nil
}

// WriteTempFile writes the export to a fresh file in the OS temp directory
// and returns its path.
func (e *Exporter) WriteTempFile(expenses []model.Expense) (string, error) {
	file, err := os.CreateTemp("", exportedFilePattern)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := e.Write(expenses, file); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", err
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}

	return file.Name(), nil
}
