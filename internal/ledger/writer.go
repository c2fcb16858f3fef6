// Package ledger renders extracted expense items as a spreadsheet ledger for
// applicants and caseworkers. CSV and XLSX are supported.
package ledger

import (
	"encoding/csv"
	"io"
	"strconv"

	"reliefdocs/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the ledger header row.
var columns = []string{
	"Date",
	"Vendor",
	"Category",
	"Amount",
	"Confidence",
	"Document Type",
	"Source File",
	"Source Text",
}

// Writer wraps csv.Writer for exporting expense items as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteItems converts expense items to CSV rows and writes them.
func (w *Writer) WriteItems(items []domain.ExpenseItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete ledger: BOM, header and one row per item.
func WriteCSV(out io.Writer, items []domain.ExpenseItem) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteItems(items); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func itemToRow(item *domain.ExpenseItem) []string {
	return []string{
		item.Date,
		item.Vendor,
		string(item.Category),
		formatAmount(item.Amount),
		string(item.Confidence),
		item.DocumentType,
		item.SourceFile,
		item.SourceText,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
