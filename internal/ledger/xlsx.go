package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"reliefdocs/internal/domain"
)

const (
	ledgerSheet  = "Ledger"
	summarySheet = "Summary"
)

// CategoryTotal is the summed amount and item count for one category.
type CategoryTotal struct {
	Category domain.ExpenseCategory
	Count    int
	Total    float64
}

// Totals sums items per category in vocabulary order, skipping empty categories.
func Totals(items []domain.ExpenseItem) []CategoryTotal {
	byCat := make(map[domain.ExpenseCategory]*CategoryTotal)
	for _, it := range items {
		cat := domain.ParseExpenseCategory(string(it.Category))
		t, ok := byCat[cat]
		if !ok {
			t = &CategoryTotal{Category: cat}
			byCat[cat] = t
		}
		t.Count++
		t.Total += it.Amount
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, c := range domain.ExpenseCategories {
		if t, ok := byCat[c]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// WriteXLSX writes a workbook with a Ledger sheet of items and a Summary
// sheet of per-category totals.
func WriteXLSX(out io.Writer, items []domain.ExpenseItem) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range items {
		it := &items[i]
		row := []interface{}{
			it.Date,
			it.Vendor,
			string(it.Category),
			it.Amount,
			string(it.Confidence),
			it.DocumentType,
			it.SourceFile,
			it.SourceText,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := styleAmountColumn(f, len(items)); err != nil {
		return err
	}
	if err := writeSummary(f, items); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func styleAmountColumn(f *excelize.File, rows int) error {
	if rows == 0 {
		return nil
	}
	fmtCode := "#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}
	return f.SetCellStyle(ledgerSheet, "D2", fmt.Sprintf("D%d", rows+1), style)
}

func writeSummary(f *excelize.File, items []domain.ExpenseItem) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	header := []interface{}{"Category", "Items", "Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	var grand float64
	totals := Totals(items)
	for i, t := range totals {
		row := []interface{}{string(t.Category), t.Count, t.Total}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
		grand += t.Total
	}

	footer := []interface{}{"Total", len(items), grand}
	return f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", len(totals)+2), &footer)
}
