package ledger

import (
	"fmt"
	"io"

	"reliefdocs/internal/domain"
)

// Write renders items to out in the given format.
func Write(out io.Writer, format domain.LedgerFormat, items []domain.ExpenseItem) error {
	switch format {
	case domain.LedgerFormatCSV:
		if err := WriteCSV(out, items); err != nil {
			return fmt.Errorf("writing csv ledger: %w", err)
		}
	case domain.LedgerFormatXLSX:
		if err := WriteXLSX(out, items); err != nil {
			return fmt.Errorf("writing xlsx ledger: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", format, domain.ErrUnsupportedLedgerFormat)
	}
	return nil
}
