package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reliefdocs/internal/domain"
)

var (
	ledgerOut    string
	ledgerFormat string
)

// ledgerInput accepts both a bare ledger request and a saved extraction result.
type ledgerInput struct {
	ExpenseItems []domain.ExpenseItem `json:"expense_items" yaml:"expense_items"`
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger INPUT",
	Short: "Render expense items as a CSV or XLSX ledger",
	Long: `Ledger reads expense items from a JSON or YAML file (for example the saved
output of "reliefctl extract") and writes a spreadsheet ledger.
Use "-" to read JSON from stdin.

Examples:
  reliefctl extract -o yaml *.jpg > result.yaml
  reliefctl ledger result.yaml --out expenses.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := readLedgerInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		format := ledgerFormatFor(ledgerOut, ledgerFormat)
		if err := writeLedgerFile(ledgerOut, format, items); err != nil {
			return err
		}
		log.Printf("wrote %d expense(s) to %s", len(items), ledgerOut)
		return nil
	},
}

func init() {
	ledgerCmd.Flags().StringVar(&ledgerOut, "out", "", "output path (required)")
	ledgerCmd.Flags().StringVar(&ledgerFormat, "format", "", "csv or xlsx (default: from --out extension)")
	_ = ledgerCmd.MarkFlagRequired("out")
}

func readLedgerInput(stdin io.Reader, path string) ([]domain.ExpenseItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var in ledgerInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return in.ExpenseItems, nil
}
