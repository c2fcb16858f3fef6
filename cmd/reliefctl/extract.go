package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"reliefdocs/internal/app"
	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
)

var (
	extractContext      string
	extractLedgerPath   string
	extractLedgerFormat string
)

// newPipeline is swapped out in tests.
var newPipeline = app.NewPipeline

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract expenses, damage claims and missing evidence from files",
	Long: `Extract runs the full evidence pipeline on local files.

Receipts, invoices and bills (images or PDFs) become expense items; photos
become damage claims. The result also carries a rename map and the list of
catalog documents none of the files satisfied.

Examples:
  reliefctl extract receipt.jpg roof.jpg
  reliefctl extract -o json --context '{"state":"FL","county":"Lee"}' *.pdf
  reliefctl extract --ledger expenses.xlsx receipts/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ectx, err := parseEvidenceContext(extractContext)
		if err != nil {
			return err
		}
		files, err := readEvidenceFiles(args, cfg.Evidence)
		if err != nil {
			return err
		}

		pipeline, err := newPipeline(cfg, nil)
		if err != nil {
			return err
		}
		result, err := pipeline.Service.Extract(cmd.Context(), files, ectx)
		if err != nil {
			return err
		}

		if extractLedgerPath != "" {
			format := ledgerFormatFor(extractLedgerPath, extractLedgerFormat)
			if err := writeLedgerFile(extractLedgerPath, format, result.ExpenseItems); err != nil {
				return err
			}
			log.Printf("wrote %d expense(s) to %s", len(result.ExpenseItems), extractLedgerPath)
		}

		return writeOutput(cmd.OutOrStdout(), globalOutputFormat, result)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractContext, "context", "", "applicant context as a JSON object")
	extractCmd.Flags().StringVar(&extractLedgerPath, "ledger", "", "also write the expense ledger to this path")
	extractCmd.Flags().StringVar(&extractLedgerFormat, "ledger-format", "", "ledger format: csv or xlsx (default: from --ledger extension)")
}

func parseEvidenceContext(raw string) (domain.EvidenceContext, error) {
	var ectx domain.EvidenceContext
	if strings.TrimSpace(raw) == "" {
		return ectx, nil
	}
	if err := json.Unmarshal([]byte(raw), &ectx); err != nil {
		return ectx, fmt.Errorf("%w: %v", domain.ErrInvalidContext, err)
	}
	return ectx, nil
}
