package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reliefdocs/internal/config"
	"reliefdocs/internal/ocr"
)

type toolsReport struct {
	Status string         `json:"status" yaml:"status"`
	OCR    ocr.ToolStatus `json:"ocr" yaml:"ocr"`
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Report which OCR tools are installed",
	Long: `Tools checks for tesseract and the PDF rasterizer at the configured paths.
Without tesseract, image OCR is skipped and expenses read from image
receipts cannot be anchored, so they come back as needs_review.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		tools := ocr.NewExtractor(cfg.OCR).Available()
		return writeOutput(cmd.OutOrStdout(), globalOutputFormat, toolsReport{Status: tools.Status(), OCR: tools})
	},
}
