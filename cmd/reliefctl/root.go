package main

import (
	"github.com/spf13/cobra"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "reliefctl",
	Short: "Organize disaster-relief evidence from the command line",
	Long: `reliefctl runs the evidence pipeline locally against files on disk.

It reads the same RELIEF_* environment (and .env file) as the server:
  - extract: OCR, classify and extract expenses and damage claims
  - ledger:  render expense items as a CSV or XLSX ledger
  - tools:   report which OCR tools are installed`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setOutputFormat(outputFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(toolsCmd)
}
