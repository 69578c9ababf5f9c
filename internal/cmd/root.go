package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tlsrpt-extractor",
	Short: "Extract SMTP TLS reports from a mailbox into flat JSON records",
	Long: `tlsrpt-extractor ingests SMTP TLS Reporting (TLS-RPT) aggregate reports
delivered as email attachments and flattens each one into self-contained
JSON record files suitable for log ingestion.

Example:
  tlsrpt-extractor fetch --config extractor.yaml
  tlsrpt-extractor extract ./reports --output ./records`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
