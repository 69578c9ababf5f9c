package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/awooooool/tlsrpt-extractor/internal/ingest"
	"github.com/awooooool/tlsrpt-extractor/internal/output"
	"github.com/awooooool/tlsrpt-extractor/internal/parser"
	"github.com/awooooool/tlsrpt-extractor/internal/writer"
	"github.com/awooooool/tlsrpt-extractor/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files or directories...]",
	Short: "Flatten local TLS-RPT report files into JSON records",
	Long: `Run the decode-and-flatten pipeline over reports already on disk.

Supported file types:
  .json             plain aggregate report
  .json.gz, .gz     gzip-compressed aggregate report
  .eml              raw email message carrying report attachments

Examples:
  tlsrpt-extractor extract report.json.gz
  tlsrpt-extractor extract ./reports/ --output ./records
  tlsrpt-extractor extract message.eml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for record files")
	extractCmd.Flags().BoolVar(&jsonSummary, "json", false, "Print the run summary as JSON")
	extractCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func runExtract(_ *cobra.Command, args []string) error {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("accessing %s: %w", arg, err)
		}

		if info.IsDir() {
			dirFiles, err := parser.WalkDirectory(arg)
			if err != nil {
				return fmt.Errorf("walking directory %s: %w", arg, err)
			}
			files = append(files, dirFiles...)
		} else {
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no report files found")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	w := writer.New(cfg.Output.Dir, cfg.Output.OwnerUID, cfg.Output.OwnerGID, log)
	pipeline := ingest.New(w, log)

	return printSummary(pipeline.ExtractFiles(files))
}

func printSummary(summary *types.RunSummary) error {
	if jsonSummary {
		jsonStr, err := output.ToJSON(summary)
		if err != nil {
			return fmt.Errorf("generating JSON: %w", err)
		}
		fmt.Println(jsonStr)
		return nil
	}
	fmt.Print(output.SummaryOutput(summary))
	return nil
}
