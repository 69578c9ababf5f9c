package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awooooool/tlsrpt-extractor/internal/config"
	"github.com/awooooool/tlsrpt-extractor/internal/ingest"
	"github.com/awooooool/tlsrpt-extractor/internal/mailbox"
	"github.com/awooooool/tlsrpt-extractor/internal/writer"
)

var (
	configFile  string
	outputDir   string
	jsonSummary bool
	verbose     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch TLS-RPT reports from an IMAP mailbox and flatten them",
	Long: `Connect to the configured IMAP mailbox, locate report attachments in
each candidate message, decode them, and write one JSON record file per
(policy, failure-detail) pair.

A failed attachment or record never aborts the rest of the run; failures
are listed in the summary.

Examples:
  tlsrpt-extractor fetch --config extractor.yaml
  tlsrpt-extractor fetch --output /var/log/tlsrpt --json
  TLSRPT_IMAP_SERVER=imap.example.com:993 tlsrpt-extractor fetch`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for record files")
	fetchCmd.Flags().BoolVar(&jsonSummary, "json", false, "Print the run summary as JSON")
	fetchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func runFetch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	sess, err := mailbox.Dial(mailbox.Config{
		Server:             cfg.IMAP.Server,
		Username:           cfg.IMAP.Username,
		Password:           cfg.IMAP.Password,
		InsecureSkipVerify: cfg.IMAP.InsecureSkipVerify,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("closing mailbox session", zap.Error(cerr))
		}
	}()

	if _, err := sess.Select(cfg.IMAP.Mailbox, cfg.IMAP.ReadOnly); err != nil {
		return err
	}

	w := writer.New(cfg.Output.Dir, cfg.Output.OwnerUID, cfg.Output.OwnerGID, log)
	pipeline := ingest.New(w, log)

	summary, err := pipeline.Run(sess, ingest.Options{
		Mailbox:    cfg.IMAP.Mailbox,
		UnseenOnly: cfg.IMAP.UnseenOnly,
	})
	if err != nil {
		return err
	}

	return printSummary(summary)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// Flags override both the file and the environment.
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
