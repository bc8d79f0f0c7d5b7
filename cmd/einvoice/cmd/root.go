package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/config"
	"github.com/rezonia/einvoice/internal/logger"
	"github.com/rezonia/einvoice/internal/pdf"
	"github.com/rezonia/einvoice/internal/processor"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configPath   string
	logLevel     string
	timeout      time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Convert EN 16931 e-invoices between UBL and CII",
	Long: `einvoice reads and writes EN 16931 electronic invoices.

Supports:
  - UBL 2.1 Invoice and CreditNote
  - UN/CEFACT Cross Industry Invoice (CII D16B), as used by ZUGFeRD, Factur-X and XRechnung
  - PDF files with an embedded invoice XML

Examples:
  # Convert a UBL invoice to CII
  einvoice convert invoice.xml --to cii -o invoice-cii.xml

  # Convert a directory of invoices
  einvoice convert invoices/ --to ubl -o out/

  # Check that a document survives a round trip
  einvoice check invoice.xml

  # Attach CII XML to a PDF
  einvoice embed invoice.pdf factur-x.xml -o invoice-facturx.pdf`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: EINVOICE_LOG_LEVEL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout per operation")
}

func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags win over file and environment
	switch {
	case logLevel != "":
		cfg.Log.Level = logLevel
	case verbose:
		cfg.Log.Level = "debug"
	}

	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	log.Debug().Str("config", configPath).Str("level", cfg.Log.Level).Msg("configuration loaded")

	return nil
}

func newPipeline() *processor.Pipeline {
	registry := codec.NewRegistryWithOptions(codec.Options{
		AmountPrecision: cfg.Writer.AmountPrecision,
		Indent:          cfg.Writer.Indent,
	})
	return processor.NewPipeline(
		processor.WithRegistry(registry),
		processor.WithEmbedder(pdf.NewEmbedder(pdf.WithAttachmentName(cfg.PDF.AttachmentName))),
		processor.WithConcurrency(cfg.Batch.Concurrency),
		processor.WithLogger(logger.WithComponent("pipeline")),
	)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		// Check if it's a glob pattern
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("file not found: %s", arg)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				files = append(files, match)
				continue
			}

			// Walk directory
			err = filepath.Walk(match, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isSupportedFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".pdf":
		return true
	default:
		return false
	}
}
