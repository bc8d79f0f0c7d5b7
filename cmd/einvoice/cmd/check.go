package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check that invoices survive a round trip",
	Long: `Read each invoice, write it in its own syntax, read it back and
write it again. The file passes when both writes are byte identical.

The report also shows whether a detour through the other syntax gives
the same bytes. Card network ids have no CII field, so UBL documents
with a card network id are expected to differ there.

Exits with an error when any file is unstable or unreadable.

Examples:
  einvoice check invoice.xml
  einvoice check invoices/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to check")
	}

	pipeline := newPipeline()
	results := make([]CheckResult, 0, len(files))
	failed := 0

	for _, file := range files {
		printVerbose("Checking: %s\n", file)
		result := CheckResult{File: file}

		data, err := os.ReadFile(file)
		if err != nil {
			result.Error = fmt.Sprintf("failed to read file: %v", err)
			failed++
			results = append(results, result)
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		report, err := pipeline.Check(ctx, data)
		cancel()
		if err != nil {
			result.Error = err.Error()
			failed++
			results = append(results, result)
			continue
		}

		result.Syntax = string(report.Syntax)
		result.Stable = report.Stable
		result.CrossStable = report.CrossStable
		result.Warnings = report.Warnings
		if !report.Stable {
			failed++
		}
		results = append(results, result)
	}

	if err := outputCheckResults(os.Stdout, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed the round trip check", failed, len(results))
	}
	return nil
}

func outputCheckResults(w io.Writer, results []CheckResult) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tSYNTAX\tSTABLE\tCROSS-STABLE")
		fmt.Fprintln(tw, "----\t------\t------\t------------")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\t\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.File, r.Syntax, yesNo(r.Stable), yesNo(r.CrossStable))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// CheckResult holds the round trip result of a single file
type CheckResult struct {
	File        string   `json:"file"`
	Syntax      string   `json:"syntax,omitempty"`
	Stable      bool     `json:"stable"`
	CrossStable bool     `json:"cross_stable"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}
