package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/processor"
)

var (
	targetSyntax    string
	outputPath      string
	amountPrecision int
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert invoices between UBL and CII",
	Long: `Convert one or more invoices to the target syntax.

Input may be UBL or CII XML, or a PDF with an embedded invoice XML.
The source syntax is detected from the root element.

With a single input the result is written to --output, or stdout when
--output is empty. With several inputs --output must name a directory;
each result is named after its input with the target syntax appended,
e.g. invoice.xml becomes invoice-cii.xml.

Examples:
  einvoice convert invoice.xml --to cii
  einvoice convert invoice.pdf --to ubl -o invoice-ubl.xml
  einvoice convert invoices/*.xml --to cii -o out/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&targetSyntax, "to", "t", "", "Target syntax (ubl, cii)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory (default: stdout)")
	convertCmd.Flags().IntVar(&amountPrecision, "amount-precision", -1, "Minimum fractional digits for amounts (default from config)")
	_ = convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	target := model.ParseSyntax(targetSyntax)
	if target == model.SyntaxUnknown {
		return fmt.Errorf("unsupported target syntax: %s", targetSyntax)
	}
	if amountPrecision >= 0 {
		cfg.Writer.AmountPrecision = amountPrecision
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to convert")
	}

	printVerbose("Found %d files to convert\n", len(files))

	inputs := make([]processor.Input, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs = append(inputs, processor.Input{Name: file, Data: data})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pipeline := newPipeline()

	if len(inputs) == 1 && !isDir(outputPath) {
		conv, err := pipeline.Convert(ctx, inputs[0].Data, target)
		if err != nil {
			return fmt.Errorf("%s: %w", inputs[0].Name, err)
		}
		printWarnings(inputs[0].Name, conv.Warnings)
		if outputPath == "" {
			_, err = os.Stdout.Write(conv.Output)
			return err
		}
		return os.WriteFile(outputPath, conv.Output, 0o644)
	}

	if outputPath == "" {
		return fmt.Errorf("--output directory is required when converting several files")
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	results, err := pipeline.ConvertBatch(ctx, inputs, target)
	if err != nil {
		return err
	}

	summary := make([]ConvertResult, 0, len(results))
	failed := 0
	for _, r := range results {
		entry := ConvertResult{File: r.Name}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			failed++
		} else {
			entry.Output = filepath.Join(outputPath, outputName(r.Name, target))
			entry.Source = string(r.Conversion.Source)
			entry.Number = r.Conversion.Document.Number
			entry.Warnings = r.Conversion.Warnings
			if err := os.WriteFile(entry.Output, r.Conversion.Output, 0o644); err != nil {
				entry.Error = err.Error()
				failed++
			}
		}
		summary = append(summary, entry)
	}

	if err := outputConvertResults(os.Stdout, summary); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func outputName(input string, target model.Syntax) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + "-" + string(target) + ".xml"
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func printWarnings(file string, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", file, w)
	}
}

func outputConvertResults(w io.Writer, results []ConvertResult) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tSOURCE\tNUMBER\tOUTPUT")
		fmt.Fprintln(tw, "----\t------\t------\t------")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\t\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.File, r.Source, r.Number, r.Output)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// ConvertResult holds the result of converting a single file
type ConvertResult struct {
	File     string   `json:"file"`
	Output   string   `json:"output,omitempty"`
	Source   string   `json:"source,omitempty"`
	Number   string   `json:"number,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}
