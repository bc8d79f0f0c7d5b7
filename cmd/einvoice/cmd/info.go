package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice files",
	Long: `Display a summary of each invoice file.

Shows:
  - Detected file format (XML, PDF)
  - Syntax (UBL, CII) and document variant
  - Number, dates, parties and payable amount

Examples:
  einvoice info invoice.xml
  einvoice info invoices/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	pipeline := newPipeline()
	infos := make([]*FileInfo, 0, len(files))
	for _, file := range files {
		infos = append(infos, fileInfo(cmd.Context(), pipeline, file))
	}

	return outputInfo(os.Stdout, infos)
}

func fileInfo(ctx context.Context, pipeline *processor.Pipeline, path string) *FileInfo {
	info := &FileInfo{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		info.Error = fmt.Sprintf("failed to read file: %v", err)
		return info
	}
	info.Size = len(data)

	format := processor.DetectFormat(data)
	info.Format = format.String()
	if format == processor.FormatUnknown {
		info.Error = "unsupported file format"
		return info
	}

	result := pipeline.Process(ctx, data)
	if result.Error != nil {
		info.Error = result.Error.Error()
		return info
	}

	doc := result.Document
	info.Syntax = string(result.Syntax)
	info.Variant = doc.TypeCode.Name()
	info.TypeCode = string(doc.TypeCode)
	info.Number = doc.Number
	info.IssueDate = doc.IssueDate.Format("2006-01-02")
	info.Currency = doc.CurrencyCode
	info.Lines = len(doc.LineItems)
	info.Warnings = result.Warnings
	if doc.Seller != nil {
		info.Seller = doc.Seller.Name
	}
	if doc.Buyer != nil {
		info.Buyer = doc.Buyer.Name
	}
	if doc.MonetaryTotals != nil {
		info.Payable = doc.MonetaryTotals.PayableAmount.String()
	}

	return info
}

func outputInfo(w io.Writer, infos []*FileInfo) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	case "table":
		for _, info := range infos {
			printFileInfo(w, info)
			fmt.Fprintln(w)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func printFileInfo(w io.Writer, info *FileInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "File:\t%s\n", info.File)
	fmt.Fprintf(tw, "  Size:\t%d bytes\n", info.Size)
	fmt.Fprintf(tw, "  Format:\t%s\n", strings.ToUpper(info.Format))
	if info.Error != "" {
		fmt.Fprintf(tw, "  Error:\t%s\n", info.Error)
		return
	}
	fmt.Fprintf(tw, "  Syntax:\t%s\n", strings.ToUpper(info.Syntax))
	fmt.Fprintf(tw, "  Variant:\t%s (%s)\n", info.Variant, info.TypeCode)
	fmt.Fprintf(tw, "  Number:\t%s\n", info.Number)
	fmt.Fprintf(tw, "  Issue date:\t%s\n", info.IssueDate)
	fmt.Fprintf(tw, "  Seller:\t%s\n", info.Seller)
	fmt.Fprintf(tw, "  Buyer:\t%s\n", info.Buyer)
	fmt.Fprintf(tw, "  Lines:\t%d\n", info.Lines)
	if info.Payable != "" {
		fmt.Fprintf(tw, "  Payable:\t%s %s\n", info.Payable, info.Currency)
	}
	for _, warning := range info.Warnings {
		fmt.Fprintf(tw, "  Warning:\t%s\n", warning)
	}
}

// FileInfo summarizes one invoice file
type FileInfo struct {
	File      string   `json:"file"`
	Size      int      `json:"size"`
	Format    string   `json:"format"`
	Syntax    string   `json:"syntax,omitempty"`
	Variant   string   `json:"variant,omitempty"`
	TypeCode  string   `json:"type_code,omitempty"`
	Number    string   `json:"number,omitempty"`
	IssueDate string   `json:"issue_date,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Seller    string   `json:"seller,omitempty"`
	Buyer     string   `json:"buyer,omitempty"`
	Lines     int      `json:"lines,omitempty"`
	Payable   string   `json:"payable,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}
