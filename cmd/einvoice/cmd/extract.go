package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/pdf"
	"github.com/rezonia/einvoice/internal/processor"
)

var (
	extractOutput string
	extractList   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract the embedded invoice XML from a PDF",
	Long: `Extract the invoice XML embedded in a ZUGFeRD, Factur-X or XRechnung PDF.

Known attachment names (factur-x.xml, zugferd-invoice.xml, xrechnung.xml)
are preferred over other .xml attachments.

Examples:
  einvoice extract invoice.pdf > factur-x.xml
  einvoice extract invoice.pdf -o factur-x.xml
  einvoice extract invoice.pdf --list`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().BoolVar(&extractList, "list", false, "List attachments instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if processor.DetectFormat(data) != processor.FormatPDF {
		return fmt.Errorf("%s is not a PDF", args[0])
	}

	embedder := pdf.NewEmbedder(pdf.WithAttachmentName(cfg.PDF.AttachmentName))

	if extractList {
		attachments, err := embedder.Attachments(data)
		if err != nil {
			return err
		}
		for _, a := range attachments {
			fmt.Printf("%s\t%d bytes\n", a.Name, len(a.Content))
		}
		return nil
	}

	att, err := embedder.Extract(data)
	if err != nil {
		return err
	}
	printVerbose("Extracted %s (%d bytes)\n", att.Name, len(att.Content))

	if extractOutput == "" {
		_, err = os.Stdout.Write(att.Content)
		return err
	}
	return os.WriteFile(extractOutput, att.Content, 0o644)
}
