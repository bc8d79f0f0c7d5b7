package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice/internal/model"
)

var (
	embedOutput  string
	embedName    string
	embedConvert string
)

var embedCmd = &cobra.Command{
	Use:   "embed <pdf> <invoice.xml>",
	Short: "Attach invoice XML to a PDF",
	Long: `Attach an invoice XML to a PDF as an embedded file, the container
used by ZUGFeRD and Factur-X.

The XML is read first and rejected when it is not a UBL or CII invoice.
It is embedded unchanged unless --convert names a target syntax.
PDF/A-3 conformance is not established by this command.

Examples:
  einvoice embed invoice.pdf factur-x.xml -o invoice-facturx.pdf
  einvoice embed invoice.pdf ubl.xml --convert cii -o invoice-facturx.pdf
  einvoice embed invoice.pdf xrechnung.xml --name xrechnung.xml -o out.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "", "Output PDF file")
	embedCmd.Flags().StringVar(&embedName, "name", "", "Attachment file name (default from config, factur-x.xml)")
	embedCmd.Flags().StringVar(&embedConvert, "convert", "", "Convert the XML to this syntax before embedding (ubl, cii)")
	_ = embedCmd.MarkFlagRequired("output")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	pdfData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}
	xmlData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read XML: %w", err)
	}

	if embedName != "" {
		cfg.PDF.AttachmentName = embedName
	}
	pipeline := newPipeline()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if embedConvert != "" {
		target := model.ParseSyntax(embedConvert)
		if target == model.SyntaxUnknown {
			return fmt.Errorf("unsupported target syntax: %s", embedConvert)
		}
		conv, err := pipeline.Convert(ctx, xmlData, target)
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		printVerbose("Converted %s from %s to %s\n", args[1], conv.Source, conv.Target)
		xmlData = conv.Output
	}

	out, err := pipeline.Embed(ctx, pdfData, xmlData)
	if err != nil {
		return err
	}

	if err := os.WriteFile(embedOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	printVerbose("Wrote %s (%d bytes) with attachment %s\n", embedOutput, len(out), cfg.PDF.AttachmentName)
	return nil
}
