package einvoice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/ubl"
)

// Options configures writing
type Options struct {
	// AmountPrecision is the minimum number of fractional digits for
	// currency amounts; 0 writes amounts without trailing zeros
	AmountPrecision int

	// Indent is the indentation width; 0 writes a single line
	Indent int
}

// DefaultOptions returns the options used by the package level functions
func DefaultOptions() Options {
	o := codec.DefaultOptions()
	return Options{AmountPrecision: o.AmountPrecision, Indent: o.Indent}
}

// ReadUBL parses a UBL 2.1 Invoice or CreditNote
func ReadUBL(data []byte) (*Document, error) {
	return ubl.NewReader().Read(data)
}

// WriteUBL serializes doc as UBL 2.1 with default options
func WriteUBL(doc *Document) ([]byte, error) {
	return WriteUBLWithOptions(doc, DefaultOptions())
}

// WriteUBLWithOptions serializes doc as UBL 2.1
func WriteUBLWithOptions(doc *Document, opts Options) ([]byte, error) {
	return ubl.NewWriter(ubl.WithAmountPrecision(opts.AmountPrecision), ubl.WithIndent(opts.Indent)).Write(doc)
}

// ReadCII parses a UN/CEFACT CrossIndustryInvoice
func ReadCII(data []byte) (*Document, error) {
	return cii.NewReader().Read(data)
}

// WriteCII serializes doc as CII with default options
func WriteCII(doc *Document) ([]byte, error) {
	return WriteCIIWithOptions(doc, DefaultOptions())
}

// WriteCIIWithOptions serializes doc as CII
func WriteCIIWithOptions(doc *Document, opts Options) ([]byte, error) {
	return cii.NewWriter(cii.WithAmountPrecision(opts.AmountPrecision), cii.WithIndent(opts.Indent)).Write(doc)
}

// Detect returns the syntax of data from its root element
func Detect(data []byte) (Syntax, error) {
	c, err := codec.NewRegistry().Detect(data)
	if err != nil {
		return SyntaxUnknown, err
	}
	return c.Syntax(), nil
}

// Read auto-detects the syntax and parses data
func Read(ctx context.Context, data []byte) (*Document, Syntax, error) {
	doc, c, err := codec.NewRegistry().Read(ctx, data)
	if err != nil {
		return nil, SyntaxUnknown, err
	}
	return doc, c.Syntax(), nil
}

// Write serializes doc in the given syntax
func Write(doc *Document, syntax Syntax, opts Options) ([]byte, error) {
	c := codec.NewRegistryWithOptions(codec.Options(opts)).Get(syntax)
	if c == nil {
		return nil, fmt.Errorf("unsupported syntax: %s", syntax)
	}
	return c.Write(doc)
}

// Convert reads data in either syntax and writes it in target
func Convert(ctx context.Context, data []byte, target Syntax, opts Options) ([]byte, error) {
	registry := codec.NewRegistryWithOptions(codec.Options(opts))
	out := registry.Get(target)
	if out == nil {
		return nil, fmt.Errorf("unsupported syntax: %s", target)
	}

	in, err := registry.Detect(data)
	if err != nil {
		return nil, err
	}
	doc, err := in.Read(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return out.Write(doc)
}

// Validate reports missing required fields of doc. It does not evaluate
// EN 16931 business rules.
func Validate(doc *Document) []*ValidationError {
	if doc == nil {
		return []*model.ValidationError{model.NewValidationError("document", nil, "required", "document is nil")}
	}
	return doc.Validate()
}
