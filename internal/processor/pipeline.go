package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/logger"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/pdf"
)

// ExtractionMethod indicates how the XML payload was obtained
type ExtractionMethod string

const (
	MethodXML           ExtractionMethod = "xml"
	MethodPDFAttachment ExtractionMethod = "pdf_attachment"
)

var (
	// ErrUnsupportedFormat is returned for input that is neither XML nor PDF
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrUnsupportedTarget is returned when no codec writes the requested syntax
	ErrUnsupportedTarget = errors.New("unsupported target syntax")
)

// Result contains the outcome of reading one input
type Result struct {
	Document *model.Document
	Syntax   model.Syntax
	Method   ExtractionMethod
	// Source is the XML that was read, after PDF extraction if any
	Source   []byte
	Warnings []string
	Error    error
}

// Conversion is a document written to a target syntax
type Conversion struct {
	Document *model.Document
	Source   model.Syntax
	Target   model.Syntax
	Method   ExtractionMethod
	Output   []byte
	Warnings []string
}

// Input is one named item of a batch
type Input struct {
	Name string
	Data []byte
}

// BatchResult is the outcome for one batch item
type BatchResult struct {
	Name       string
	Conversion *Conversion
	Error      error
}

// CheckReport describes round trip stability of a document
type CheckReport struct {
	Syntax model.Syntax
	// Stable is true when writing, re-reading and writing again gives the same bytes
	Stable bool
	// CrossStable is true when a detour through the other syntax gives the same bytes
	CrossStable bool
	First       []byte
	Second      []byte
	Warnings    []string
}

// Pipeline orchestrates detection, reading and writing
type Pipeline struct {
	registry    *codec.Registry
	embedder    *pdf.Embedder
	logger      zerolog.Logger
	concurrency int
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithRegistry sets the codec registry
func WithRegistry(r *codec.Registry) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithEmbedder sets the PDF embedder
func WithEmbedder(e *pdf.Embedder) PipelineOption {
	return func(p *Pipeline) {
		if e != nil {
			p.embedder = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithConcurrency limits the number of documents converted at once by ConvertBatch
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline creates a new processing pipeline
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		registry:    codec.NewRegistry(),
		embedder:    pdf.NewEmbedder(),
		logger:      logger.WithComponent("pipeline"),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the codec registry used by the pipeline
func (p *Pipeline) Registry() *codec.Registry {
	return p.registry
}

// Process detects the input format and reads the document
func (p *Pipeline) Process(ctx context.Context, data []byte) *Result {
	switch format := DetectFormat(data); format {
	case FormatXML:
		return p.ProcessXMLBytes(ctx, data)
	case FormatPDF:
		return p.ProcessPDF(ctx, data)
	default:
		return &Result{Error: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}
}

// ProcessXML reads an XML document from r
func (p *Pipeline) ProcessXML(ctx context.Context, r io.Reader) *Result {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Result{Method: MethodXML, Error: fmt.Errorf("failed to read input: %w", err)}
	}
	return p.ProcessXMLBytes(ctx, data)
}

// ProcessXMLBytes reads an XML document
func (p *Pipeline) ProcessXMLBytes(ctx context.Context, data []byte) *Result {
	return p.read(ctx, data, MethodXML)
}

// ProcessPDF extracts the embedded XML from a PDF and reads it
func (p *Pipeline) ProcessPDF(ctx context.Context, data []byte) *Result {
	if err := ctx.Err(); err != nil {
		return &Result{Method: MethodPDFAttachment, Error: err}
	}

	att, err := p.embedder.Extract(data)
	if err != nil {
		return &Result{Method: MethodPDFAttachment, Error: err}
	}
	p.logger.Debug().Str("attachment", att.Name).Int("size", len(att.Content)).Msg("extracted XML from PDF")

	return p.read(ctx, att.Content, MethodPDFAttachment)
}

func (p *Pipeline) read(ctx context.Context, data []byte, method ExtractionMethod) *Result {
	result := &Result{Method: method, Source: data}

	doc, c, err := p.registry.Read(ctx, data)
	if err != nil {
		result.Error = fmt.Errorf("XML parsing failed: %w", err)
		return result
	}

	result.Document = doc
	result.Syntax = c.Syntax()
	result.Warnings = validationWarnings(doc)

	p.logger.Debug().
		Str("number", doc.Number).
		Str("syntax", string(result.Syntax)).
		Str("type_code", string(doc.TypeCode)).
		Int("lines", len(doc.LineItems)).
		Msg("document read")

	return result
}

// Write serializes doc in the target syntax
func (p *Pipeline) Write(doc *model.Document, target model.Syntax) ([]byte, error) {
	c := p.registry.Get(target)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}
	return c.Write(doc)
}

// Convert reads data (XML or PDF with embedded XML) and writes it in target
func (p *Pipeline) Convert(ctx context.Context, data []byte, target model.Syntax) (*Conversion, error) {
	if p.registry.Get(target) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}

	result := p.Process(ctx, data)
	if result.Error != nil {
		return nil, result.Error
	}

	out, err := p.Write(result.Document, target)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", target, err)
	}

	p.logger.Debug().
		Str("number", result.Document.Number).
		Str("from", string(result.Syntax)).
		Str("to", string(target)).
		Msg("document converted")

	return &Conversion{
		Document: result.Document,
		Source:   result.Syntax,
		Target:   target,
		Method:   result.Method,
		Output:   out,
		Warnings: result.Warnings,
	}, nil
}

// ConvertBatch converts inputs concurrently. Failures are reported per item
// and do not stop the others; only cancellation of ctx does.
func (p *Pipeline) ConvertBatch(ctx context.Context, inputs []Input, target model.Syntax) ([]BatchResult, error) {
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			conv, err := p.Convert(gctx, in.Data, target)
			results[i] = BatchResult{Name: in.Name, Conversion: conv, Error: err}
			if err != nil {
				p.logger.Warn().Err(err).Str("input", in.Name).Msg("conversion failed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Check reads data and verifies that writing is stable across a round trip
// in the same syntax and through the other syntax
func (p *Pipeline) Check(ctx context.Context, data []byte) (*CheckReport, error) {
	result := p.Process(ctx, data)
	if result.Error != nil {
		return nil, result.Error
	}

	source := p.registry.Get(result.Syntax)
	first, err := source.Write(result.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", result.Syntax, err)
	}

	reread, err := source.Read(ctx, bytes.NewReader(first))
	if err != nil {
		return nil, fmt.Errorf("failed to re-read written %s: %w", result.Syntax, err)
	}
	second, err := source.Write(reread)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", result.Syntax, err)
	}

	report := &CheckReport{
		Syntax:   result.Syntax,
		Stable:   bytes.Equal(first, second),
		First:    first,
		Second:   second,
		Warnings: result.Warnings,
	}

	cross, err := p.crossRoundTrip(ctx, source, reread)
	if err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	} else {
		report.CrossStable = bytes.Equal(second, cross)
	}

	p.logger.Debug().
		Str("number", result.Document.Number).
		Bool("stable", report.Stable).
		Bool("cross_stable", report.CrossStable).
		Msg("round trip checked")

	return report, nil
}

func (p *Pipeline) crossRoundTrip(ctx context.Context, source codec.Codec, doc *model.Document) ([]byte, error) {
	other := p.registry.Get(otherSyntax(source.Syntax()))
	if other == nil {
		return nil, fmt.Errorf("no codec for %s", otherSyntax(source.Syntax()))
	}

	out, err := other.Write(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", other.Syntax(), err)
	}
	back, err := other.Read(ctx, bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to re-read %s: %w", other.Syntax(), err)
	}
	return source.Write(back)
}

// Embed checks that invoice is a readable e-invoice and attaches it unchanged to pdfData
func (p *Pipeline) Embed(ctx context.Context, pdfData, invoice []byte) ([]byte, error) {
	result := p.ProcessXMLBytes(ctx, invoice)
	if result.Error != nil {
		return nil, result.Error
	}
	out, err := p.embedder.Embed(pdfData, invoice)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("number", result.Document.Number).
		Str("attachment", p.embedder.AttachmentName()).
		Msg("XML embedded into PDF")

	return out, nil
}

func otherSyntax(s model.Syntax) model.Syntax {
	if s == model.SyntaxUBL {
		return model.SyntaxCII
	}
	return model.SyntaxUBL
}

func validationWarnings(doc *model.Document) []string {
	errs := doc.Validate()
	if len(errs) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(errs))
	for _, e := range errs {
		warnings = append(warnings, e.Error())
	}
	return warnings
}
