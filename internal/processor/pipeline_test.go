package processor_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/pdf"
	"github.com/rezonia/einvoice/internal/processor"
	"github.com/rezonia/einvoice/internal/testutil"
)

func newPipeline(opts ...processor.PipelineOption) *processor.Pipeline {
	opts = append([]processor.PipelineOption{processor.WithLogger(zerolog.Nop())}, opts...)
	return processor.NewPipeline(opts...)
}

func ublInvoice(t *testing.T) []byte {
	t.Helper()
	out, err := codec.NewUBL(codec.DefaultOptions()).Write(testutil.ZugpferdInvoice())
	require.NoError(t, err)
	return out
}

func ciiInvoice(t *testing.T) []byte {
	t.Helper()
	out, err := codec.NewCII(codec.DefaultOptions()).Write(testutil.ZugpferdInvoice())
	require.NoError(t, err)
	return out
}

func loadBlankPDF(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/blank.pdf")
	require.NoError(t, err)
	return data
}

func TestNewPipeline(t *testing.T) {
	p := processor.NewPipeline()
	require.NotNil(t, p)
	require.NotNil(t, p.Registry())
}

func TestNewPipeline_WithOptions(t *testing.T) {
	registry := codec.NewRegistryWithOptions(codec.Options{AmountPrecision: 2})
	p := processor.NewPipeline(
		processor.WithRegistry(registry),
		processor.WithEmbedder(pdf.NewEmbedder()),
		processor.WithConcurrency(2),
		processor.WithLogger(zerolog.Nop()),
	)
	require.NotNil(t, p)
	assert.Same(t, registry, p.Registry())
}

func TestProcessXML_UBL(t *testing.T) {
	p := newPipeline()

	result := p.ProcessXML(context.Background(), bytes.NewReader(ublInvoice(t)))
	require.NoError(t, result.Error)
	require.NotNil(t, result.Document)

	assert.Equal(t, processor.MethodXML, result.Method)
	assert.Equal(t, model.SyntaxUBL, result.Syntax)
	assert.Equal(t, "RE-2024-0042", result.Document.Number)
	assert.Equal(t, "Zugpferd GmbH", result.Document.Seller.Name)
	assert.Len(t, result.Document.LineItems, 3)
	assert.Empty(t, result.Warnings)
}

func TestProcessXMLBytes_CII(t *testing.T) {
	p := newPipeline()

	result := p.ProcessXMLBytes(context.Background(), ciiInvoice(t))
	require.NoError(t, result.Error)
	assert.Equal(t, model.SyntaxCII, result.Syntax)
	assert.Equal(t, "Muster AG", result.Document.Buyer.Name)
}

func TestProcessXML_Invalid(t *testing.T) {
	p := newPipeline()

	result := p.ProcessXML(context.Background(), strings.NewReader("not xml"))
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "XML parsing failed")
	assert.True(t, errors.Is(result.Error, model.ErrMalformedInput))
}

func TestProcessXML_UnknownRoot(t *testing.T) {
	p := newPipeline()

	result := p.ProcessXMLBytes(context.Background(), []byte(`<Invoice><Number>1</Number></Invoice>`))
	require.Error(t, result.Error)
	assert.True(t, errors.Is(result.Error, model.ErrUnsupportedVariant))
}

func TestProcessXML_Warnings(t *testing.T) {
	doc := testutil.ZugpferdInvoice()
	doc.Buyer.Name = ""
	data, err := codec.NewUBL(codec.DefaultOptions()).Write(doc)
	require.NoError(t, err)

	result := newPipeline().ProcessXMLBytes(context.Background(), data)
	require.NoError(t, result.Error)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "buyer.name")
}

func TestProcessPDF(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()
	invoice := ciiInvoice(t)

	withXML, err := p.Embed(ctx, loadBlankPDF(t), invoice)
	require.NoError(t, err)

	result := p.ProcessPDF(ctx, withXML)
	require.NoError(t, result.Error)
	assert.Equal(t, processor.MethodPDFAttachment, result.Method)
	assert.Equal(t, model.SyntaxCII, result.Syntax)
	assert.Equal(t, invoice, result.Source)
	assert.Equal(t, "RE-2024-0042", result.Document.Number)
}

func TestProcessPDF_NoAttachment(t *testing.T) {
	result := newPipeline().ProcessPDF(context.Background(), loadBlankPDF(t))
	require.Error(t, result.Error)

	var extractErr *model.ExtractionError
	assert.True(t, errors.As(result.Error, &extractErr))
}

func TestEmbed_RejectsInvalidXML(t *testing.T) {
	_, err := newPipeline().Embed(context.Background(), loadBlankPDF(t), []byte("<note/>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedVariant))
}

func TestProcess_UnsupportedFormat(t *testing.T) {
	result := newPipeline().Process(context.Background(), []byte("some random text"))
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "unsupported input format")
}

func TestConvert(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	conv, err := p.Convert(ctx, ublInvoice(t), model.SyntaxCII)
	require.NoError(t, err)
	assert.Equal(t, model.SyntaxUBL, conv.Source)
	assert.Equal(t, model.SyntaxCII, conv.Target)
	assert.Contains(t, string(conv.Output), "rsm:CrossIndustryInvoice")

	back, err := p.Convert(ctx, conv.Output, model.SyntaxUBL)
	require.NoError(t, err)
	assert.Equal(t, model.SyntaxCII, back.Source)
	assert.Equal(t, ublInvoice(t), back.Output)
}

func TestConvert_SameSyntax(t *testing.T) {
	conv, err := newPipeline().Convert(context.Background(), ciiInvoice(t), model.SyntaxCII)
	require.NoError(t, err)
	assert.Equal(t, ciiInvoice(t), conv.Output)
}

func TestConvert_UnknownTarget(t *testing.T) {
	_, err := newPipeline().Convert(context.Background(), ublInvoice(t), model.SyntaxUnknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target syntax")
}

func TestConvert_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline().Convert(ctx, ublInvoice(t), model.SyntaxCII)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConvertBatch(t *testing.T) {
	p := newPipeline(processor.WithConcurrency(2))

	inputs := []processor.Input{
		{Name: "a.xml", Data: ublInvoice(t)},
		{Name: "broken.xml", Data: []byte("<Invoice")},
		{Name: "b.xml", Data: ciiInvoice(t)},
	}

	results, err := p.ConvertBatch(context.Background(), inputs, model.SyntaxUBL)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a.xml", results[0].Name)
	require.NoError(t, results[0].Error)
	assert.Equal(t, model.SyntaxUBL, results[0].Conversion.Source)

	assert.Equal(t, "broken.xml", results[1].Name)
	assert.True(t, errors.Is(results[1].Error, model.ErrMalformedInput))
	assert.Nil(t, results[1].Conversion)

	require.NoError(t, results[2].Error)
	assert.Equal(t, model.SyntaxCII, results[2].Conversion.Source)
	assert.Equal(t, results[0].Conversion.Output, results[2].Conversion.Output)
}

func TestConvertBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline().ConvertBatch(ctx, []processor.Input{{Name: "a.xml", Data: ublInvoice(t)}}, model.SyntaxCII)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCheck(t *testing.T) {
	p := newPipeline()

	for name, data := range map[string][]byte{"ubl": ublInvoice(t), "cii": ciiInvoice(t)} {
		t.Run(name, func(t *testing.T) {
			report, err := p.Check(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, model.Syntax(name), report.Syntax)
			assert.True(t, report.Stable)
			assert.Equal(t, report.First, report.Second)
		})
	}
}

func TestCheck_Invalid(t *testing.T) {
	_, err := newPipeline().Check(context.Background(), []byte("<Invoice"))
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected processor.Format
	}{
		{
			name:     "XML with declaration",
			data:     []byte(`<?xml version="1.0"?><Invoice/>`),
			expected: processor.FormatXML,
		},
		{
			name:     "XML without declaration",
			data:     []byte(`<Invoice><Number>1</Number></Invoice>`),
			expected: processor.FormatXML,
		},
		{
			name:     "XML with BOM and whitespace",
			data:     append([]byte{0xEF, 0xBB, 0xBF}, []byte("\n  <Invoice/>")...),
			expected: processor.FormatXML,
		},
		{
			name:     "PDF",
			data:     []byte("%PDF-1.4\n%some content"),
			expected: processor.FormatPDF,
		},
		{
			name:     "PNG image",
			data:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			expected: processor.FormatUnknown,
		},
		{
			name:     "Unknown format",
			data:     []byte("some random text"),
			expected: processor.FormatUnknown,
		},
		{
			name:     "Empty data",
			data:     []byte{},
			expected: processor.FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, processor.DetectFormat(tt.data))
		})
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   processor.Format
		expected string
		mime     string
	}{
		{processor.FormatXML, "xml", "application/xml"},
		{processor.FormatPDF, "pdf", "application/pdf"},
		{processor.FormatUnknown, "unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
			assert.Equal(t, tt.mime, tt.format.MimeType())
		})
	}
}

func TestExtractionMethod(t *testing.T) {
	assert.Equal(t, processor.ExtractionMethod("xml"), processor.MethodXML)
	assert.Equal(t, processor.ExtractionMethod("pdf_attachment"), processor.MethodPDFAttachment)
}

// Benchmark tests

func BenchmarkDetectFormat_XML(b *testing.B) {
	data := []byte(`<?xml version="1.0"?><Invoice><Number>1</Number></Invoice>`)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		processor.DetectFormat(data)
	}
}

func BenchmarkConvert_UBLToCII(b *testing.B) {
	data, err := codec.NewUBL(codec.DefaultOptions()).Write(testutil.ZugpferdInvoice())
	require.NoError(b, err)

	p := newPipeline()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Convert(ctx, data, model.SyntaxCII); err != nil {
			b.Fatal(err)
		}
	}
}
