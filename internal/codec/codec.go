// Package codec puts the UBL and CII readers and writers behind one
// interface and picks the right one for a given document.
package codec

import (
	"bytes"
	"context"
	"io"

	"github.com/beevik/etree"

	"github.com/rezonia/einvoice/internal/cii"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/ubl"
	"github.com/rezonia/einvoice/internal/xmlio"
)

// Codec reads and writes one XML syntax
type Codec interface {
	// Read parses a document from r
	Read(ctx context.Context, r io.Reader) (*model.Document, error)

	// Write serializes doc
	Write(doc *model.Document) ([]byte, error)

	// CanRead returns true if the codec handles documents with this root
	CanRead(root *etree.Element) bool

	// Syntax returns the syntax handled by the codec
	Syntax() model.Syntax
}

// Options configures the built-in codecs
type Options struct {
	// AmountPrecision is the minimum number of fractional digits written
	// for currency amounts
	AmountPrecision int

	// Indent is the indentation width of written XML; 0 writes one line
	Indent int
}

// DefaultOptions returns the options used by NewRegistry
func DefaultOptions() Options {
	return Options{Indent: 2}
}

type ublCodec struct {
	reader *ubl.Reader
	writer *ubl.Writer
}

// NewUBL creates the UBL 2.1 codec
func NewUBL(opts Options) Codec {
	return &ublCodec{
		reader: ubl.NewReader(),
		writer: ubl.NewWriter(ubl.WithAmountPrecision(opts.AmountPrecision), ubl.WithIndent(opts.Indent)),
	}
}

func (c *ublCodec) Read(ctx context.Context, r io.Reader) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reader.Decode(r)
}

func (c *ublCodec) Write(doc *model.Document) ([]byte, error) {
	return c.writer.Write(doc)
}

func (c *ublCodec) CanRead(root *etree.Element) bool {
	return ubl.IsUBL(root)
}

func (c *ublCodec) Syntax() model.Syntax {
	return model.SyntaxUBL
}

type ciiCodec struct {
	reader *cii.Reader
	writer *cii.Writer
}

// NewCII creates the UN/CEFACT CII codec
func NewCII(opts Options) Codec {
	return &ciiCodec{
		reader: cii.NewReader(),
		writer: cii.NewWriter(cii.WithAmountPrecision(opts.AmountPrecision), cii.WithIndent(opts.Indent)),
	}
}

func (c *ciiCodec) Read(ctx context.Context, r io.Reader) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.reader.Decode(r)
}

func (c *ciiCodec) Write(doc *model.Document) ([]byte, error) {
	return c.writer.Write(doc)
}

func (c *ciiCodec) CanRead(root *etree.Element) bool {
	return cii.IsCII(root)
}

func (c *ciiCodec) Syntax() model.Syntax {
	return model.SyntaxCII
}

// Registry holds all registered codecs
type Registry struct {
	codecs []Codec
}

// NewRegistry creates a registry with the UBL and CII codecs
func NewRegistry() *Registry {
	return NewRegistryWithOptions(DefaultOptions())
}

// NewRegistryWithOptions creates a registry whose built-in codecs use opts
func NewRegistryWithOptions(opts Options) *Registry {
	return &Registry{
		codecs: []Codec{
			NewUBL(opts),
			NewCII(opts),
		},
	}
}

// Detect identifies the codec for content from its root element
func (r *Registry) Detect(content []byte) (Codec, error) {
	root, err := xmlio.Parse(model.SyntaxUnknown, content)
	if err != nil {
		return nil, err
	}
	return r.DetectRoot(root)
}

// DetectRoot identifies the codec for an already parsed root element
func (r *Registry) DetectRoot(root *etree.Element) (Codec, error) {
	for _, c := range r.codecs {
		if c.CanRead(root) {
			return c, nil
		}
	}
	return nil, model.NewParseError(model.SyntaxUnknown, model.ErrUnsupportedVariant, "root",
		"unknown XML format {"+root.NamespaceURI()+"}"+root.Tag+", no matching codec found", nil)
}

// Read parses content using the matching codec
func (r *Registry) Read(ctx context.Context, content []byte) (*model.Document, Codec, error) {
	c, err := r.Detect(content)
	if err != nil {
		return nil, nil, err
	}
	doc, err := c.Read(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, c, err
	}
	return doc, c, nil
}

// Register adds a custom codec to the registry
func (r *Registry) Register(c Codec) {
	// Add at the beginning so custom codecs take priority
	r.codecs = append([]Codec{c}, r.codecs...)
}

// Get returns the codec for a syntax, or nil
func (r *Registry) Get(syntax model.Syntax) Codec {
	for _, c := range r.codecs {
		if c.Syntax() == syntax {
			return c
		}
	}
	return nil
}

// Syntaxes lists the syntaxes the registry can handle, in priority order
func (r *Registry) Syntaxes() []model.Syntax {
	seen := make(map[model.Syntax]bool, len(r.codecs))
	var out []model.Syntax
	for _, c := range r.codecs {
		if s := c.Syntax(); !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
