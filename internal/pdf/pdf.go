// Package pdf attaches e-invoice XML to PDF files and pulls it back out,
// the container used by ZUGFeRD and Factur-X.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rezonia/einvoice/internal/model"
)

// DefaultAttachmentName is the Factur-X file name for the embedded XML
const DefaultAttachmentName = "factur-x.xml"

const method = "pdf"

// Known attachment names, in lookup order, before falling back to any .xml file
var knownNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"ZUGFeRD-invoice.xml",
	"xrechnung.xml",
}

func init() {
	api.DisableConfigDir()
}

// Attachment is an embedded file found in a PDF
type Attachment struct {
	Name    string
	Content []byte
}

// Embedder handles embedding and extraction of XML attachments
type Embedder struct {
	name string
	conf *pdfmodel.Configuration
}

// Option configures an Embedder
type Option func(*Embedder)

// WithAttachmentName overrides the embedded file name
func WithAttachmentName(name string) Option {
	return func(e *Embedder) {
		if name != "" {
			e.name = name
		}
	}
}

// NewEmbedder creates a new embedder
func NewEmbedder(opts ...Option) *Embedder {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	e := &Embedder{
		name: DefaultAttachmentName,
		conf: conf,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AttachmentName returns the file name used by Embed
func (e *Embedder) AttachmentName() string {
	return e.name
}

// Embed returns a copy of pdf with xml attached as an embedded file
func (e *Embedder) Embed(pdf, xml []byte) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, model.NewExtractionError(method, "empty PDF", nil)
	}
	if len(xml) == 0 {
		return nil, model.NewExtractionError(method, "empty XML payload", nil)
	}

	// pdfcpu names attachments after the file they are read from
	dir, err := os.MkdirTemp("", "einvoice-embed-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(e.name))
	if err := os.WriteFile(path, xml, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddAttachments(bytes.NewReader(pdf), &out, []string{path}, false, e.conf); err != nil {
		return nil, model.NewExtractionError(method, "failed to add attachment", err)
	}
	return out.Bytes(), nil
}

// Attachments lists every embedded file with its content
func (e *Embedder) Attachments(pdf []byte) ([]Attachment, error) {
	if len(pdf) == 0 {
		return nil, model.NewExtractionError(method, "empty PDF", nil)
	}

	raw, err := api.ExtractAttachmentsRaw(bytes.NewReader(pdf), "", nil, e.conf)
	if err != nil {
		return nil, model.NewExtractionError(method, "failed to read attachments", err)
	}

	attachments := make([]Attachment, 0, len(raw))
	for _, a := range raw {
		if a.Reader == nil {
			continue
		}
		content, err := io.ReadAll(a.Reader)
		if err != nil {
			return nil, model.NewExtractionError(method, "failed to read attachment "+a.FileName, err)
		}
		name := a.FileName
		if name == "" {
			name = a.ID
		}
		attachments = append(attachments, Attachment{Name: name, Content: content})
	}
	return attachments, nil
}

// Extract returns the embedded invoice XML. Known Factur-X, ZUGFeRD and
// XRechnung names win over other .xml attachments.
func (e *Embedder) Extract(pdf []byte) (*Attachment, error) {
	attachments, err := e.Attachments(pdf)
	if err != nil {
		return nil, err
	}

	for _, name := range knownNames {
		for i := range attachments {
			if attachments[i].Name == name {
				return &attachments[i], nil
			}
		}
	}
	for i := range attachments {
		if strings.EqualFold(filepath.Ext(attachments[i].Name), ".xml") {
			return &attachments[i], nil
		}
	}
	return nil, model.NewExtractionError(method, "no XML attachment found", nil)
}

// IsPDF reports whether data starts with the PDF header
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}
