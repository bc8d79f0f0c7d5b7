package server

import (
	"github.com/rezonia/einvoice/internal/model"
)

// ReadResponse is the response for the read endpoint
type ReadResponse struct {
	Document *model.Document `json:"document"`
	Syntax   string          `json:"syntax"`
	Method   string          `json:"method"`
	Warnings []string        `json:"warnings,omitempty"`
}

// CheckResponse is the response for the check endpoint
type CheckResponse struct {
	Syntax      string   `json:"syntax"`
	Stable      bool     `json:"stable"`
	CrossStable bool     `json:"cross_stable"`
	Warnings    []string `json:"warnings,omitempty"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Format    string `json:"format"`
	MimeType  string `json:"mime_type"`
	Size      int    `json:"size"`
	Syntax    string `json:"syntax,omitempty"`
	Number    string `json:"number,omitempty"`
	TypeCode  string `json:"type_code,omitempty"`
	Variant   string `json:"variant,omitempty"`
	LineCount int    `json:"line_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}
