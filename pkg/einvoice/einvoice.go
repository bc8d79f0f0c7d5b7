// Package einvoice provides a public API for reading and writing EN 16931
// electronic invoices in UBL 2.1 and UN/CEFACT CII syntax.
//
// Example usage:
//
//	doc, err := einvoice.ReadUBL(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cii, err := einvoice.WriteCII(doc)
package einvoice

import "github.com/rezonia/einvoice/internal/model"

// Re-export core types for public API
type (
	Document            = model.Document
	DocumentType        = model.DocumentType
	Syntax              = model.Syntax
	TradeParty          = model.TradeParty
	PostalAddress       = model.PostalAddress
	Contact             = model.Contact
	LineItem            = model.LineItem
	Item                = model.Item
	ClassificationCode  = model.ClassificationCode
	Price               = model.Price
	TaxBreakdown        = model.TaxBreakdown
	TaxSubtotal         = model.TaxSubtotal
	MonetaryTotals      = model.MonetaryTotals
	PaymentInstructions = model.PaymentInstructions
	AllowanceCharge     = model.AllowanceCharge
)

// Re-export syntaxes
const (
	SyntaxUBL     = model.SyntaxUBL
	SyntaxCII     = model.SyntaxCII
	SyntaxUnknown = model.SyntaxUnknown
)

// Re-export document types
const (
	TypeInvoice           = model.TypeInvoice
	TypeCreditNote        = model.TypeCreditNote
	TypeCorrectedInvoice  = model.TypeCorrectedInvoice
	TypePrepaymentInvoice = model.TypePrepaymentInvoice
	TypeSelfBilledInvoice = model.TypeSelfBilledInvoice
	TypePartialInvoice    = model.TypePartialInvoice
)

// Re-export error types
type (
	ParseError      = model.ParseError
	ValidationError = model.ValidationError
	ExtractionError = model.ExtractionError
)

// Re-export error kinds, for use with errors.Is
var (
	ErrMalformedInput     = model.ErrMalformedInput
	ErrUnsupportedVariant = model.ErrUnsupportedVariant
	ErrInvalidDateFormat  = model.ErrInvalidDateFormat
	ErrInvalidDecimal     = model.ErrInvalidDecimal
)

// Re-export constructors
var (
	NewDocument   = model.NewDocument
	NewInvoice    = model.NewInvoice
	NewCreditNote = model.NewCreditNote
	ParseSyntax   = model.ParseSyntax
)
