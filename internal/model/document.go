package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Syntax identifies an XML wire grammar
type Syntax string

const (
	SyntaxUBL     Syntax = "ubl"
	SyntaxCII     Syntax = "cii"
	SyntaxUnknown Syntax = "unknown"
)

// ParseSyntax maps a user supplied name to a Syntax
func ParseSyntax(s string) Syntax {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ubl", "ubl21", "ubl2.1":
		return SyntaxUBL
	case "cii", "uncefact", "zugferd", "facturx", "factur-x", "xrechnung-cii":
		return SyntaxCII
	default:
		return SyntaxUnknown
	}
}

// DocumentType is the UNTDID 1001 type code of a billing document (BT-3)
type DocumentType string

const (
	TypeInvoice           DocumentType = "380"
	TypeCreditNote        DocumentType = "381"
	TypeCorrectedInvoice  DocumentType = "384"
	TypePrepaymentInvoice DocumentType = "386"
	TypeSelfBilledInvoice DocumentType = "389"
	TypePartialInvoice    DocumentType = "326"
)

var documentTypeNames = map[DocumentType]string{
	TypeInvoice:           "Invoice",
	TypeCreditNote:        "CreditNote",
	TypeCorrectedInvoice:  "CorrectedInvoice",
	TypePrepaymentInvoice: "PrepaymentInvoice",
	TypeSelfBilledInvoice: "SelfBilledInvoice",
	TypePartialInvoice:    "PartialInvoice",
}

// Valid reports whether t is one of the supported type codes
func (t DocumentType) Valid() bool {
	_, ok := documentTypeNames[t]
	return ok
}

// Name returns the variant name, e.g. "CreditNote"
func (t DocumentType) Name() string {
	if n, ok := documentTypeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// IsCreditNote reports whether the variant uses the credit note grammar
func (t DocumentType) IsCreditNote() bool {
	return t == TypeCreditNote
}

// ParseDocumentType validates a raw type code
func ParseDocumentType(code string) (DocumentType, error) {
	t := DocumentType(strings.TrimSpace(code))
	if !t.Valid() {
		return "", NewValidationError("type_code", code, "enum", "unsupported document type code")
	}
	return t, nil
}

// DefaultCurrency is applied by the constructors
const DefaultCurrency = "EUR"

// Document is a billing document (BG-0). TypeCode discriminates the variant.
type Document struct {
	Number              string               `json:"number"`
	IssueDate           time.Time            `json:"issue_date"`
	DueDate             *time.Time           `json:"due_date,omitempty"`
	TypeCode            DocumentType         `json:"type_code"`
	CurrencyCode        string               `json:"currency_code"`
	BuyerReference      *string              `json:"buyer_reference,omitempty"`
	CustomizationID     *string              `json:"customization_id,omitempty"`
	ProfileID           *string              `json:"profile_id,omitempty"`
	Note                *string              `json:"note,omitempty"`
	Seller              *TradeParty          `json:"seller,omitempty"`
	Buyer               *TradeParty          `json:"buyer,omitempty"`
	DeliveryDate        *time.Time           `json:"delivery_date,omitempty"`
	LineItems           []LineItem           `json:"line_items"`
	AllowanceCharges    []AllowanceCharge    `json:"allowance_charges"`
	TaxBreakdown        *TaxBreakdown        `json:"tax_breakdown,omitempty"`
	MonetaryTotals      *MonetaryTotals      `json:"monetary_totals,omitempty"`
	PaymentInstructions *PaymentInstructions `json:"payment_instructions,omitempty"`
}

// NewDocument creates a document of the given variant
func NewDocument(typeCode DocumentType, number string, issueDate time.Time) (*Document, error) {
	if !typeCode.Valid() {
		return nil, NewValidationError("type_code", string(typeCode), "enum", "unsupported document type code")
	}
	if strings.TrimSpace(number) == "" {
		return nil, NewValidationError("number", nil, "required", "document number is required")
	}
	return &Document{
		Number:           number,
		IssueDate:        issueDate,
		TypeCode:         typeCode,
		CurrencyCode:     DefaultCurrency,
		LineItems:        []LineItem{},
		AllowanceCharges: []AllowanceCharge{},
	}, nil
}

// NewInvoice creates a commercial invoice (380)
func NewInvoice(number string, issueDate time.Time) *Document {
	return mustDocument(TypeInvoice, number, issueDate)
}

// NewCreditNote creates a credit note (381)
func NewCreditNote(number string, issueDate time.Time) *Document {
	return mustDocument(TypeCreditNote, number, issueDate)
}

func mustDocument(t DocumentType, number string, issueDate time.Time) *Document {
	return &Document{
		Number:           number,
		IssueDate:        issueDate,
		TypeCode:         t,
		CurrencyCode:     DefaultCurrency,
		LineItems:        []LineItem{},
		AllowanceCharges: []AllowanceCharge{},
	}
}

// IsCreditNote reports whether the document is a credit note
func (d *Document) IsCreditNote() bool {
	return d.TypeCode.IsCreditNote()
}

// AddLineItem appends a line and returns the document for chaining
func (d *Document) AddLineItem(li LineItem) *Document {
	d.LineItems = append(d.LineItems, li)
	return d
}

// AddAllowanceCharge appends a document level allowance or charge
func (d *Document) AddAllowanceCharge(ac AllowanceCharge) *Document {
	d.AllowanceCharges = append(d.AllowanceCharges, ac)
	return d
}

// Validate checks the required fields of the canonical model.
// It does not evaluate EN 16931 business rules.
func (d *Document) Validate() []*ValidationError {
	var errs []*ValidationError

	if strings.TrimSpace(d.Number) == "" {
		errs = append(errs, NewValidationError("number", nil, "required", "document number is required"))
	}
	if d.IssueDate.IsZero() {
		errs = append(errs, NewValidationError("issue_date", nil, "required", "issue date is required"))
	}
	if !d.TypeCode.Valid() {
		errs = append(errs, NewValidationError("type_code", string(d.TypeCode), "enum", "unsupported document type code"))
	}
	if d.CurrencyCode == "" {
		errs = append(errs, NewValidationError("currency_code", nil, "required", "currency code is required"))
	}

	errs = append(errs, d.Seller.validate("seller")...)
	errs = append(errs, d.Buyer.validate("buyer")...)

	for i, li := range d.LineItems {
		errs = append(errs, li.validate(i)...)
	}

	if d.TaxBreakdown != nil {
		for i, sub := range d.TaxBreakdown.Subtotals {
			if sub.CategoryCode == "" {
				errs = append(errs, NewValidationError(indexed("tax_subtotal", i, "category_code"), nil, "required", "tax category code is required"))
			}
		}
	}

	if p := d.PaymentInstructions; p != nil && p.PaymentMeansCode == "" {
		errs = append(errs, NewValidationError("payment_means_code", nil, "required", "payment means code is required"))
	}

	return errs
}

// Ptr returns a pointer to v, for populating optional fields
func Ptr[T any](v T) *T {
	return &v
}

// Decimal is the set of inputs accepted where an exact decimal is expected
type Decimal interface {
	decimal.Decimal | string
}

// ToDecimal normalizes a decimal or its string form to one exact representation
func ToDecimal[T Decimal](v T) (decimal.Decimal, error) {
	switch x := any(v).(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero, NewValidationError("decimal", x, "decimal", "not an exact decimal")
		}
		return d, nil
	}
	return decimal.Zero, nil
}

// MustDecimal is ToDecimal that panics on invalid input
func MustDecimal[T Decimal](v T) decimal.Decimal {
	d, err := ToDecimal(v)
	if err != nil {
		panic(err)
	}
	return d
}

// Date builds a calendar date at UTC midnight
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
