package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/model"
)

func TestNewDocument(t *testing.T) {
	doc, err := model.NewDocument(model.TypeCorrectedInvoice, "RE-1", model.Date(2024, 6, 15))
	require.NoError(t, err)

	assert.Equal(t, "RE-1", doc.Number)
	assert.Equal(t, model.TypeCorrectedInvoice, doc.TypeCode)
	assert.Equal(t, "EUR", doc.CurrencyCode)
	assert.Nil(t, doc.DueDate)
	assert.Nil(t, doc.Seller)
	assert.Empty(t, doc.LineItems)
	assert.Empty(t, doc.AllowanceCharges)
}

func TestNewDocument_Errors(t *testing.T) {
	_, err := model.NewDocument("999", "RE-1", model.Date(2024, 6, 15))
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "type_code", vErr.Field)

	_, err = model.NewDocument(model.TypeInvoice, " ", model.Date(2024, 6, 15))
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "number", vErr.Field)
}

func TestDocumentType(t *testing.T) {
	tests := []struct {
		code       string
		name       string
		creditNote bool
	}{
		{"380", "Invoice", false},
		{"381", "CreditNote", true},
		{"384", "CorrectedInvoice", false},
		{"386", "PrepaymentInvoice", false},
		{"389", "SelfBilledInvoice", false},
		{"326", "PartialInvoice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := model.ParseDocumentType(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.name, dt.Name())
			assert.Equal(t, tt.creditNote, dt.IsCreditNote())
		})
	}

	_, err := model.ParseDocumentType("123")
	require.Error(t, err)
	assert.Equal(t, "Unknown", model.DocumentType("123").Name())
}

func TestParseSyntax(t *testing.T) {
	assert.Equal(t, model.SyntaxUBL, model.ParseSyntax("UBL"))
	assert.Equal(t, model.SyntaxCII, model.ParseSyntax("cii"))
	assert.Equal(t, model.SyntaxCII, model.ParseSyntax("Factur-X"))
	assert.Equal(t, model.SyntaxUnknown, model.ParseSyntax("edifact"))
}

func TestToDecimal(t *testing.T) {
	fromString, err := model.ToDecimal("2500.00")
	require.NoError(t, err)
	fromDecimal, err := model.ToDecimal(decimal.RequireFromString("2500.00"))
	require.NoError(t, err)

	assert.True(t, fromString.Equal(fromDecimal))
	assert.Equal(t, "2500", fromString.String())

	_, err = model.ToDecimal("12,50")
	require.Error(t, err)

	assert.Panics(t, func() { model.MustDecimal("abc") })
}

func TestAllowanceCharge_Predicates(t *testing.T) {
	allowance := model.NewAllowance(model.MustDecimal("10.00"))
	assert.True(t, allowance.IsAllowance())
	assert.False(t, allowance.IsCharge())

	charge := model.NewCharge(model.MustDecimal("5"))
	assert.True(t, charge.IsCharge())
	assert.False(t, charge.IsAllowance())
}

func TestPaymentInstructions_Groups(t *testing.T) {
	var nilPayment *model.PaymentInstructions
	assert.False(t, nilPayment.HasCard())
	assert.False(t, nilPayment.HasMandate())

	p := model.NewPaymentInstructions("48")
	p.CardAccountID = model.Ptr("1234")
	assert.True(t, p.HasCard())
	assert.False(t, p.HasMandate())

	p.MandateReference = model.Ptr("MANDATE-1")
	assert.True(t, p.HasMandate())
}

func TestDocument_Validate(t *testing.T) {
	doc := model.NewInvoice("RE-2024-0042", model.Date(2024, 6, 15))
	doc.Seller = model.NewTradeParty("Zugpferd GmbH")
	doc.Seller.PostalAddress = model.NewPostalAddress("DE")
	doc.AddLineItem(model.NewLineItem("1", model.MustDecimal("5"), "C62", model.MustDecimal("2500.00")))

	assert.Empty(t, doc.Validate())

	doc.Buyer = &model.TradeParty{PostalAddress: &model.PostalAddress{}}
	doc.AddLineItem(model.LineItem{Item: &model.Item{TaxPercent: model.Ptr(model.MustDecimal("19"))}})
	doc.PaymentInstructions = &model.PaymentInstructions{}

	var fields []string
	for _, e := range doc.Validate() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"buyer.name",
		"buyer.postal_address.country_code",
		fmt.Sprintf("line[%d].id", 1),
		"line[1].unit_code",
		"line[1].item.name",
		"line[1].item.tax_percent",
		"payment_means_code",
	}, fields)
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := model.NewParseError(model.SyntaxCII, model.ErrMalformedInput, "xml", "failed to parse XML", cause)

	assert.True(t, errors.Is(err, model.ErrMalformedInput))
	assert.False(t, errors.Is(err, model.ErrInvalidDecimal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "[cii] xml: failed to parse XML (unexpected EOF)", err.Error())

	wrapped := fmt.Errorf("convert: %w", model.NewParseError(model.SyntaxUBL, model.ErrInvalidDateFormat, "issue_date", "bad date", nil))
	assert.True(t, errors.Is(wrapped, model.ErrInvalidDateFormat))

	var pErr *model.ParseError
	require.True(t, errors.As(wrapped, &pErr))
	assert.Equal(t, model.SyntaxUBL, pErr.Syntax)
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("no attachments")
	err := model.NewExtractionError("pdf-attachment", "no embedded XML", cause)
	assert.Equal(t, "extraction failed [pdf-attachment]: no embedded XML (no attachments)", err.Error())
	assert.ErrorIs(t, err, cause)
}
