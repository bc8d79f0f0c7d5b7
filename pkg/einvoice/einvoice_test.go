package einvoice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/pkg/einvoice"
)

func buildInvoice(t *testing.T) *einvoice.Document {
	t.Helper()

	doc, err := einvoice.NewDocument(einvoice.TypeInvoice, "INV-1", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	doc.Seller = &einvoice.TradeParty{Name: "Zugpferd GmbH", PostalAddress: &einvoice.PostalAddress{CountryCode: "DE"}}
	doc.Buyer = &einvoice.TradeParty{Name: "Muster AG", PostalAddress: &einvoice.PostalAddress{CountryCode: "DE"}}

	price := decimal.RequireFromString("2500.00")
	doc.AddLineItem(einvoice.LineItem{
		ID:                  "1",
		InvoicedQuantity:    decimal.RequireFromString("1"),
		UnitCode:            "C62",
		LineExtensionAmount: price,
		Item:                &einvoice.Item{Name: "Beratung"},
		Price:               &einvoice.Price{Amount: price},
	})
	doc.MonetaryTotals = &einvoice.MonetaryTotals{
		LineExtensionAmount: price,
		TaxExclusiveAmount:  price,
		TaxInclusiveAmount:  price,
		PayableAmount:       price,
	}
	return doc
}

func TestWriteRead_UBL(t *testing.T) {
	doc := buildInvoice(t)

	out, err := einvoice.WriteUBL(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<cbc:PayableAmount currencyID="EUR">2500</cbc:PayableAmount>`)

	back, err := einvoice.ReadUBL(out)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", back.Number)
	assert.True(t, back.MonetaryTotals.PayableAmount.Equal(decimal.RequireFromString("2500.00")))
}

func TestWriteRead_CII(t *testing.T) {
	doc := buildInvoice(t)

	out, err := einvoice.WriteCIIWithOptions(doc, einvoice.Options{AmountPrecision: 2})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<ram:DuePayableAmount>2500.00</ram:DuePayableAmount>`)
	assert.NotContains(t, string(out), "\n  <")

	back, err := einvoice.ReadCII(out)
	require.NoError(t, err)
	assert.Equal(t, einvoice.TypeInvoice, back.TypeCode)
	assert.Equal(t, "Muster AG", back.Buyer.Name)
}

func TestReadDetect(t *testing.T) {
	ctx := context.Background()
	doc := buildInvoice(t)

	ublXML, err := einvoice.WriteUBL(doc)
	require.NoError(t, err)
	ciiXML, err := einvoice.WriteCII(doc)
	require.NoError(t, err)

	syntax, err := einvoice.Detect(ciiXML)
	require.NoError(t, err)
	assert.Equal(t, einvoice.SyntaxCII, syntax)

	read, syntax, err := einvoice.Read(ctx, ublXML)
	require.NoError(t, err)
	assert.Equal(t, einvoice.SyntaxUBL, syntax)
	assert.Equal(t, "INV-1", read.Number)

	_, _, err = einvoice.Read(ctx, []byte("<Invoice"))
	assert.True(t, errors.Is(err, einvoice.ErrMalformedInput))
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	opts := einvoice.DefaultOptions()

	ublXML, err := einvoice.WriteUBL(buildInvoice(t))
	require.NoError(t, err)

	ciiXML, err := einvoice.Convert(ctx, ublXML, einvoice.SyntaxCII, opts)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(ciiXML), "rsm:CrossIndustryInvoice"))

	back, err := einvoice.Convert(ctx, ciiXML, einvoice.SyntaxUBL, opts)
	require.NoError(t, err)
	assert.Equal(t, ublXML, back)

	_, err = einvoice.Convert(ctx, ublXML, einvoice.SyntaxUnknown, opts)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	doc := buildInvoice(t)

	out, err := einvoice.Write(doc, einvoice.SyntaxUBL, einvoice.DefaultOptions())
	require.NoError(t, err)
	direct, err := einvoice.WriteUBL(doc)
	require.NoError(t, err)
	assert.Equal(t, direct, out)

	_, err = einvoice.Write(doc, einvoice.SyntaxUnknown, einvoice.DefaultOptions())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Empty(t, einvoice.Validate(buildInvoice(t)))

	doc := buildInvoice(t)
	doc.Seller.Name = ""
	errs := einvoice.Validate(doc)
	require.Len(t, errs, 1)
	assert.Equal(t, "seller.name", errs[0].Field)

	assert.Len(t, einvoice.Validate(nil), 1)
}

func TestParseError(t *testing.T) {
	_, err := einvoice.ReadCII([]byte(`<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`))
	require.Error(t, err)

	var parseErr *einvoice.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, einvoice.SyntaxCII, parseErr.Syntax)
	assert.True(t, errors.Is(err, einvoice.ErrUnsupportedVariant))
}
