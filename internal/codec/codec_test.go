package codec_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/testutil"
)

func TestRegistry_NewRegistry(t *testing.T) {
	registry := codec.NewRegistry()
	require.NotNil(t, registry)

	for _, s := range []model.Syntax{model.SyntaxUBL, model.SyntaxCII} {
		c := registry.Get(s)
		require.NotNil(t, c, "codec for %s should exist", s)
		assert.Equal(t, s, c.Syntax())
	}
	assert.Nil(t, registry.Get(model.SyntaxUnknown))
	assert.Equal(t, []model.Syntax{model.SyntaxUBL, model.SyntaxCII}, registry.Syntaxes())
}

func TestRegistry_Detect(t *testing.T) {
	registry := codec.NewRegistry()

	tests := []struct {
		name     string
		content  string
		expected model.Syntax
	}{
		{
			name:     "UBL invoice",
			content:  `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"/>`,
			expected: model.SyntaxUBL,
		},
		{
			name:     "UBL credit note with prefix",
			content:  `<x:CreditNote xmlns:x="urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"/>`,
			expected: model.SyntaxUBL,
		},
		{
			name:     "CII",
			content:  `<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`,
			expected: model.SyntaxCII,
		},
		{
			name:     "CII default namespace",
			content:  `<CrossIndustryInvoice xmlns="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`,
			expected: model.SyntaxCII,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.Detect([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Syntax())
		})
	}
}

func TestRegistry_DetectErrors(t *testing.T) {
	registry := codec.NewRegistry()

	tests := []struct {
		name    string
		content string
		kind    error
	}{
		{"no namespace", `<Invoice><ID>1</ID></Invoice>`, model.ErrUnsupportedVariant},
		{"other document", `<Order xmlns="urn:oasis:names:specification:ubl:schema:xsd:Order-2"/>`, model.ErrUnsupportedVariant},
		{"not xml", `{"number": "1"}`, model.ErrMalformedInput},
		{"empty", ``, model.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Detect([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestRegistry_Read(t *testing.T) {
	registry := codec.NewRegistry()
	ctx := context.Background()

	for _, s := range []model.Syntax{model.SyntaxUBL, model.SyntaxCII} {
		t.Run(string(s), func(t *testing.T) {
			data, err := registry.Get(s).Write(testutil.ZugpferdInvoice())
			require.NoError(t, err)

			doc, c, err := registry.Read(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, s, c.Syntax())
			assert.Equal(t, "RE-2024-0042", doc.Number)
		})
	}
}

func TestRegistry_ReadCanceled(t *testing.T) {
	registry := codec.NewRegistry()
	data, err := registry.Get(model.SyntaxUBL).Write(testutil.ZugpferdInvoice())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = registry.Read(ctx, data)
	assert.ErrorIs(t, err, context.Canceled)
}

type stubCodec struct {
	syntax model.Syntax
	doc    *model.Document
}

func (s *stubCodec) Read(_ context.Context, _ io.Reader) (*model.Document, error) {
	return s.doc, nil
}

func (s *stubCodec) Write(_ *model.Document) ([]byte, error) {
	return []byte("<stub/>"), nil
}

func (s *stubCodec) CanRead(_ *etree.Element) bool {
	return true
}

func (s *stubCodec) Syntax() model.Syntax {
	return s.syntax
}

func TestRegistry_Register(t *testing.T) {
	registry := codec.NewRegistry()
	custom := &stubCodec{syntax: model.SyntaxUBL, doc: model.NewInvoice("STUB", model.Date(2024, 1, 1))}
	registry.Register(custom)

	c, err := registry.Detect([]byte(`<anything/>`))
	require.NoError(t, err)
	assert.Same(t, custom, c, "custom codecs take priority")
	assert.Same(t, custom, registry.Get(model.SyntaxUBL))
	assert.Equal(t, []model.Syntax{model.SyntaxUBL, model.SyntaxCII}, registry.Syntaxes())

	doc, _, err := registry.Read(context.Background(), []byte(`<anything/>`))
	require.NoError(t, err)
	assert.Equal(t, "STUB", doc.Number)
}

func TestRegistryWithOptions(t *testing.T) {
	registry := codec.NewRegistryWithOptions(codec.Options{AmountPrecision: 2})

	for _, s := range registry.Syntaxes() {
		out, err := registry.Get(s).Write(testutil.ZugpferdInvoice())
		require.NoError(t, err)
		assert.Contains(t, string(out), ">7973.00<")
		assert.NotContains(t, string(out), "\n  <", "indent 0 writes a single line")
	}
}

// TestCrossFormatEquivalence converts UBL to CII and checks that reading the
// CII output yields the same document as reading the UBL input. Card network
// ids and allowance currencies have no CII counterpart and are cleared.
func TestCrossFormatEquivalence(t *testing.T) {
	registry := codec.NewRegistry()
	ctx := context.Background()
	ublCodec, ciiCodec := registry.Get(model.SyntaxUBL), registry.Get(model.SyntaxCII)

	docs := map[string]*model.Document{
		"invoice":      testutil.ZugpferdInvoice(),
		"credit note":  testutil.CreditNote(),
		"allowance":    testutil.WithAllowance(testutil.ZugpferdInvoice()),
		"card":         testutil.WithCard(testutil.ZugpferdInvoice()),
		"direct debit": testutil.WithDirectDebit(testutil.ZugpferdInvoice()),
		"classified": func() *model.Document {
			doc := testutil.ZugpferdInvoice()
			doc.LineItems[0].Note = model.Ptr("März")
			doc.LineItems[0].Item.Description = model.Ptr("Beratungsleistung")
			doc.LineItems[0].Item.SellersIdentifier = model.Ptr("B-100")
			doc.LineItems[0].Item.ClassificationCodes = []model.ClassificationCode{
				{Code: "85111", ListID: model.Ptr("STI"), ListVersionID: model.Ptr("2.0")},
			}
			doc.LineItems[0].Price.BaseQuantity = model.Ptr(model.MustDecimal("1"))
			doc.LineItems[0].Price.BaseQuantityUnit = model.Ptr("HUR")
			doc.Seller.TradingName = model.Ptr("Zugpferd")
			doc.Seller.LegalForm = model.Ptr("GmbH")
			return doc
		}(),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			ublXML, err := ublCodec.Write(doc)
			require.NoError(t, err)
			fromUBL, err := ublCodec.Read(ctx, bytes.NewReader(ublXML))
			require.NoError(t, err)

			ciiXML, err := ciiCodec.Write(fromUBL)
			require.NoError(t, err)
			fromCII, err := ciiCodec.Read(ctx, bytes.NewReader(ciiXML))
			require.NoError(t, err)

			assert.JSONEq(t, canonicalJSON(t, fromUBL), canonicalJSON(t, fromCII))

			// and back again
			backXML, err := ublCodec.Write(fromCII)
			require.NoError(t, err)
			back, err := ublCodec.Read(ctx, bytes.NewReader(backXML))
			require.NoError(t, err)
			assert.JSONEq(t, canonicalJSON(t, fromUBL), canonicalJSON(t, back))
		})
	}
}

func canonicalJSON(t *testing.T, doc *model.Document) string {
	t.Helper()
	clone := *doc
	if pi := clone.PaymentInstructions; pi != nil {
		p := *pi
		p.CardNetworkID = nil
		clone.PaymentInstructions = &p
	}
	clone.AllowanceCharges = make([]model.AllowanceCharge, len(doc.AllowanceCharges))
	for i, ac := range doc.AllowanceCharges {
		ac.CurrencyCode = nil
		clone.AllowanceCharges[i] = ac
	}
	data, err := json.Marshal(clone)
	require.NoError(t, err)
	return string(data)
}
