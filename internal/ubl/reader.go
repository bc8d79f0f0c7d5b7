package ubl

import (
	"io"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/xmlio"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// Reader parses UBL 2.1 Invoice and CreditNote documents
type Reader struct{}

// NewReader creates a UBL reader
func NewReader() *Reader {
	return &Reader{}
}

// Decode reads the whole of src and parses it
func (r *Reader) Decode(src io.Reader) (*model.Document, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, model.NewParseError(model.SyntaxUBL, model.ErrMalformedInput, "xml", "failed to read input", err)
	}
	return r.Read(data)
}

// Read parses a UBL document. Absent elements leave the corresponding
// fields nil; nothing is defaulted except the type code, which follows the
// root element when the document omits it.
func (r *Reader) Read(data []byte) (*model.Document, error) {
	root, err := xmlio.Parse(model.SyntaxUBL, data)
	if err != nil {
		return nil, err
	}

	g, err := grammarOf(root)
	if err != nil {
		return nil, err
	}

	s := xmlio.NewScanner(model.SyntaxUBL, parseDate)
	doc := readDocument(s, g, root)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsUBL reports whether root is a UBL Invoice or CreditNote element
func IsUBL(root *etree.Element) bool {
	_, err := grammarOf(root)
	return err == nil
}

func grammarOf(root *etree.Element) (grammar, error) {
	space := root.NamespaceURI()
	for _, g := range []grammar{invoiceGrammar, creditNoteGrammar} {
		if root.Tag == g.root && space == g.namespace {
			return g, nil
		}
	}
	return grammar{}, model.NewParseError(model.SyntaxUBL, model.ErrUnsupportedVariant, "root",
		"unknown root element {"+space+"}"+root.Tag, nil)
}

func parseDate(el *etree.Element) (time.Time, error) {
	return xmlio.ParseISODate(el.Text())
}

func readDocument(s *xmlio.Scanner, g grammar, root *etree.Element) *model.Document {
	h := g.header

	doc := &model.Document{
		Number:          s.String(root, h.L("number")),
		IssueDate:       s.Date(root, h.L("issue_date"), "issue_date"),
		DueDate:         s.OptDate(root, h.L("due_date"), "due_date"),
		TypeCode:        readTypeCode(s, g, root),
		CurrencyCode:    s.String(root, h.L("currency_code")),
		BuyerReference:  s.OptString(root, h.L("buyer_reference")),
		CustomizationID: s.OptString(root, h.L("customization_id")),
		ProfileID:       s.OptString(root, h.L("profile_id")),
		Note:            s.OptString(root, h.L("note")),
		DeliveryDate:    s.OptDate(root, h.L("delivery_date"), "delivery_date"),
	}

	sellerNode := xmlpath.Find(root, h.L("seller"))
	doc.Seller = readParty(s, sellerNode)
	doc.Buyer = readParty(s, xmlpath.Find(root, h.L("buyer")))

	doc.LineItems = []model.LineItem{}
	for _, n := range xmlpath.FindAll(root, h.L("line_items")) {
		doc.LineItems = append(doc.LineItems, readLineItem(s, g, n))
	}

	doc.AllowanceCharges = []model.AllowanceCharge{}
	for _, n := range xmlpath.FindAll(root, h.L("allowance_charges")) {
		doc.AllowanceCharges = append(doc.AllowanceCharges, readAllowanceCharge(s, n))
	}

	doc.TaxBreakdown = readTaxBreakdown(s, xmlpath.Find(root, h.L("tax_breakdown")))
	doc.MonetaryTotals = readMonetaryTotals(s, xmlpath.Find(root, h.L("monetary_totals")))
	doc.PaymentInstructions = readPaymentInstructions(s, h, root, sellerNode)

	return doc
}

func readTypeCode(s *xmlio.Scanner, g grammar, root *etree.Element) model.DocumentType {
	raw, ok := xmlpath.Text(root, g.header.L("type_code"))
	if !ok {
		if g.root == creditNoteGrammar.root {
			return model.TypeCreditNote
		}
		return model.TypeInvoice
	}

	t, err := model.ParseDocumentType(raw)
	if err != nil {
		s.Failf(model.ErrUnsupportedVariant, "type_code", "unsupported type code \""+raw+"\"", err)
		return ""
	}
	if t.IsCreditNote() != (g.root == creditNoteGrammar.root) {
		s.Failf(model.ErrUnsupportedVariant, "type_code", "type code "+raw+" does not match root element "+g.root, nil)
		return ""
	}
	return t
}

func readParty(s *xmlio.Scanner, node *etree.Element) *model.TradeParty {
	if node == nil {
		return nil
	}

	p := partyTable
	party := &model.TradeParty{
		Name:                    s.String(node, p.L("name")),
		TradingName:             s.OptString(node, p.L("trading_name")),
		Identifier:              s.OptString(node, p.L("identifier")),
		LegalRegistrationID:     s.OptString(node, p.L("legal_registration_id")),
		LegalForm:               s.OptString(node, p.L("legal_form")),
		VATIdentifier:           s.OptString(node, p.L("vat_identifier")),
		ElectronicAddress:       s.OptString(node, p.L("electronic_address")),
		ElectronicAddressScheme: s.OptString(node, p.L("electronic_address_scheme")),
	}

	if addr := xmlpath.Find(node, p.L("postal_address")); addr != nil {
		a := addressTable
		party.PostalAddress = &model.PostalAddress{
			CountryCode: s.String(addr, a.L("country_code")),
			StreetName:  s.OptString(addr, a.L("street_name")),
			CityName:    s.OptString(addr, a.L("city_name")),
			PostalZone:  s.OptString(addr, a.L("postal_zone")),
		}
	}

	if contact := xmlpath.Find(node, p.L("contact")); contact != nil {
		c := contactTable
		party.Contact = &model.Contact{
			Name:      s.OptString(contact, c.L("name")),
			Telephone: s.OptString(contact, c.L("telephone")),
			Email:     s.OptString(contact, c.L("email")),
		}
	}

	return party
}

func readPaymentInstructions(s *xmlio.Scanner, h xmlpath.Table, root, seller *etree.Element) *model.PaymentInstructions {
	means := xmlpath.Find(root, h.L("payment_instructions"))
	if means == nil {
		return nil
	}

	p := paymentTable
	pi := &model.PaymentInstructions{
		PaymentMeansCode: s.String(means, p.L("payment_means_code")),
		PaymentID:        s.OptString(means, p.L("payment_id")),
		AccountID:        s.OptString(means, p.L("account_id")),
		Note:             s.OptString(root, h.L("payment_note")),
	}

	if card := xmlpath.Find(means, p.L("card")); card != nil {
		pi.CardAccountID = s.OptString(means, p.L("card_account_id"))
		pi.CardNetworkID = s.OptString(means, p.L("card_network_id"))
		pi.CardHolderName = s.OptString(means, p.L("card_holder_name"))
	}

	if mandate := xmlpath.Find(means, p.L("mandate")); mandate != nil {
		pi.MandateReference = s.OptString(means, p.L("mandate_reference"))
		pi.DebitedAccountID = s.OptString(means, p.L("debited_account_id"))
	}

	// BT-90 lives on the seller in UBL
	pi.CreditorReferenceID = s.OptString(seller, partyTable.L("creditor_reference_id"))

	return pi
}

func readTaxBreakdown(s *xmlio.Scanner, node *etree.Element) *model.TaxBreakdown {
	if node == nil {
		return nil
	}

	t := taxTotalTable
	tb := &model.TaxBreakdown{
		TaxAmount:    s.Decimal(node, t.L("tax_amount"), "tax_amount"),
		CurrencyCode: s.String(node, t.L("currency_code")),
		Subtotals:    []model.TaxSubtotal{},
	}

	st := taxSubtotalTable
	for _, sub := range xmlpath.FindAll(node, t.L("subtotals")) {
		tb.Subtotals = append(tb.Subtotals, model.TaxSubtotal{
			TaxableAmount:       s.Decimal(sub, st.L("taxable_amount"), "taxable_amount"),
			TaxAmount:           s.Decimal(sub, st.L("tax_amount"), "tax_amount"),
			CategoryCode:        s.String(sub, st.L("category_code")),
			Percent:             s.OptDecimal(sub, st.L("percent"), "percent"),
			CurrencyCode:        s.String(sub, st.L("currency_code")),
			ExemptionReason:     s.OptString(sub, st.L("exemption_reason")),
			ExemptionReasonCode: s.OptString(sub, st.L("exemption_reason_code")),
		})
	}

	return tb
}

func readMonetaryTotals(s *xmlio.Scanner, node *etree.Element) *model.MonetaryTotals {
	if node == nil {
		return nil
	}

	t := totalsTable
	return &model.MonetaryTotals{
		LineExtensionAmount:   s.Decimal(node, t.L("line_extension_amount"), "line_extension_amount"),
		TaxExclusiveAmount:    s.Decimal(node, t.L("tax_exclusive_amount"), "tax_exclusive_amount"),
		TaxInclusiveAmount:    s.Decimal(node, t.L("tax_inclusive_amount"), "tax_inclusive_amount"),
		PayableAmount:         s.Decimal(node, t.L("payable_amount"), "payable_amount"),
		PrepaidAmount:         s.OptDecimal(node, t.L("prepaid_amount"), "prepaid_amount"),
		PayableRoundingAmount: s.OptDecimal(node, t.L("payable_rounding_amount"), "payable_rounding_amount"),
		AllowanceTotalAmount:  s.OptDecimal(node, t.L("allowance_total_amount"), "allowance_total_amount"),
		ChargeTotalAmount:     s.OptDecimal(node, t.L("charge_total_amount"), "charge_total_amount"),
	}
}

func readAllowanceCharge(s *xmlio.Scanner, node *etree.Element) model.AllowanceCharge {
	t := allowanceChargeTable
	return model.AllowanceCharge{
		ChargeIndicator:  s.Bool(node, t.L("charge_indicator")),
		Amount:           s.Decimal(node, t.L("amount"), "allowance_charge.amount"),
		Reason:           s.OptString(node, t.L("reason")),
		ReasonCode:       s.OptString(node, t.L("reason_code")),
		BaseAmount:       s.OptDecimal(node, t.L("base_amount"), "allowance_charge.base_amount"),
		MultiplierFactor: s.OptDecimal(node, t.L("multiplier_factor"), "allowance_charge.multiplier_factor"),
		TaxCategoryCode:  s.OptString(node, t.L("tax_category_code")),
		TaxPercent:       s.OptDecimal(node, t.L("tax_percent"), "allowance_charge.tax_percent"),
		CurrencyCode:     s.OptString(node, t.L("currency_code")),
	}
}

func readLineItem(s *xmlio.Scanner, g grammar, node *etree.Element) model.LineItem {
	l := g.line
	li := model.LineItem{
		ID:                  s.String(node, l.L("id")),
		InvoicedQuantity:    s.Decimal(node, l.L("invoiced_quantity"), "line.invoiced_quantity"),
		UnitCode:            s.String(node, l.L("unit_code")),
		LineExtensionAmount: s.Decimal(node, l.L("line_extension_amount"), "line.line_extension_amount"),
		Note:                s.OptString(node, l.L("note")),
	}

	if item := xmlpath.Find(node, l.L("item")); item != nil {
		it := itemTable
		li.Item = &model.Item{
			Name:              s.String(item, it.L("name")),
			Description:       s.OptString(item, it.L("description")),
			SellersIdentifier: s.OptString(item, it.L("sellers_identifier")),
			TaxCategory:       s.OptString(item, it.L("tax_category")),
			TaxPercent:        s.OptDecimal(item, it.L("tax_percent"), "item.tax_percent"),
		}
		c := classificationTable
		for _, cc := range xmlpath.FindAll(item, it.L("classification_codes")) {
			li.Item.ClassificationCodes = append(li.Item.ClassificationCodes, model.ClassificationCode{
				Code:          s.String(cc, c.L("code")),
				ListID:        s.OptString(cc, c.L("list_id")),
				ListVersionID: s.OptString(cc, c.L("list_version_id")),
			})
		}
	}

	if price := xmlpath.Find(node, l.L("price")); price != nil {
		p := priceTable
		li.Price = &model.Price{
			Amount:           s.Decimal(price, p.L("amount"), "price.amount"),
			BaseQuantity:     s.OptDecimal(price, p.L("base_quantity"), "price.base_quantity"),
			BaseQuantityUnit: s.OptString(price, p.L("base_quantity_unit")),
		}
	}

	return li
}
