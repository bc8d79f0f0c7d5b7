package cii

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/xmlio"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// Reader parses UN/CEFACT CrossIndustryInvoice documents
type Reader struct{}

// NewReader creates a CII reader
func NewReader() *Reader {
	return &Reader{}
}

// Decode reads the whole of src and parses it
func (r *Reader) Decode(src io.Reader) (*model.Document, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, model.NewParseError(model.SyntaxCII, model.ErrMalformedInput, "xml", "failed to read input", err)
	}
	return r.Read(data)
}

// Read parses a CII document. All variants share one root; the variant is
// taken from the document type code, which must be present.
func (r *Reader) Read(data []byte) (*model.Document, error) {
	root, err := xmlio.Parse(model.SyntaxCII, data)
	if err != nil {
		return nil, err
	}
	if !IsCII(root) {
		return nil, model.NewParseError(model.SyntaxCII, model.ErrUnsupportedVariant, "root",
			"unknown root element {"+root.NamespaceURI()+"}"+root.Tag, nil)
	}

	s := xmlio.NewScanner(model.SyntaxCII, parseDate)
	doc := readDocument(s, root)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsCII reports whether root is a CrossIndustryInvoice element
func IsCII(root *etree.Element) bool {
	return root != nil && root.Tag == RootElement && root.NamespaceURI() == NamespaceRSM
}

// parseDate reads a udt:DateTimeString. Only format 102 (CCYYMMDD) is
// accepted.
func parseDate(el *etree.Element) (time.Time, error) {
	format, ok := xmlpath.Attr(el, dateFormatAttr)
	if !ok {
		return time.Time{}, fmt.Errorf("missing %s attribute", dateFormatAttr)
	}
	if format != dateFormat {
		return time.Time{}, fmt.Errorf("unsupported date format %q", format)
	}
	return time.Parse(dateLayout, strings.TrimSpace(el.Text()))
}

func readDocument(s *xmlio.Scanner, root *etree.Element) *model.Document {
	context := xmlpath.Find(root, rootTable.L("context"))
	exchanged := xmlpath.Find(root, rootTable.L("document"))
	transaction := xmlpath.Find(root, rootTable.L("transaction"))

	t := transactionTable
	agreement := xmlpath.Find(transaction, t.L("agreement"))
	delivery := xmlpath.Find(transaction, t.L("delivery"))
	settlement := xmlpath.Find(transaction, t.L("settlement"))

	d, st := documentTable, settlementTable
	doc := &model.Document{
		Number:          s.String(exchanged, d.L("number")),
		IssueDate:       s.Date(exchanged, d.L("issue_date"), "issue_date"),
		DueDate:         s.OptDate(settlement, st.L("due_date"), "due_date"),
		TypeCode:        readTypeCode(s, exchanged),
		CurrencyCode:    s.String(settlement, st.L("currency_code")),
		BuyerReference:  s.OptString(agreement, agreementTable.L("buyer_reference")),
		CustomizationID: s.OptString(context, contextTable.L("customization_id")),
		ProfileID:       s.OptString(context, contextTable.L("profile_id")),
		Note:            s.OptString(exchanged, d.L("note")),
		DeliveryDate:    s.OptDate(delivery, deliveryTable.L("delivery_date"), "delivery_date"),
	}

	doc.Seller = readParty(s, xmlpath.Find(agreement, agreementTable.L("seller")))
	doc.Buyer = readParty(s, xmlpath.Find(agreement, agreementTable.L("buyer")))

	doc.LineItems = []model.LineItem{}
	for _, n := range xmlpath.FindAll(transaction, t.L("line_items")) {
		doc.LineItems = append(doc.LineItems, readLineItem(s, n))
	}

	doc.AllowanceCharges = []model.AllowanceCharge{}
	for _, n := range xmlpath.FindAll(settlement, st.L("allowance_charges")) {
		doc.AllowanceCharges = append(doc.AllowanceCharges, readAllowanceCharge(s, n))
	}

	totals := xmlpath.Find(settlement, st.L("monetary_totals"))
	doc.TaxBreakdown = readTaxBreakdown(s, settlement, totals, doc.CurrencyCode)
	doc.MonetaryTotals = readMonetaryTotals(s, totals)
	doc.PaymentInstructions = readPaymentInstructions(s, settlement)

	return doc
}

func readTypeCode(s *xmlio.Scanner, exchanged *etree.Element) model.DocumentType {
	raw, ok := xmlpath.Text(exchanged, documentTable.L("type_code"))
	if !ok {
		s.Failf(model.ErrUnsupportedVariant, "type_code", "document type code is missing", nil)
		return ""
	}
	t, err := model.ParseDocumentType(raw)
	if err != nil {
		s.Failf(model.ErrUnsupportedVariant, "type_code", "unsupported type code \""+raw+"\"", err)
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

func readPaymentInstructions(s *xmlio.Scanner, settlement *etree.Element) *model.PaymentInstructions {
	st := settlementTable
	means := xmlpath.Find(settlement, st.L("payment_instructions"))
	if means == nil {
		return nil
	}

	p := paymentTable
	pi := &model.PaymentInstructions{
		PaymentMeansCode:    s.String(means, p.L("payment_means_code")),
		PaymentID:           s.OptString(settlement, st.L("payment_id")),
		AccountID:           s.OptString(means, p.L("account_id")),
		DebitedAccountID:    s.OptString(means, p.L("debited_account_id")),
		CreditorReferenceID: s.OptString(settlement, st.L("creditor_reference_id")),
		MandateReference:    s.OptString(settlement, st.L("mandate_reference")),
		Note:                s.OptString(settlement, st.L("payment_note")),
	}

	if card := xmlpath.Find(means, p.L("card")); card != nil {
		pi.CardAccountID = s.OptString(means, p.L("card_account_id"))
		pi.CardHolderName = s.OptString(means, p.L("card_holder_name"))
	}

	return pi
}

// readTaxBreakdown assembles the breakdown from the header trade taxes and
// the tax total in the monetary summation. CII carries the currency only on
// TaxTotalAmount; subtotals inherit it.
func readTaxBreakdown(s *xmlio.Scanner, settlement, totals *etree.Element, currency string) *model.TaxBreakdown {
	m := totalsTable
	taxes := xmlpath.FindAll(settlement, settlementTable.L("tax_subtotals"))
	if len(taxes) == 0 && xmlpath.Find(totals, m.L("tax_total_amount")) == nil {
		return nil
	}

	tb := &model.TaxBreakdown{
		TaxAmount:    s.Decimal(totals, m.L("tax_total_amount"), "tax_total_amount"),
		CurrencyCode: s.String(totals, m.L("tax_total_currency")),
		Subtotals:    []model.TaxSubtotal{},
	}
	subCurrency := xmlio.FirstNonEmpty(tb.CurrencyCode, currency)

	t := taxTable
	for _, sub := range taxes {
		tb.Subtotals = append(tb.Subtotals, model.TaxSubtotal{
			TaxableAmount:       s.Decimal(sub, t.L("taxable_amount"), "taxable_amount"),
			TaxAmount:           s.Decimal(sub, t.L("tax_amount"), "tax_amount"),
			CategoryCode:        s.String(sub, t.L("category_code")),
			Percent:             s.OptDecimal(sub, t.L("percent"), "percent"),
			CurrencyCode:        subCurrency,
			ExemptionReason:     s.OptString(sub, t.L("exemption_reason")),
			ExemptionReasonCode: s.OptString(sub, t.L("exemption_reason_code")),
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
	}
}

func readLineItem(s *xmlio.Scanner, node *etree.Element) model.LineItem {
	l := lineTable
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
		}
		if tax := xmlpath.Find(node, l.L("item_tax")); tax != nil {
			li.Item.TaxCategory = s.OptString(tax, itemTaxTable.L("tax_category"))
			li.Item.TaxPercent = s.OptDecimal(tax, itemTaxTable.L("tax_percent"), "item.tax_percent")
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
