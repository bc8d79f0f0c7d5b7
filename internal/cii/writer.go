package cii

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/xmlio"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// Writer serializes documents as CII D16B CrossIndustryInvoice
type Writer struct {
	emit   xmlio.Emitter
	indent int
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithAmountPrecision pads currency amounts to at least n fractional digits
func WithAmountPrecision(n int) WriterOption {
	return func(w *Writer) {
		w.emit.AmountScale = n
	}
}

// WithIndent sets the indentation width; 0 writes a single line
func WithIndent(n int) WriterOption {
	return func(w *Writer) {
		w.indent = n
	}
}

// NewWriter creates a CII writer
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{indent: 2}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write serializes doc
func (w *Writer) Write(doc *model.Document) ([]byte, error) {
	if doc == nil {
		return nil, model.NewValidationError("document", nil, "required", "document is nil")
	}
	if !doc.TypeCode.Valid() {
		return nil, model.NewValidationError("type_code", string(doc.TypeCode), "enum", "unsupported document type code")
	}

	out := xmlio.NewDocument()
	root := out.CreateElement("rsm:" + RootElement)
	root.CreateAttr("xmlns:rsm", NamespaceRSM)
	root.CreateAttr("xmlns:ram", NamespaceRAM)
	root.CreateAttr("xmlns:qdt", NamespaceQDT)
	root.CreateAttr("xmlns:udt", NamespaceUDT)

	w.writeContext(xmlpath.Append(root, rootTable.L("context")), doc)
	w.writeExchangedDocument(xmlpath.Append(root, rootTable.L("document")), doc)
	w.writeTransaction(xmlpath.Append(root, rootTable.L("transaction")), doc)

	return xmlio.Serialize(out, w.indent)
}

func (w *Writer) writeContext(node *etree.Element, doc *model.Document) {
	c := contextTable
	w.emit.OptText(node, c.L("profile_id"), doc.ProfileID)
	w.emit.OptText(node, c.L("customization_id"), doc.CustomizationID)
}

func (w *Writer) writeExchangedDocument(node *etree.Element, doc *model.Document) {
	d, e := documentTable, w.emit
	e.Text(node, d.L("number"), doc.Number)
	e.Text(node, d.L("type_code"), string(doc.TypeCode))
	w.date(node, d.L("issue_date"), doc.IssueDate)
	e.OptText(node, d.L("note"), doc.Note)
}

func (w *Writer) writeTransaction(node *etree.Element, doc *model.Document) {
	t := transactionTable

	for _, li := range doc.LineItems {
		w.writeLineItem(xmlpath.Append(node, t.L("line_items")), li)
	}

	agreement := xmlpath.Append(node, t.L("agreement"))
	w.emit.OptText(agreement, agreementTable.L("buyer_reference"), doc.BuyerReference)
	if doc.Seller != nil {
		w.writeParty(xmlpath.Append(agreement, agreementTable.L("seller")), doc.Seller)
	}
	if doc.Buyer != nil {
		w.writeParty(xmlpath.Append(agreement, agreementTable.L("buyer")), doc.Buyer)
	}

	delivery := xmlpath.Append(node, t.L("delivery"))
	if doc.DeliveryDate != nil {
		w.date(delivery, deliveryTable.L("delivery_date"), *doc.DeliveryDate)
	}

	w.writeSettlement(xmlpath.Append(node, t.L("settlement")), doc)
}

func (w *Writer) writeParty(node *etree.Element, party *model.TradeParty) {
	p, e := partyTable, w.emit

	e.OptText(node, p.L("identifier"), party.Identifier)
	e.Text(node, p.L("name"), party.Name)
	e.OptText(node, p.L("legal_form"), party.LegalForm)
	e.OptText(node, p.L("legal_registration_id"), party.LegalRegistrationID)
	e.OptText(node, p.L("trading_name"), party.TradingName)

	if c := party.Contact; !c.IsEmpty() {
		ct := contactTable
		cn := xmlpath.Append(node, p.L("contact"))
		e.OptText(cn, ct.L("name"), c.Name)
		e.OptText(cn, ct.L("telephone"), c.Telephone)
		e.OptText(cn, ct.L("email"), c.Email)
	}

	if addr := party.PostalAddress; addr != nil {
		a := addressTable
		an := xmlpath.Append(node, p.L("postal_address"))
		e.OptText(an, a.L("postal_zone"), addr.PostalZone)
		e.OptText(an, a.L("street_name"), addr.StreetName)
		e.OptText(an, a.L("city_name"), addr.CityName)
		e.Text(an, a.L("country_code"), addr.CountryCode)
	}

	if party.ElectronicAddress != nil {
		el := e.Text(node, p.L("electronic_address"), *party.ElectronicAddress)
		xmlio.SetOptAttr(el, p.L("electronic_address_scheme"), party.ElectronicAddressScheme)
	}

	e.OptText(node, p.L("vat_identifier"), party.VATIdentifier)
}

func (w *Writer) writeSettlement(node *etree.Element, doc *model.Document) {
	st, e := settlementTable, w.emit
	pi := doc.PaymentInstructions

	if pi != nil {
		e.OptText(node, st.L("creditor_reference_id"), pi.CreditorReferenceID)
		e.OptText(node, st.L("payment_id"), pi.PaymentID)
	}
	e.Text(node, st.L("currency_code"), doc.CurrencyCode)

	if pi != nil {
		w.writePaymentMeans(xmlpath.Append(node, st.L("payment_instructions")), pi)
	}

	if doc.TaxBreakdown != nil {
		for _, sub := range doc.TaxBreakdown.Subtotals {
			w.writeTradeTax(xmlpath.Append(node, st.L("tax_subtotals")), sub)
		}
	}

	for _, ac := range doc.AllowanceCharges {
		w.writeAllowanceCharge(xmlpath.Append(node, st.L("allowance_charges")), ac)
	}

	// payment terms share one SpecifiedTradePaymentTerms element
	if pi != nil {
		e.OptText(node, st.L("payment_note"), pi.Note)
	}
	if doc.DueDate != nil {
		w.date(node, st.L("due_date"), *doc.DueDate)
	}
	if pi != nil {
		e.OptText(node, st.L("mandate_reference"), pi.MandateReference)
	}

	if doc.MonetaryTotals != nil {
		w.writeMonetaryTotals(xmlpath.Append(node, st.L("monetary_totals")), doc)
	}
}

func (w *Writer) writePaymentMeans(node *etree.Element, pi *model.PaymentInstructions) {
	p, e := paymentTable, w.emit

	e.Text(node, p.L("payment_means_code"), pi.PaymentMeansCode)
	if pi.HasCard() {
		xmlpath.Append(node, p.L("card"))
		e.Text(node, p.L("card_account_id"), *pi.CardAccountID)
		e.OptText(node, p.L("card_holder_name"), pi.CardHolderName)
	}
	e.OptText(node, p.L("debited_account_id"), pi.DebitedAccountID)
	e.OptText(node, p.L("account_id"), pi.AccountID)
}

func (w *Writer) writeTradeTax(node *etree.Element, sub model.TaxSubtotal) {
	t, e := taxTable, w.emit

	e.Amount(node, t.L("tax_amount"), sub.TaxAmount)
	e.Text(node, t.L("type_code"), taxTypeVAT)
	e.OptText(node, t.L("exemption_reason"), sub.ExemptionReason)
	e.Amount(node, t.L("taxable_amount"), sub.TaxableAmount)
	e.Text(node, t.L("category_code"), sub.CategoryCode)
	e.OptText(node, t.L("exemption_reason_code"), sub.ExemptionReasonCode)
	e.OptNumber(node, t.L("percent"), sub.Percent)
}

func (w *Writer) writeAllowanceCharge(node *etree.Element, ac model.AllowanceCharge) {
	t, e := allowanceChargeTable, w.emit

	e.Text(node, t.L("charge_indicator"), strconv.FormatBool(ac.ChargeIndicator))
	e.OptNumber(node, t.L("multiplier_factor"), ac.MultiplierFactor)
	e.OptAmount(node, t.L("base_amount"), ac.BaseAmount)
	e.Amount(node, t.L("amount"), ac.Amount)
	e.OptText(node, t.L("reason_code"), ac.ReasonCode)
	e.OptText(node, t.L("reason"), ac.Reason)

	if ac.TaxCategoryCode != nil {
		e.Text(node, t.L("tax_type_code"), taxTypeVAT)
		e.Text(node, t.L("tax_category_code"), *ac.TaxCategoryCode)
		e.OptNumber(node, t.L("tax_percent"), ac.TaxPercent)
	}
}

func (w *Writer) writeMonetaryTotals(node *etree.Element, doc *model.Document) {
	t, e := totalsTable, w.emit
	mt := doc.MonetaryTotals

	e.Amount(node, t.L("line_extension_amount"), mt.LineExtensionAmount)
	e.OptAmount(node, t.L("charge_total_amount"), mt.ChargeTotalAmount)
	e.OptAmount(node, t.L("allowance_total_amount"), mt.AllowanceTotalAmount)
	e.Amount(node, t.L("tax_exclusive_amount"), mt.TaxExclusiveAmount)
	if tb := doc.TaxBreakdown; tb != nil {
		el := e.Amount(node, t.L("tax_total_amount"), tb.TaxAmount)
		xmlio.SetAttr(el, t.L("tax_total_currency"), xmlio.FirstNonEmpty(tb.CurrencyCode, doc.CurrencyCode))
	}
	e.OptAmount(node, t.L("payable_rounding_amount"), mt.PayableRoundingAmount)
	e.Amount(node, t.L("tax_inclusive_amount"), mt.TaxInclusiveAmount)
	e.OptAmount(node, t.L("prepaid_amount"), mt.PrepaidAmount)
	e.Amount(node, t.L("payable_amount"), mt.PayableAmount)
}

func (w *Writer) writeLineItem(node *etree.Element, li model.LineItem) {
	l, e := lineTable, w.emit

	e.Text(node, l.L("id"), li.ID)
	e.OptText(node, l.L("note"), li.Note)

	if item := li.Item; item != nil {
		it := itemTable
		in := xmlpath.Append(node, l.L("item"))
		e.OptText(in, it.L("sellers_identifier"), item.SellersIdentifier)
		e.Text(in, it.L("name"), item.Name)
		e.OptText(in, it.L("description"), item.Description)

		c := classificationTable
		for _, cc := range item.ClassificationCodes {
			cn := xmlpath.Append(in, it.L("classification_codes"))
			el := e.Text(cn, c.L("code"), cc.Code)
			xmlio.SetOptAttr(el, c.L("list_id"), cc.ListID)
			xmlio.SetOptAttr(el, c.L("list_version_id"), cc.ListVersionID)
		}
	}

	// the line agreement is mandatory even without a price
	xmlpath.Append(node, l.L("agreement"))
	if price := li.Price; price != nil {
		p := priceTable
		pn := xmlpath.Ensure(node, l.L("price"))
		e.Amount(pn, p.L("amount"), price.Amount)
		el := e.OptNumber(pn, p.L("base_quantity"), price.BaseQuantity)
		xmlio.SetOptAttr(el, p.L("base_quantity_unit"), price.BaseQuantityUnit)
	}

	qty := e.Number(node, l.L("invoiced_quantity"), li.InvoicedQuantity)
	xmlio.SetAttr(qty, l.L("unit_code"), li.UnitCode)

	xmlpath.Append(node, l.L("settlement"))
	if item := li.Item; item != nil && item.TaxCategory != nil {
		tn := xmlpath.Ensure(node, l.L("item_tax"))
		e.Text(tn, itemTaxTable.L("type_code"), taxTypeVAT)
		e.Text(tn, itemTaxTable.L("tax_category"), *item.TaxCategory)
		e.OptNumber(tn, itemTaxTable.L("tax_percent"), item.TaxPercent)
	}
	e.Amount(node, l.L("line_extension_amount"), li.LineExtensionAmount)
}

// date writes t as a format 102 DateTimeString
func (w *Writer) date(parent *etree.Element, l xmlpath.Locator, t time.Time) {
	el := w.emit.Text(parent, l, t.Format(dateLayout))
	el.CreateAttr(dateFormatAttr, dateFormat)
}
