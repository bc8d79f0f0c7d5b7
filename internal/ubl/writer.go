package ubl

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/xmlio"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// Writer serializes documents as UBL 2.1
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

// NewWriter creates a UBL writer
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{indent: 2}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write serializes doc. The root element and line grammar follow the
// document variant: credit notes are written as CreditNote documents.
func (w *Writer) Write(doc *model.Document) ([]byte, error) {
	if doc == nil {
		return nil, model.NewValidationError("document", nil, "required", "document is nil")
	}
	if !doc.TypeCode.Valid() {
		return nil, model.NewValidationError("type_code", string(doc.TypeCode), "enum", "unsupported document type code")
	}

	g := invoiceGrammar
	if doc.IsCreditNote() {
		g = creditNoteGrammar
	}

	out := xmlio.NewDocument()
	root := out.CreateElement(g.root)
	root.CreateAttr("xmlns", g.namespace)
	root.CreateAttr("xmlns:cac", NamespaceCAC)
	root.CreateAttr("xmlns:cbc", NamespaceCBC)

	w.writeDocument(root, g, doc)

	return xmlio.Serialize(out, w.indent)
}

func (w *Writer) writeDocument(root *etree.Element, g grammar, doc *model.Document) {
	h, e := g.header, w.emit
	currency := doc.CurrencyCode

	e.OptText(root, h.L("customization_id"), doc.CustomizationID)
	e.OptText(root, h.L("profile_id"), doc.ProfileID)
	e.Text(root, h.L("number"), doc.Number)
	e.Text(root, h.L("issue_date"), doc.IssueDate.Format(xmlio.ISODate))
	if doc.DueDate != nil {
		e.Text(root, h.L("due_date"), doc.DueDate.Format(xmlio.ISODate))
	}
	e.Text(root, h.L("type_code"), string(doc.TypeCode))
	e.OptText(root, h.L("note"), doc.Note)
	e.Text(root, h.L("currency_code"), currency)
	e.OptText(root, h.L("buyer_reference"), doc.BuyerReference)

	if doc.Seller != nil {
		var creditorRef *string
		if doc.PaymentInstructions != nil {
			creditorRef = doc.PaymentInstructions.CreditorReferenceID
		}
		w.writeParty(xmlpath.Append(root, h.L("seller")), doc.Seller, creditorRef)
	}
	if doc.Buyer != nil {
		w.writeParty(xmlpath.Append(root, h.L("buyer")), doc.Buyer, nil)
	}

	if doc.DeliveryDate != nil {
		e.Text(root, h.L("delivery_date"), doc.DeliveryDate.Format(xmlio.ISODate))
	}

	if pi := doc.PaymentInstructions; pi != nil {
		w.writePaymentMeans(xmlpath.Append(root, h.L("payment_instructions")), pi)
		if pi.Note != nil {
			xmlpath.EmitNew(root, h.L("payment_note"), *pi.Note)
		}
	}

	for _, ac := range doc.AllowanceCharges {
		w.writeAllowanceCharge(xmlpath.Append(root, h.L("allowance_charges")), ac, currency)
	}

	if doc.TaxBreakdown != nil {
		w.writeTaxTotal(xmlpath.Append(root, h.L("tax_breakdown")), doc.TaxBreakdown, currency)
	}

	if doc.MonetaryTotals != nil {
		w.writeMonetaryTotals(xmlpath.Append(root, h.L("monetary_totals")), doc.MonetaryTotals, currency)
	}

	for _, li := range doc.LineItems {
		w.writeLineItem(xmlpath.Append(root, h.L("line_items")), g, li, currency)
	}
}

func (w *Writer) writeParty(node *etree.Element, party *model.TradeParty, creditorRef *string) {
	p, e := partyTable, w.emit

	if party.ElectronicAddress != nil {
		el := e.Text(node, p.L("electronic_address"), *party.ElectronicAddress)
		xmlio.SetOptAttr(el, p.L("electronic_address_scheme"), party.ElectronicAddressScheme)
	}

	if party.Identifier != nil {
		xmlpath.EmitNew(node, p.L("identifier"), *party.Identifier)
	}
	if creditorRef != nil {
		xmlpath.EmitNew(node, p.L("creditor_reference_id"), *creditorRef)
	}

	e.OptText(node, p.L("trading_name"), party.TradingName)

	if addr := party.PostalAddress; addr != nil {
		a := addressTable
		an := xmlpath.Append(node, p.L("postal_address"))
		e.OptText(an, a.L("street_name"), addr.StreetName)
		e.OptText(an, a.L("city_name"), addr.CityName)
		e.OptText(an, a.L("postal_zone"), addr.PostalZone)
		e.Text(an, a.L("country_code"), addr.CountryCode)
	}

	e.OptText(node, p.L("vat_identifier"), party.VATIdentifier)

	// PartyLegalEntity is mandatory because it carries the party name
	e.Text(node, p.L("name"), party.Name)
	e.OptText(node, p.L("legal_registration_id"), party.LegalRegistrationID)
	e.OptText(node, p.L("legal_form"), party.LegalForm)

	if c := party.Contact; !c.IsEmpty() {
		ct := contactTable
		cn := xmlpath.Append(node, p.L("contact"))
		e.OptText(cn, ct.L("name"), c.Name)
		e.OptText(cn, ct.L("telephone"), c.Telephone)
		e.OptText(cn, ct.L("email"), c.Email)
	}
}

func (w *Writer) writePaymentMeans(node *etree.Element, pi *model.PaymentInstructions) {
	p, e := paymentTable, w.emit

	e.Text(node, p.L("payment_means_code"), pi.PaymentMeansCode)
	e.OptText(node, p.L("payment_id"), pi.PaymentID)

	if pi.HasCard() {
		xmlpath.Append(node, p.L("card"))
		e.Text(node, p.L("card_account_id"), *pi.CardAccountID)
		e.OptText(node, p.L("card_network_id"), pi.CardNetworkID)
		e.OptText(node, p.L("card_holder_name"), pi.CardHolderName)
	}

	e.OptText(node, p.L("account_id"), pi.AccountID)

	if pi.HasMandate() {
		xmlpath.Append(node, p.L("mandate"))
		e.OptText(node, p.L("mandate_reference"), pi.MandateReference)
		e.OptText(node, p.L("debited_account_id"), pi.DebitedAccountID)
	}
}

func (w *Writer) writeAllowanceCharge(node *etree.Element, ac model.AllowanceCharge, currency string) {
	t, e := allowanceChargeTable, w.emit
	cur := xmlio.FirstNonEmpty(deref(ac.CurrencyCode), currency)

	e.Text(node, t.L("charge_indicator"), strconv.FormatBool(ac.ChargeIndicator))
	e.OptText(node, t.L("reason_code"), ac.ReasonCode)
	e.OptText(node, t.L("reason"), ac.Reason)
	e.OptNumber(node, t.L("multiplier_factor"), ac.MultiplierFactor)
	xmlio.SetAttr(e.Amount(node, t.L("amount"), ac.Amount), t.L("currency_code"), cur)
	xmlio.SetAttr(e.OptAmount(node, t.L("base_amount"), ac.BaseAmount), t.L("currency_code"), cur)

	if ac.TaxCategoryCode != nil {
		e.Text(node, t.L("tax_category_code"), *ac.TaxCategoryCode)
		e.OptNumber(node, t.L("tax_percent"), ac.TaxPercent)
		e.Text(node, t.L("tax_scheme"), taxSchemeVAT)
	}
}

func (w *Writer) writeTaxTotal(node *etree.Element, tb *model.TaxBreakdown, currency string) {
	t, st, e := taxTotalTable, taxSubtotalTable, w.emit
	totalCur := xmlio.FirstNonEmpty(tb.CurrencyCode, currency)

	xmlio.SetAttr(e.Amount(node, t.L("tax_amount"), tb.TaxAmount), t.L("currency_code"), totalCur)

	for _, sub := range tb.Subtotals {
		sn := xmlpath.Append(node, t.L("subtotals"))
		cur := xmlio.FirstNonEmpty(sub.CurrencyCode, totalCur)

		xmlio.SetAttr(e.Amount(sn, st.L("taxable_amount"), sub.TaxableAmount), st.L("currency_code"), cur)
		xmlio.SetAttr(e.Amount(sn, st.L("tax_amount"), sub.TaxAmount), st.L("currency_code"), cur)
		e.Text(sn, st.L("category_code"), sub.CategoryCode)
		e.OptNumber(sn, st.L("percent"), sub.Percent)
		e.OptText(sn, st.L("exemption_reason_code"), sub.ExemptionReasonCode)
		e.OptText(sn, st.L("exemption_reason"), sub.ExemptionReason)
		e.Text(sn, st.L("tax_scheme"), taxSchemeVAT)
	}
}

func (w *Writer) writeMonetaryTotals(node *etree.Element, mt *model.MonetaryTotals, currency string) {
	t, e := totalsTable, w.emit
	cur := amountCurrency

	xmlio.SetAttr(e.Amount(node, t.L("line_extension_amount"), mt.LineExtensionAmount), cur, currency)
	xmlio.SetAttr(e.Amount(node, t.L("tax_exclusive_amount"), mt.TaxExclusiveAmount), cur, currency)
	xmlio.SetAttr(e.Amount(node, t.L("tax_inclusive_amount"), mt.TaxInclusiveAmount), cur, currency)
	xmlio.SetAttr(e.OptAmount(node, t.L("allowance_total_amount"), mt.AllowanceTotalAmount), cur, currency)
	xmlio.SetAttr(e.OptAmount(node, t.L("charge_total_amount"), mt.ChargeTotalAmount), cur, currency)
	xmlio.SetAttr(e.OptAmount(node, t.L("prepaid_amount"), mt.PrepaidAmount), cur, currency)
	xmlio.SetAttr(e.OptAmount(node, t.L("payable_rounding_amount"), mt.PayableRoundingAmount), cur, currency)
	xmlio.SetAttr(e.Amount(node, t.L("payable_amount"), mt.PayableAmount), cur, currency)
}

func (w *Writer) writeLineItem(node *etree.Element, g grammar, li model.LineItem, currency string) {
	l, e := g.line, w.emit
	cur := amountCurrency

	e.Text(node, l.L("id"), li.ID)
	e.OptText(node, l.L("note"), li.Note)
	xmlio.SetAttr(e.Number(node, l.L("invoiced_quantity"), li.InvoicedQuantity), l.L("unit_code"), li.UnitCode)
	xmlio.SetAttr(e.Amount(node, l.L("line_extension_amount"), li.LineExtensionAmount), cur, currency)

	if item := li.Item; item != nil {
		it := itemTable
		in := xmlpath.Append(node, l.L("item"))
		e.OptText(in, it.L("description"), item.Description)
		e.Text(in, it.L("name"), item.Name)
		e.OptText(in, it.L("sellers_identifier"), item.SellersIdentifier)

		c := classificationTable
		for _, cc := range item.ClassificationCodes {
			cn := xmlpath.Append(in, it.L("classification_codes"))
			el := e.Text(cn, c.L("code"), cc.Code)
			xmlio.SetOptAttr(el, c.L("list_id"), cc.ListID)
			xmlio.SetOptAttr(el, c.L("list_version_id"), cc.ListVersionID)
		}

		if item.TaxCategory != nil {
			e.Text(in, it.L("tax_category"), *item.TaxCategory)
			e.OptNumber(in, it.L("tax_percent"), item.TaxPercent)
			e.Text(in, it.L("tax_scheme"), taxSchemeVAT)
		}
	}

	if price := li.Price; price != nil {
		p := priceTable
		pn := xmlpath.Append(node, l.L("price"))
		xmlio.SetAttr(e.Amount(pn, p.L("amount"), price.Amount), cur, currency)
		el := e.OptNumber(pn, p.L("base_quantity"), price.BaseQuantity)
		xmlio.SetOptAttr(el, p.L("base_quantity_unit"), price.BaseQuantityUnit)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
