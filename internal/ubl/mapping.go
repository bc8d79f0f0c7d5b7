package ubl

import "github.com/rezonia/einvoice/internal/xmlpath"

// UBL 2.1 namespaces
const (
	NamespaceInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	NamespaceCAC        = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC        = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

var ns = xmlpath.Namespaces{
	"cac": NamespaceCAC,
	"cbc": NamespaceCBC,
}

// grammar holds what differs between the Invoice and CreditNote documents
type grammar struct {
	root      string
	namespace string
	header    xmlpath.Table
	line      xmlpath.Table
}

func headerTable(typeCode, line string) xmlpath.Table {
	return xmlpath.NewTable("header", ns, map[string]string{
		"customization_id":     "cbc:CustomizationID",
		"profile_id":           "cbc:ProfileID",
		"number":               "cbc:ID",
		"issue_date":           "cbc:IssueDate",
		"due_date":             "cbc:DueDate",
		"type_code":            typeCode,
		"note":                 "cbc:Note",
		"currency_code":        "cbc:DocumentCurrencyCode",
		"buyer_reference":      "cbc:BuyerReference",
		"seller":               "cac:AccountingSupplierParty/cac:Party",
		"buyer":                "cac:AccountingCustomerParty/cac:Party",
		"delivery_date":        "cac:Delivery/cbc:ActualDeliveryDate",
		"payment_instructions": "cac:PaymentMeans",
		"payment_note":         "cac:PaymentTerms/cbc:Note",
		"allowance_charges":    "cac:AllowanceCharge",
		"tax_breakdown":        "cac:TaxTotal",
		"monetary_totals":      "cac:LegalMonetaryTotal",
		"line_items":           line,
	})
}

func lineTable(quantity string) xmlpath.Table {
	return xmlpath.NewTable("line", ns, map[string]string{
		"id":                    "cbc:ID",
		"note":                  "cbc:Note",
		"invoiced_quantity":     quantity,
		"unit_code":             quantity + "/@unitCode",
		"line_extension_amount": "cbc:LineExtensionAmount",
		"item":                  "cac:Item",
		"price":                 "cac:Price",
	})
}

var (
	invoiceGrammar = grammar{
		root:      "Invoice",
		namespace: NamespaceInvoice,
		header:    headerTable("cbc:InvoiceTypeCode", "cac:InvoiceLine"),
		line:      lineTable("cbc:InvoicedQuantity"),
	}

	creditNoteGrammar = grammar{
		root:      "CreditNote",
		namespace: NamespaceCreditNote,
		header:    headerTable("cbc:CreditNoteTypeCode", "cac:CreditNoteLine"),
		line:      lineTable("cbc:CreditedQuantity"),
	}
)

// Party (BG-4 / BG-7). The SEPA creditor reference (BT-90) is carried as a
// seller party identification and bridged into the payment instructions.
var partyTable = xmlpath.NewTable("party", ns, map[string]string{
	"name":                      "cac:PartyLegalEntity/cbc:RegistrationName",
	"trading_name":              "cac:PartyName/cbc:Name",
	"identifier":                "cac:PartyIdentification/cbc:ID[@schemeID!='SEPA']",
	"creditor_reference_id":     "cac:PartyIdentification/cbc:ID[@schemeID='SEPA']",
	"legal_registration_id":     "cac:PartyLegalEntity/cbc:CompanyID",
	"legal_form":                "cac:PartyLegalEntity/cbc:CompanyLegalForm",
	"vat_identifier":            "cac:PartyTaxScheme[cac:TaxScheme/cbc:ID='VAT']/cbc:CompanyID",
	"electronic_address":        "cbc:EndpointID",
	"electronic_address_scheme": "cbc:EndpointID/@schemeID",
	"postal_address":            "cac:PostalAddress",
	"contact":                   "cac:Contact",
})

// PostalAddress (BG-5 / BG-8)
var addressTable = xmlpath.NewTable("address", ns, map[string]string{
	"street_name":  "cbc:StreetName",
	"city_name":    "cbc:CityName",
	"postal_zone":  "cbc:PostalZone",
	"country_code": "cac:Country/cbc:IdentificationCode",
})

// Contact (BG-6 / BG-9)
var contactTable = xmlpath.NewTable("contact", ns, map[string]string{
	"name":      "cbc:Name",
	"telephone": "cbc:Telephone",
	"email":     "cbc:ElectronicMail",
})

// PaymentMeans (BG-16, BG-17, BG-18, BG-19)
var paymentTable = xmlpath.NewTable("payment", ns, map[string]string{
	"payment_means_code": "cbc:PaymentMeansCode",
	"payment_id":         "cbc:PaymentID",
	"card":               "cac:CardAccount",
	"card_account_id":    "cac:CardAccount/cbc:PrimaryAccountNumberID",
	"card_network_id":    "cac:CardAccount/cbc:NetworkID",
	"card_holder_name":   "cac:CardAccount/cbc:HolderName",
	"account_id":         "cac:PayeeFinancialAccount/cbc:ID",
	"mandate":            "cac:PaymentMandate",
	"mandate_reference":  "cac:PaymentMandate/cbc:ID",
	"debited_account_id": "cac:PaymentMandate/cac:PayerFinancialAccount/cbc:ID",
})

// TaxTotal
var taxTotalTable = xmlpath.NewTable("tax_total", ns, map[string]string{
	"tax_amount":    "cbc:TaxAmount",
	"currency_code": "cbc:TaxAmount/@currencyID",
	"subtotals":     "cac:TaxSubtotal",
})

// TaxSubtotal (BG-23)
var taxSubtotalTable = xmlpath.NewTable("tax_subtotal", ns, map[string]string{
	"taxable_amount":        "cbc:TaxableAmount",
	"tax_amount":            "cbc:TaxAmount",
	"currency_code":         "cbc:TaxableAmount/@currencyID",
	"category_code":         "cac:TaxCategory/cbc:ID",
	"percent":               "cac:TaxCategory/cbc:Percent",
	"exemption_reason_code": "cac:TaxCategory/cbc:TaxExemptionReasonCode",
	"exemption_reason":      "cac:TaxCategory/cbc:TaxExemptionReason",
	"tax_scheme":            "cac:TaxCategory/cac:TaxScheme/cbc:ID",
})

// LegalMonetaryTotal (BG-22)
var totalsTable = xmlpath.NewTable("totals", ns, map[string]string{
	"line_extension_amount":   "cbc:LineExtensionAmount",
	"tax_exclusive_amount":    "cbc:TaxExclusiveAmount",
	"tax_inclusive_amount":    "cbc:TaxInclusiveAmount",
	"allowance_total_amount":  "cbc:AllowanceTotalAmount",
	"charge_total_amount":     "cbc:ChargeTotalAmount",
	"prepaid_amount":          "cbc:PrepaidAmount",
	"payable_rounding_amount": "cbc:PayableRoundingAmount",
	"payable_amount":          "cbc:PayableAmount",
	"currency_code":           "cbc:PayableAmount/@currencyID",
})

// AllowanceCharge (BG-20 / BG-21)
var allowanceChargeTable = xmlpath.NewTable("allowance_charge", ns, map[string]string{
	"charge_indicator":  "cbc:ChargeIndicator",
	"reason_code":       "cbc:AllowanceChargeReasonCode",
	"reason":            "cbc:AllowanceChargeReason",
	"multiplier_factor": "cbc:MultiplierFactorNumeric",
	"amount":            "cbc:Amount",
	"currency_code":     "cbc:Amount/@currencyID",
	"base_amount":       "cbc:BaseAmount",
	"tax_category_code": "cac:TaxCategory/cbc:ID",
	"tax_percent":       "cac:TaxCategory/cbc:Percent",
	"tax_scheme":        "cac:TaxCategory/cac:TaxScheme/cbc:ID",
})

// Item (BG-31)
var itemTable = xmlpath.NewTable("item", ns, map[string]string{
	"description":          "cbc:Description",
	"name":                 "cbc:Name",
	"sellers_identifier":   "cac:SellersItemIdentification/cbc:ID",
	"classification_codes": "cac:CommodityClassification",
	"tax_category":         "cac:ClassifiedTaxCategory/cbc:ID",
	"tax_percent":          "cac:ClassifiedTaxCategory/cbc:Percent",
	"tax_scheme":           "cac:ClassifiedTaxCategory/cac:TaxScheme/cbc:ID",
})

// Item classification (BT-158)
var classificationTable = xmlpath.NewTable("classification", ns, map[string]string{
	"code":            "cbc:ItemClassificationCode",
	"list_id":         "cbc:ItemClassificationCode/@listID",
	"list_version_id": "cbc:ItemClassificationCode/@listVersionID",
})

// Price (BG-29)
var priceTable = xmlpath.NewTable("price", ns, map[string]string{
	"amount":             "cbc:PriceAmount",
	"base_quantity":      "cbc:BaseQuantity",
	"base_quantity_unit": "cbc:BaseQuantity/@unitCode",
})

// amountCurrency selects the currency attribute every UBL amount carries
var amountCurrency = xmlpath.MustCompile(ns, "cbc:Amount/@currencyID")

// taxSchemeVAT is the only tax scheme EN 16931 knows
const taxSchemeVAT = "VAT"
