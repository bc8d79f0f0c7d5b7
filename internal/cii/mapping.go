package cii

import "github.com/rezonia/einvoice/internal/xmlpath"

// UN/CEFACT CII D16B namespaces
const (
	NamespaceRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NamespaceUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NamespaceQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
)

// RootElement is the single root used by every document variant
const RootElement = "CrossIndustryInvoice"

var ns = xmlpath.Namespaces{
	"rsm": NamespaceRSM,
	"ram": NamespaceRAM,
	"udt": NamespaceUDT,
	"qdt": NamespaceQDT,
}

// Top level blocks below the root
var rootTable = xmlpath.NewTable("root", ns, map[string]string{
	"context":     "rsm:ExchangedDocumentContext",
	"document":    "rsm:ExchangedDocument",
	"transaction": "rsm:SupplyChainTradeTransaction",
})

var contextTable = xmlpath.NewTable("context", ns, map[string]string{
	"profile_id":       "ram:BusinessProcessSpecifiedDocumentContextParameter/ram:ID",
	"customization_id": "ram:GuidelineSpecifiedDocumentContextParameter/ram:ID",
})

var documentTable = xmlpath.NewTable("document", ns, map[string]string{
	"number":     "ram:ID",
	"type_code":  "ram:TypeCode",
	"issue_date": "ram:IssueDateTime/udt:DateTimeString",
	"note":       "ram:IncludedNote/ram:Content",
})

var transactionTable = xmlpath.NewTable("transaction", ns, map[string]string{
	"line_items": "ram:IncludedSupplyChainTradeLineItem",
	"agreement":  "ram:ApplicableHeaderTradeAgreement",
	"delivery":   "ram:ApplicableHeaderTradeDelivery",
	"settlement": "ram:ApplicableHeaderTradeSettlement",
})

var agreementTable = xmlpath.NewTable("agreement", ns, map[string]string{
	"buyer_reference": "ram:BuyerReference",
	"seller":          "ram:SellerTradeParty",
	"buyer":           "ram:BuyerTradeParty",
})

// Delivery (BG-13)
var deliveryTable = xmlpath.NewTable("delivery", ns, map[string]string{
	"delivery_date": "ram:ActualDeliverySupplyChainEvent/ram:OccurrenceDateTime/udt:DateTimeString",
})

// Header settlement. The SEPA creditor reference, the payment reference,
// the payment terms and the mandate live here rather than on the means.
var settlementTable = xmlpath.NewTable("settlement", ns, map[string]string{
	"creditor_reference_id": "ram:CreditorReferenceID",
	"payment_id":            "ram:PaymentReference",
	"currency_code":         "ram:InvoiceCurrencyCode",
	"payment_instructions":  "ram:SpecifiedTradeSettlementPaymentMeans",
	"tax_subtotals":         "ram:ApplicableTradeTax",
	"allowance_charges":     "ram:SpecifiedTradeAllowanceCharge",
	"payment_note":          "ram:SpecifiedTradePaymentTerms/ram:Description",
	"due_date":              "ram:SpecifiedTradePaymentTerms/ram:DueDateDateTime/udt:DateTimeString",
	"mandate_reference":     "ram:SpecifiedTradePaymentTerms/ram:DirectDebitMandateID",
	"monetary_totals":       "ram:SpecifiedTradeSettlementHeaderMonetarySummation",
})

// TradeParty (BG-4 / BG-7)
var partyTable = xmlpath.NewTable("party", ns, map[string]string{
	"identifier":                "ram:ID",
	"name":                      "ram:Name",
	"legal_form":                "ram:Description",
	"legal_registration_id":     "ram:SpecifiedLegalOrganization/ram:ID",
	"trading_name":              "ram:SpecifiedLegalOrganization/ram:TradingBusinessName",
	"contact":                   "ram:DefinedTradeContact",
	"postal_address":            "ram:PostalTradeAddress",
	"electronic_address":        "ram:URIUniversalCommunication/ram:URIID",
	"electronic_address_scheme": "ram:URIUniversalCommunication/ram:URIID/@schemeID",
	"vat_identifier":            "ram:SpecifiedTaxRegistration/ram:ID[@schemeID='VA']",
})

// PostalTradeAddress (BG-5 / BG-8)
var addressTable = xmlpath.NewTable("address", ns, map[string]string{
	"postal_zone":  "ram:PostcodeCode",
	"street_name":  "ram:LineOne",
	"city_name":    "ram:CityName",
	"country_code": "ram:CountryID",
})

// DefinedTradeContact (BG-6 / BG-9)
var contactTable = xmlpath.NewTable("contact", ns, map[string]string{
	"name":      "ram:PersonName",
	"telephone": "ram:TelephoneUniversalCommunication/ram:CompleteNumber",
	"email":     "ram:EmailURIUniversalCommunication/ram:URIID",
})

// SpecifiedTradeSettlementPaymentMeans (BG-16, BG-17, BG-18, BG-19)
var paymentTable = xmlpath.NewTable("payment", ns, map[string]string{
	"payment_means_code": "ram:TypeCode",
	"card":               "ram:ApplicableTradeSettlementFinancialCard",
	"card_account_id":    "ram:ApplicableTradeSettlementFinancialCard/ram:ID",
	"card_holder_name":   "ram:ApplicableTradeSettlementFinancialCard/ram:CardholderName",
	"debited_account_id": "ram:PayerPartyDebtorFinancialAccount/ram:IBANID",
	"account_id":         "ram:PayeePartyCreditorFinancialAccount/ram:IBANID",
})

// ApplicableTradeTax (BG-23)
var taxTable = xmlpath.NewTable("tax", ns, map[string]string{
	"tax_amount":            "ram:CalculatedAmount",
	"type_code":             "ram:TypeCode",
	"exemption_reason":      "ram:ExemptionReason",
	"taxable_amount":        "ram:BasisAmount",
	"category_code":         "ram:CategoryCode",
	"exemption_reason_code": "ram:ExemptionReasonCode",
	"percent":               "ram:RateApplicablePercent",
})

// SpecifiedTradeSettlementHeaderMonetarySummation (BG-22)
var totalsTable = xmlpath.NewTable("totals", ns, map[string]string{
	"line_extension_amount":   "ram:LineTotalAmount",
	"charge_total_amount":     "ram:ChargeTotalAmount",
	"allowance_total_amount":  "ram:AllowanceTotalAmount",
	"tax_exclusive_amount":    "ram:TaxBasisTotalAmount",
	"tax_total_amount":        "ram:TaxTotalAmount",
	"tax_total_currency":      "ram:TaxTotalAmount/@currencyID",
	"tax_inclusive_amount":    "ram:GrandTotalAmount",
	"payable_rounding_amount": "ram:RoundingAmount",
	"prepaid_amount":          "ram:TotalPrepaidAmount",
	"payable_amount":          "ram:DuePayableAmount",
})

// SpecifiedTradeAllowanceCharge (BG-20 / BG-21)
var allowanceChargeTable = xmlpath.NewTable("allowance_charge", ns, map[string]string{
	"charge_indicator":  "ram:ChargeIndicator/udt:Indicator",
	"multiplier_factor": "ram:CalculationPercent",
	"base_amount":       "ram:BasisAmount",
	"amount":            "ram:ActualAmount",
	"reason_code":       "ram:ReasonCode",
	"reason":            "ram:Reason",
	"tax_type_code":     "ram:CategoryTradeTax/ram:TypeCode",
	"tax_category_code": "ram:CategoryTradeTax/ram:CategoryCode",
	"tax_percent":       "ram:CategoryTradeTax/ram:RateApplicablePercent",
})

// IncludedSupplyChainTradeLineItem (BG-25)
var lineTable = xmlpath.NewTable("line", ns, map[string]string{
	"id":                    "ram:AssociatedDocumentLineDocument/ram:LineID",
	"note":                  "ram:AssociatedDocumentLineDocument/ram:IncludedNote/ram:Content",
	"item":                  "ram:SpecifiedTradeProduct",
	"agreement":             "ram:SpecifiedLineTradeAgreement",
	"price":                 "ram:SpecifiedLineTradeAgreement/ram:NetPriceProductTradePrice",
	"invoiced_quantity":     "ram:SpecifiedLineTradeDelivery/ram:BilledQuantity",
	"unit_code":             "ram:SpecifiedLineTradeDelivery/ram:BilledQuantity/@unitCode",
	"settlement":            "ram:SpecifiedLineTradeSettlement",
	"item_tax":              "ram:SpecifiedLineTradeSettlement/ram:ApplicableTradeTax",
	"line_extension_amount": "ram:SpecifiedLineTradeSettlement/ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount",
})

// SpecifiedTradeProduct (BG-31)
var itemTable = xmlpath.NewTable("item", ns, map[string]string{
	"sellers_identifier":   "ram:SellerAssignedID",
	"name":                 "ram:Name",
	"description":          "ram:Description",
	"classification_codes": "ram:DesignatedProductClassification",
})

// Item classification (BT-158)
var classificationTable = xmlpath.NewTable("classification", ns, map[string]string{
	"code":            "ram:ClassCode",
	"list_id":         "ram:ClassCode/@listID",
	"list_version_id": "ram:ClassCode/@listVersionID",
})

// Line level tax. The item VAT category is carried by the line settlement,
// not by the product.
var itemTaxTable = xmlpath.NewTable("item_tax", ns, map[string]string{
	"type_code":    "ram:TypeCode",
	"tax_category": "ram:CategoryCode",
	"tax_percent":  "ram:RateApplicablePercent",
})

// NetPriceProductTradePrice (BG-29)
var priceTable = xmlpath.NewTable("price", ns, map[string]string{
	"amount":             "ram:ChargeAmount",
	"base_quantity":      "ram:BasisQuantity",
	"base_quantity_unit": "ram:BasisQuantity/@unitCode",
})

const (
	// dateFormat is the UNTDID 2379 code for CCYYMMDD
	dateFormat     = "102"
	dateLayout     = "20060102"
	dateFormatAttr = "format"

	taxTypeVAT = "VAT"
)
