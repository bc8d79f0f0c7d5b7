// Package testutil provides canonical documents shared by the codec tests.
package testutil

import (
	"github.com/rezonia/einvoice/internal/model"
)

var d = model.MustDecimal[string]

// ZugpferdInvoice returns a three line invoice with seller, buyer, payment
// instructions, a document level allowance and a 19% VAT breakdown.
func ZugpferdInvoice() *model.Document {
	doc := model.NewInvoice("RE-2024-0042", model.Date(2024, 3, 15))
	doc.DueDate = model.Ptr(model.Date(2024, 4, 14))
	doc.DeliveryDate = model.Ptr(model.Date(2024, 3, 12))
	doc.BuyerReference = model.Ptr("04011000-12345-03")
	doc.CustomizationID = model.Ptr("urn:cen.eu:en16931:2017")
	doc.ProfileID = model.Ptr("urn:fdc:peppol.eu:2017:poacc:billing:01:1.0")
	doc.Note = model.Ptr("Lieferung gemäß Rahmenvertrag")

	doc.Seller = &model.TradeParty{
		Name:                    "Zugpferd GmbH",
		Identifier:              model.Ptr("4000001123452"),
		LegalRegistrationID:     model.Ptr("HRB 12345"),
		VATIdentifier:           model.Ptr("DE123456789"),
		ElectronicAddress:       model.Ptr("rechnung@zugpferd.de"),
		ElectronicAddressScheme: model.Ptr("EM"),
		PostalAddress: &model.PostalAddress{
			CountryCode: "DE",
			StreetName:  model.Ptr("Hauptstraße 1"),
			CityName:    model.Ptr("Berlin"),
			PostalZone:  model.Ptr("10115"),
		},
		Contact: &model.Contact{
			Name:      model.Ptr("Max Mustermann"),
			Telephone: model.Ptr("+49 30 123456"),
			Email:     model.Ptr("max@zugpferd.de"),
		},
	}
	doc.Buyer = &model.TradeParty{
		Name:          "Muster AG",
		VATIdentifier: model.Ptr("DE987654321"),
		PostalAddress: &model.PostalAddress{
			CountryCode: "DE",
			StreetName:  model.Ptr("Marktplatz 5"),
			CityName:    model.Ptr("München"),
			PostalZone:  model.Ptr("80331"),
		},
	}

	doc.AddLineItem(line("1", "10", "HUR", "1500.00", "Beratung", "150.00"))
	doc.AddLineItem(line("2", "5", "C62", "4000.00", "Lizenz", "800.00"))
	doc.AddLineItem(line("3", "1", "C62", "1200.00", "Wartung", "1200.00"))

	doc.TaxBreakdown = model.NewTaxBreakdown(d("1273.00"), "EUR").
		AddSubtotal(model.TaxSubtotal{
			TaxableAmount: d("6700.00"),
			TaxAmount:     d("1273.00"),
			CategoryCode:  "S",
			Percent:       model.Ptr(d("19")),
			CurrencyCode:  "EUR",
		})

	doc.MonetaryTotals = model.NewMonetaryTotals(d("6700.00"), d("6700.00"), d("7973.00"), d("7973.00"))

	doc.PaymentInstructions = &model.PaymentInstructions{
		PaymentMeansCode: "58",
		PaymentID:        model.Ptr("RE-2024-0042"),
		AccountID:        model.Ptr("DE02120300000000202051"),
		Note:             model.Ptr("Zahlbar innerhalb 30 Tagen netto"),
	}

	return doc
}

// CreditNote returns a single line credit note
func CreditNote() *model.Document {
	doc := model.NewCreditNote("GS-2024-0007", model.Date(2024, 5, 2))
	doc.Seller = model.NewTradeParty("Zugpferd GmbH")
	doc.Seller.PostalAddress = model.NewPostalAddress("DE")
	doc.Buyer = model.NewTradeParty("Muster AG")
	doc.Buyer.PostalAddress = model.NewPostalAddress("DE")

	doc.AddLineItem(line("1", "2", "C62", "100.00", "Rückgabe", "50.00"))

	doc.TaxBreakdown = model.NewTaxBreakdown(d("19.00"), "EUR").
		AddSubtotal(model.TaxSubtotal{
			TaxableAmount: d("100.00"),
			TaxAmount:     d("19.00"),
			CategoryCode:  "S",
			Percent:       model.Ptr(d("19")),
			CurrencyCode:  "EUR",
		})
	doc.MonetaryTotals = model.NewMonetaryTotals(d("100.00"), d("100.00"), d("119.00"), d("119.00"))
	return doc
}

// WithAllowance adds a 10.00 document level allowance to doc
func WithAllowance(doc *model.Document) *model.Document {
	ac := model.NewAllowance(d("10.00"))
	ac.Reason = model.Ptr("Rabatt")
	ac.ReasonCode = model.Ptr("95")
	ac.TaxCategoryCode = model.Ptr("S")
	ac.TaxPercent = model.Ptr(d("19"))
	return doc.AddAllowanceCharge(ac)
}

// WithCard sets a complete card payment group on doc
func WithCard(doc *model.Document) *model.Document {
	doc.PaymentInstructions = &model.PaymentInstructions{
		PaymentMeansCode: "48",
		CardAccountID:    model.Ptr("1234"),
		CardHolderName:   model.Ptr("Max Mustermann"),
	}
	return doc
}

// WithDirectDebit sets a SEPA direct debit group on doc
func WithDirectDebit(doc *model.Document) *model.Document {
	doc.PaymentInstructions = &model.PaymentInstructions{
		PaymentMeansCode:    "59",
		MandateReference:    model.Ptr("MANDATE-7"),
		DebitedAccountID:    model.Ptr("DE75512108001245126199"),
		CreditorReferenceID: model.Ptr("DE98ZZZ09999999999"),
	}
	return doc
}

func line(id, qty, unit, net, name, price string) model.LineItem {
	li := model.NewLineItem(id, d(qty), unit, d(net))
	li.Item = &model.Item{
		Name:        name,
		TaxCategory: model.Ptr("S"),
		TaxPercent:  model.Ptr(d("19")),
	}
	li.Price = model.NewPrice(d(price))
	return li
}
