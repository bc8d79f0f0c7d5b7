package model

import "github.com/shopspring/decimal"

// TaxBreakdown is the document level VAT total (BG-23 parent)
type TaxBreakdown struct {
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	CurrencyCode string          `json:"currency_code"`
	Subtotals    []TaxSubtotal   `json:"subtotals"`
}

// TaxSubtotal is one VAT breakdown per category and rate (BG-23)
type TaxSubtotal struct {
	TaxableAmount       decimal.Decimal  `json:"taxable_amount"`
	TaxAmount           decimal.Decimal  `json:"tax_amount"`
	CategoryCode        string           `json:"category_code"`
	Percent             *decimal.Decimal `json:"percent,omitempty"`
	CurrencyCode        string           `json:"currency_code"`
	ExemptionReason     *string          `json:"exemption_reason,omitempty"`
	ExemptionReasonCode *string          `json:"exemption_reason_code,omitempty"`
}

// MonetaryTotals is the document totals group (BG-22)
type MonetaryTotals struct {
	LineExtensionAmount   decimal.Decimal  `json:"line_extension_amount"`
	TaxExclusiveAmount    decimal.Decimal  `json:"tax_exclusive_amount"`
	TaxInclusiveAmount    decimal.Decimal  `json:"tax_inclusive_amount"`
	PayableAmount         decimal.Decimal  `json:"payable_amount"`
	PrepaidAmount         *decimal.Decimal `json:"prepaid_amount,omitempty"`
	PayableRoundingAmount *decimal.Decimal `json:"payable_rounding_amount,omitempty"`
	AllowanceTotalAmount  *decimal.Decimal `json:"allowance_total_amount,omitempty"`
	ChargeTotalAmount     *decimal.Decimal `json:"charge_total_amount,omitempty"`
}

// PaymentInstructions (BG-16). The card group (BG-18) and direct debit
// group (BG-19) are either complete or absent.
type PaymentInstructions struct {
	PaymentMeansCode    string  `json:"payment_means_code"`
	PaymentID           *string `json:"payment_id,omitempty"`
	AccountID           *string `json:"account_id,omitempty"`
	Note                *string `json:"note,omitempty"`
	CardAccountID       *string `json:"card_account_id,omitempty"`
	CardHolderName      *string `json:"card_holder_name,omitempty"`
	CardNetworkID       *string `json:"card_network_id,omitempty"`
	MandateReference    *string `json:"mandate_reference,omitempty"`
	DebitedAccountID    *string `json:"debited_account_id,omitempty"`
	CreditorReferenceID *string `json:"creditor_reference_id,omitempty"`
}

// AllowanceCharge is a document level allowance (BG-20) or charge (BG-21)
type AllowanceCharge struct {
	ChargeIndicator  bool             `json:"charge_indicator"`
	Amount           decimal.Decimal  `json:"amount"`
	Reason           *string          `json:"reason,omitempty"`
	ReasonCode       *string          `json:"reason_code,omitempty"`
	BaseAmount       *decimal.Decimal `json:"base_amount,omitempty"`
	MultiplierFactor *decimal.Decimal `json:"multiplier_factor,omitempty"`
	TaxCategoryCode  *string          `json:"tax_category_code,omitempty"`
	TaxPercent       *decimal.Decimal `json:"tax_percent,omitempty"`
	CurrencyCode     *string          `json:"currency_code,omitempty"`
}

// NewTaxBreakdown creates a breakdown without subtotals
func NewTaxBreakdown(taxAmount decimal.Decimal, currencyCode string) *TaxBreakdown {
	return &TaxBreakdown{
		TaxAmount:    taxAmount,
		CurrencyCode: currencyCode,
		Subtotals:    []TaxSubtotal{},
	}
}

// AddSubtotal appends a subtotal in document order
func (t *TaxBreakdown) AddSubtotal(sub TaxSubtotal) *TaxBreakdown {
	t.Subtotals = append(t.Subtotals, sub)
	return t
}

// NewTaxSubtotal creates a subtotal with its required fields
func NewTaxSubtotal(taxable, tax decimal.Decimal, categoryCode, currencyCode string) TaxSubtotal {
	return TaxSubtotal{
		TaxableAmount: taxable,
		TaxAmount:     tax,
		CategoryCode:  categoryCode,
		CurrencyCode:  currencyCode,
	}
}

// NewMonetaryTotals creates totals with the four mandatory amounts
func NewMonetaryTotals(lineExtension, taxExclusive, taxInclusive, payable decimal.Decimal) *MonetaryTotals {
	return &MonetaryTotals{
		LineExtensionAmount: lineExtension,
		TaxExclusiveAmount:  taxExclusive,
		TaxInclusiveAmount:  taxInclusive,
		PayableAmount:       payable,
	}
}

// NewPaymentInstructions creates instructions with the UNTDID 4461 means code
func NewPaymentInstructions(meansCode string) *PaymentInstructions {
	return &PaymentInstructions{PaymentMeansCode: meansCode}
}

// HasCard reports whether the card group is present
func (p *PaymentInstructions) HasCard() bool {
	return p != nil && p.CardAccountID != nil
}

// HasMandate reports whether the direct debit group is present
func (p *PaymentInstructions) HasMandate() bool {
	return p != nil && (p.MandateReference != nil || p.DebitedAccountID != nil)
}

// NewAllowance creates a document level allowance
func NewAllowance(amount decimal.Decimal) AllowanceCharge {
	return AllowanceCharge{ChargeIndicator: false, Amount: amount}
}

// NewCharge creates a document level charge
func NewCharge(amount decimal.Decimal) AllowanceCharge {
	return AllowanceCharge{ChargeIndicator: true, Amount: amount}
}

// IsCharge reports whether ac is a charge (BG-21)
func (ac AllowanceCharge) IsCharge() bool {
	return ac.ChargeIndicator
}

// IsAllowance reports whether ac is an allowance (BG-20)
func (ac AllowanceCharge) IsAllowance() bool {
	return !ac.ChargeIndicator
}
