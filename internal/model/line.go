package model

import "github.com/shopspring/decimal"

// LineItem is an invoice line (BG-25)
type LineItem struct {
	ID                  string          `json:"id"`
	InvoicedQuantity    decimal.Decimal `json:"invoiced_quantity"`
	UnitCode            string          `json:"unit_code"`
	LineExtensionAmount decimal.Decimal `json:"line_extension_amount"`
	Note                *string         `json:"note,omitempty"`
	Item                *Item           `json:"item,omitempty"`
	Price               *Price          `json:"price,omitempty"`
}

// Item holds the item information of a line (BG-31)
type Item struct {
	Name                string               `json:"name"`
	Description         *string              `json:"description,omitempty"`
	SellersIdentifier   *string              `json:"sellers_identifier,omitempty"`
	TaxCategory         *string              `json:"tax_category,omitempty"`
	TaxPercent          *decimal.Decimal     `json:"tax_percent,omitempty"`
	ClassificationCodes []ClassificationCode `json:"classification_codes,omitempty"`
}

// ClassificationCode is an item classification identifier (BT-158)
type ClassificationCode struct {
	Code          string  `json:"code"`
	ListID        *string `json:"list_id,omitempty"`
	ListVersionID *string `json:"list_version_id,omitempty"`
}

// Price is the net item price (BG-29)
type Price struct {
	Amount           decimal.Decimal  `json:"amount"`
	BaseQuantity     *decimal.Decimal `json:"base_quantity,omitempty"`
	BaseQuantityUnit *string          `json:"base_quantity_unit,omitempty"`
}

// NewLineItem creates a line with its required fields
func NewLineItem(id string, quantity decimal.Decimal, unitCode string, lineExtension decimal.Decimal) LineItem {
	return LineItem{
		ID:                  id,
		InvoicedQuantity:    quantity,
		UnitCode:            unitCode,
		LineExtensionAmount: lineExtension,
	}
}

// NewItem creates an item with its required name
func NewItem(name string) *Item {
	return &Item{Name: name}
}

// NewPrice creates a net price
func NewPrice(amount decimal.Decimal) *Price {
	return &Price{Amount: amount}
}

func (li LineItem) validate(i int) []*ValidationError {
	var errs []*ValidationError
	if li.ID == "" {
		errs = append(errs, NewValidationError(indexed("line", i, "id"), nil, "required", "line id is required"))
	}
	if li.UnitCode == "" {
		errs = append(errs, NewValidationError(indexed("line", i, "unit_code"), nil, "required", "unit code is required"))
	}
	if li.Item != nil {
		if li.Item.Name == "" {
			errs = append(errs, NewValidationError(indexed("line", i, "item.name"), nil, "required", "item name is required"))
		}
		if li.Item.TaxPercent != nil && li.Item.TaxCategory == nil {
			errs = append(errs, NewValidationError(indexed("line", i, "item.tax_percent"), li.Item.TaxPercent.String(), "dependent", "tax percent given without category"))
		}
	}
	return errs
}
