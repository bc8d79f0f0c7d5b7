package xmlio

import (
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/einvoice/internal/decimal"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// NewDocument creates an output document carrying the UTF-8 declaration
func NewDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

// Serialize renders doc. indent <= 0 produces a single line.
func Serialize(doc *etree.Document, indent int) ([]byte, error) {
	if indent > 0 {
		doc.Indent(indent)
	} else {
		doc.Indent(etree.NoIndent)
	}
	return doc.WriteToBytes()
}

// Emitter writes values through locators using the shared formatting rules.
// AmountScale is the minimum number of fractional digits for currency
// amounts; quantities, percentages and factors are never padded.
type Emitter struct {
	AmountScale int
}

// Text writes v at l
func (e Emitter) Text(parent *etree.Element, l xmlpath.Locator, v string) *etree.Element {
	return xmlpath.Emit(parent, l, v)
}

// OptText writes v at l when present and returns nil otherwise
func (e Emitter) OptText(parent *etree.Element, l xmlpath.Locator, v *string) *etree.Element {
	if v == nil {
		return nil
	}
	return xmlpath.Emit(parent, l, *v)
}

// Amount writes a currency amount at l
func (e Emitter) Amount(parent *etree.Element, l xmlpath.Locator, d decimal.Decimal) *etree.Element {
	return xmlpath.Emit(parent, l, dec.Format(d, e.AmountScale))
}

// OptAmount writes a currency amount at l when present
func (e Emitter) OptAmount(parent *etree.Element, l xmlpath.Locator, d *decimal.Decimal) *etree.Element {
	if d == nil {
		return nil
	}
	return e.Amount(parent, l, *d)
}

// Number writes a quantity, percentage or factor at l
func (e Emitter) Number(parent *etree.Element, l xmlpath.Locator, d decimal.Decimal) *etree.Element {
	return xmlpath.Emit(parent, l, dec.Format(d, 0))
}

// OptNumber writes a quantity, percentage or factor at l when present
func (e Emitter) OptNumber(parent *etree.Element, l xmlpath.Locator, d *decimal.Decimal) *etree.Element {
	if d == nil {
		return nil
	}
	return e.Number(parent, l, *d)
}

// SetAttr sets the attribute selected by l on el. Empty values and a nil
// element are skipped.
func SetAttr(el *etree.Element, l xmlpath.Locator, value string) *etree.Element {
	if el == nil || value == "" || l.Attr() == "" {
		return el
	}
	el.CreateAttr(l.Attr(), value)
	return el
}

// SetOptAttr is SetAttr for optional values
func SetOptAttr(el *etree.Element, l xmlpath.Locator, value *string) *etree.Element {
	if value == nil {
		return el
	}
	return SetAttr(el, l, *value)
}

// FirstNonEmpty returns the first non-empty value
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
