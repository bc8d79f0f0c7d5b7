// Package xmlio holds the reading and writing plumbing shared by the UBL and
// CII codecs: document parsing, the error-latching Scanner used to pull typed
// values through mapping table locators, and canonical serialization.
package xmlio

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/einvoice/internal/decimal"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/xmlpath"
)

// ISODate is the calendar date layout used by UBL
const ISODate = "2006-01-02"

// Parse reads data into an etree document and returns its root
func Parse(syntax model.Syntax, data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, model.NewParseError(syntax, model.ErrMalformedInput, "xml", "failed to parse XML", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(syntax, model.ErrMalformedInput, "xml", "document has no root element", nil)
	}
	if err := checkTopLevel(doc); err != nil {
		return nil, model.NewParseError(syntax, model.ErrMalformedInput, "xml", err.Error(), nil)
	}
	return root, nil
}

// checkTopLevel rejects content etree tolerates outside the document element:
// a second top-level element or character data.
func checkTopLevel(doc *etree.Document) error {
	elements := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			elements++
			if elements > 1 {
				return fmt.Errorf("more than one root element: <%s>", t.FullTag())
			}
		case *etree.CharData:
			if !t.IsWhitespace() {
				return fmt.Errorf("character data outside the root element: %q", strings.TrimSpace(t.Data))
			}
		}
	}
	return nil
}

// DateFunc converts a located date element into a calendar date
type DateFunc func(el *etree.Element) (time.Time, error)

// Scanner pulls typed values out of an element tree. The first failure is
// latched; later calls become no-ops and Err reports it.
type Scanner struct {
	syntax model.Syntax
	date   DateFunc
	err    error
}

// NewScanner creates a scanner for one read call
func NewScanner(syntax model.Syntax, date DateFunc) *Scanner {
	return &Scanner{syntax: syntax, date: date}
}

// Err returns the first failure
func (s *Scanner) Err() error {
	return s.err
}

// Fail latches err unless a failure is already recorded
func (s *Scanner) Fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Failf latches a ParseError of the given kind
func (s *Scanner) Failf(kind error, field, message string, cause error) {
	s.Fail(model.NewParseError(s.syntax, kind, field, message, cause))
}

// String returns the value at l, or "" when absent
func (s *Scanner) String(ctx *etree.Element, l xmlpath.Locator) string {
	v, _ := xmlpath.Text(ctx, l)
	return v
}

// OptString returns the value at l, or nil when absent
func (s *Scanner) OptString(ctx *etree.Element, l xmlpath.Locator) *string {
	if v, ok := xmlpath.Text(ctx, l); ok {
		return &v
	}
	return nil
}

// Decimal returns the exact decimal at l, zero when absent
func (s *Scanner) Decimal(ctx *etree.Element, l xmlpath.Locator, field string) decimal.Decimal {
	if d := s.OptDecimal(ctx, l, field); d != nil {
		return *d
	}
	return decimal.Zero
}

// OptDecimal returns the exact decimal at l, or nil when absent
func (s *Scanner) OptDecimal(ctx *etree.Element, l xmlpath.Locator, field string) *decimal.Decimal {
	if s.err != nil {
		return nil
	}
	v, ok := xmlpath.Text(ctx, l)
	if !ok {
		return nil
	}
	d, err := dec.FromString(v)
	if err != nil {
		s.Failf(model.ErrInvalidDecimal, field, "not an exact decimal: "+quote(v), err)
		return nil
	}
	return &d
}

// Date returns the date at l, the zero time when absent
func (s *Scanner) Date(ctx *etree.Element, l xmlpath.Locator, field string) time.Time {
	if t := s.OptDate(ctx, l, field); t != nil {
		return *t
	}
	return time.Time{}
}

// OptDate returns the date at l, or nil when absent
func (s *Scanner) OptDate(ctx *etree.Element, l xmlpath.Locator, field string) *time.Time {
	if s.err != nil {
		return nil
	}
	el := xmlpath.Find(ctx, l)
	if el == nil {
		return nil
	}
	t, err := s.date(el)
	if err != nil {
		s.Failf(model.ErrInvalidDateFormat, field, "unexpected date encoding", err)
		return nil
	}
	return &t
}

// Bool reads an xsd:boolean; absent or unrecognized text is false
func (s *Scanner) Bool(ctx *etree.Element, l xmlpath.Locator) bool {
	v, _ := xmlpath.Text(ctx, l)
	switch strings.TrimSpace(v) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// ParseISODate parses an xsd:date, tolerating a trailing zone designator
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(ISODate) {
		switch s[len(ISODate)] {
		case 'Z', '+', '-':
			s = s[:len(ISODate)]
		}
	}
	return time.Parse(ISODate, s)
}

func quote(s string) string {
	return "\"" + s + "\""
}
