// Package xmlpath compiles the small path language used by the mapping
// tables and evaluates it over etree documents.
//
// A locator is a '/'-separated list of prefixed element names, each with
// optional predicates, and an optional trailing attribute selector:
//
//	cac:PartyTaxScheme[cac:TaxScheme/cbc:ID='VAT']/cbc:CompanyID
//	cac:PartyIdentification/cbc:ID[@schemeID='SEPA']
//	cac:PartyIdentification/cbc:ID[@schemeID!='SEPA']
//	cbc:InvoicedQuantity/@unitCode
//
// Prefixes are resolved to namespace URIs at compile time; matching is by
// namespace URI and local name, never by the prefix found in a document.
package xmlpath

import (
	"fmt"
	"strings"
)

// Namespaces maps prefixes used in expressions to namespace URIs
type Namespaces map[string]string

// Step is one element step of a locator
type Step struct {
	Prefix string
	Space  string
	Local  string
	Preds  []Predicate
}

// Tag returns the prefixed tag used when emitting the step
func (s Step) Tag() string {
	if s.Prefix == "" {
		return s.Local
	}
	return s.Prefix + ":" + s.Local
}

// Predicate qualifies a step by an attribute or a child path value
type Predicate struct {
	Attr   string
	Path   []Step
	Value  string
	Negate bool
}

// Locator is a compiled path expression
type Locator struct {
	expr  string
	steps []Step
	attr  string
}

// Compile parses expr, resolving prefixes against ns
func Compile(ns Namespaces, expr string) (Locator, error) {
	parts, err := split(expr, '/')
	if err != nil {
		return Locator{}, fmt.Errorf("locator %q: %w", expr, err)
	}
	if len(parts) == 0 {
		return Locator{}, fmt.Errorf("locator %q: empty expression", expr)
	}

	l := Locator{expr: expr}
	for i, part := range parts {
		if strings.HasPrefix(part, "@") {
			if i != len(parts)-1 {
				return Locator{}, fmt.Errorf("locator %q: attribute selector must be last", expr)
			}
			l.attr = part[1:]
			continue
		}
		step, err := parseStep(ns, part)
		if err != nil {
			return Locator{}, fmt.Errorf("locator %q: %w", expr, err)
		}
		l.steps = append(l.steps, step)
	}
	return l, nil
}

// MustCompile is Compile that panics on error. Mapping tables use it.
func MustCompile(ns Namespaces, expr string) Locator {
	l, err := Compile(ns, expr)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the source expression
func (l Locator) String() string {
	return l.expr
}

// Attr returns the trailing attribute selector, or ""
func (l Locator) Attr() string {
	return l.attr
}

// Steps returns the element steps
func (l Locator) Steps() []Step {
	return l.steps
}

// Join appends other below l. The attribute selector of other is kept.
func (l Locator) Join(other Locator) Locator {
	steps := make([]Step, 0, len(l.steps)+len(other.steps))
	steps = append(steps, l.steps...)
	steps = append(steps, other.steps...)
	return Locator{
		expr:  l.expr + "/" + other.expr,
		steps: steps,
		attr:  other.attr,
	}
}

// Element drops the attribute selector
func (l Locator) Element() Locator {
	if l.attr == "" {
		return l
	}
	return Locator{
		expr:  strings.TrimSuffix(l.expr, "/@"+l.attr),
		steps: l.steps,
	}
}

func parseStep(ns Namespaces, s string) (Step, error) {
	name := s
	var predSrc []string
	if i := strings.IndexByte(s, '['); i >= 0 {
		name = s[:i]
		rest := s[i:]
		for rest != "" {
			if rest[0] != '[' {
				return Step{}, fmt.Errorf("unexpected %q after predicate", rest)
			}
			end := closingBracket(rest)
			if end < 0 {
				return Step{}, fmt.Errorf("unterminated predicate in %q", s)
			}
			predSrc = append(predSrc, rest[1:end])
			rest = rest[end+1:]
		}
	}

	step, err := parseName(ns, name)
	if err != nil {
		return Step{}, err
	}
	for _, src := range predSrc {
		pred, err := parsePredicate(ns, src)
		if err != nil {
			return Step{}, err
		}
		step.Preds = append(step.Preds, pred)
	}
	return step, nil
}

func parseName(ns Namespaces, name string) (Step, error) {
	if name == "" {
		return Step{}, fmt.Errorf("empty step")
	}
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return Step{Local: name}, nil
	}
	space, ok := ns[prefix]
	if !ok {
		return Step{}, fmt.Errorf("unknown prefix %q", prefix)
	}
	return Step{Prefix: prefix, Space: space, Local: local}, nil
}

func parsePredicate(ns Namespaces, src string) (Predicate, error) {
	op := "="
	lhs, rhs, found := strings.Cut(src, "!=")
	if found {
		op = "!="
	} else if lhs, rhs, found = strings.Cut(src, "="); !found {
		return Predicate{}, fmt.Errorf("predicate %q has no comparison", src)
	}

	value := strings.TrimSpace(rhs)
	if len(value) < 2 || value[0] != '\'' || value[len(value)-1] != '\'' {
		return Predicate{}, fmt.Errorf("predicate %q: value must be single quoted", src)
	}

	pred := Predicate{Value: value[1 : len(value)-1], Negate: op == "!="}
	lhs = strings.TrimSpace(lhs)
	if strings.HasPrefix(lhs, "@") {
		pred.Attr = lhs[1:]
		return pred, nil
	}

	parts, err := split(lhs, '/')
	if err != nil {
		return Predicate{}, err
	}
	for _, part := range parts {
		step, err := parseName(ns, part)
		if err != nil {
			return Predicate{}, err
		}
		pred.Path = append(pred.Path, step)
	}
	return pred, nil
}

// split cuts s on sep outside brackets and quotes
func split(s string, sep byte) ([]string, error) {
	var parts []string
	depth, quoted, start := 0, false, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']' in %q", s)
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if depth != 0 || quoted {
		return nil, fmt.Errorf("unbalanced expression %q", s)
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty step in %q", s)
		}
	}
	return parts, nil
}

func closingBracket(s string) int {
	quoted := false
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case ']':
			if !quoted {
				return i
			}
		}
	}
	return -1
}

// Table maps canonical field names to locators for one entity
type Table struct {
	name    string
	entries map[string]Locator
}

// NewTable compiles fields and panics on any invalid expression
func NewTable(name string, ns Namespaces, fields map[string]string) Table {
	t := Table{name: name, entries: make(map[string]Locator, len(fields))}
	for field, expr := range fields {
		t.entries[field] = MustCompile(ns, expr)
	}
	return t
}

// L returns the locator of field. An unknown field is a programming error.
func (t Table) L(field string) Locator {
	l, ok := t.entries[field]
	if !ok {
		panic(fmt.Sprintf("xmlpath: table %s has no field %q", t.name, field))
	}
	return l
}
