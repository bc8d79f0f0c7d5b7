package xmlpath

import (
	"github.com/beevik/etree"
)

// Find returns the first element matching l below ctx, in document order.
// The attribute selector of l, if any, is ignored.
func Find(ctx *etree.Element, l Locator) *etree.Element {
	if ctx == nil {
		return nil
	}
	return findFirst(ctx, l.steps)
}

// FindAll returns every element matching l below ctx, in document order
func FindAll(ctx *etree.Element, l Locator) []*etree.Element {
	if ctx == nil {
		return nil
	}
	var out []*etree.Element
	collect(ctx, l.steps, &out)
	return out
}

// Text returns the value addressed by l: the attribute value when l has an
// attribute selector, otherwise the character data of the element.
func Text(ctx *etree.Element, l Locator) (string, bool) {
	el := Find(ctx, l)
	if el == nil {
		return "", false
	}
	if l.attr != "" {
		return Attr(el, l.attr)
	}
	return el.Text(), true
}

// Attr returns an unqualified attribute of el
func Attr(el *etree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// Matches reports whether el satisfies step
func Matches(el *etree.Element, step Step) bool {
	if el.Tag != step.Local || el.NamespaceURI() != step.Space {
		return false
	}
	for _, p := range step.Preds {
		if !p.holds(el) {
			return false
		}
	}
	return true
}

func (p Predicate) holds(el *etree.Element) bool {
	var (
		value string
		ok    bool
	)
	if p.Attr != "" {
		value, ok = Attr(el, p.Attr)
	} else if target := findFirst(el, p.Path); target != nil {
		value, ok = target.Text(), true
	}

	if p.Negate {
		return !ok || value != p.Value
	}
	return ok && value == p.Value
}

func findFirst(ctx *etree.Element, steps []Step) *etree.Element {
	if len(steps) == 0 {
		return ctx
	}
	for _, child := range ctx.ChildElements() {
		if !Matches(child, steps[0]) {
			continue
		}
		if found := findFirst(child, steps[1:]); found != nil {
			return found
		}
	}
	return nil
}

func collect(ctx *etree.Element, steps []Step, out *[]*etree.Element) {
	if len(steps) == 0 {
		*out = append(*out, ctx)
		return
	}
	for _, child := range ctx.ChildElements() {
		if Matches(child, steps[0]) {
			collect(child, steps[1:], out)
		}
	}
}

// Ensure materializes the path of l below parent and returns its last
// element. Each step reuses the last child element of its parent when that
// child already has the step's tag, so consecutive emissions into the same
// group share one group element.
func Ensure(parent *etree.Element, l Locator) *etree.Element {
	var qs []qualifier
	cur := parent
	for _, step := range l.steps {
		cur = reuseOrCreate(cur, step, &qs)
	}
	flush(qs)
	return cur
}

// Emit writes text at l below parent. Intermediate steps are reused as in
// Ensure; the leaf element is always new.
func Emit(parent *etree.Element, l Locator, text string) *etree.Element {
	if len(l.steps) == 0 {
		return parent
	}
	var qs []qualifier
	cur := parent
	last := len(l.steps) - 1
	for _, step := range l.steps[:last] {
		cur = reuseOrCreate(cur, step, &qs)
	}
	leaf := create(cur, l.steps[last], &qs)
	leaf.SetText(text)
	flush(qs)
	return leaf
}

// EmitNew writes text at l below parent creating every step afresh
func EmitNew(parent *etree.Element, l Locator, text string) *etree.Element {
	if len(l.steps) == 0 {
		return parent
	}
	var qs []qualifier
	cur := parent
	for _, step := range l.steps {
		cur = create(cur, step, &qs)
	}
	cur.SetText(text)
	flush(qs)
	return cur
}

// Append creates every step of l afresh and returns the last element
func Append(parent *etree.Element, l Locator) *etree.Element {
	var qs []qualifier
	cur := parent
	for _, step := range l.steps {
		cur = create(cur, step, &qs)
	}
	flush(qs)
	return cur
}

// qualifier is a child path predicate waiting to be written once the
// element it qualifies has received its leaf content.
type qualifier struct {
	el   *etree.Element
	pred Predicate
}

func reuseOrCreate(parent *etree.Element, step Step, qs *[]qualifier) *etree.Element {
	children := parent.ChildElements()
	if n := len(children); n > 0 {
		if last := children[n-1]; last.Tag == step.Local && last.Space == step.Prefix {
			return last
		}
	}
	return create(parent, step, qs)
}

// create appends the element of step. Attribute predicates become
// attributes right away; child path predicates are queued on qs.
func create(parent *etree.Element, step Step, qs *[]qualifier) *etree.Element {
	el := parent.CreateElement(step.Tag())
	for _, p := range step.Preds {
		if p.Negate {
			continue
		}
		if p.Attr != "" {
			el.CreateAttr(p.Attr, p.Value)
			continue
		}
		*qs = append(*qs, qualifier{el: el, pred: p})
	}
	return el
}

func flush(qs []qualifier) {
	for i := len(qs) - 1; i >= 0; i-- {
		q := qs[i]
		cur := q.el
		for _, ps := range q.pred.Path {
			cur = cur.CreateElement(ps.Tag())
		}
		cur.SetText(q.pred.Value)
	}
}
