// Package fakedriver is an in-memory output.DriverPort for unit tests. Pages
// are trees of Element values; timing is driven by a benbjohnson clock so
// tests can make elements appear "later" without sleeping.
package fakedriver

import (
	"strings"
	"time"

	"browser-journey/internal/domain/entity"
)

type Element struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Element

	// XPaths lists the XPath expressions this element answers to; the fake
	// does not evaluate XPath.
	XPaths []string

	Hidden   bool
	Disabled bool
	Obscured bool

	// AppearAfter and VisibleAfter are measured from the moment the page was
	// loaded into its tab.
	AppearAfter  time.Duration
	VisibleAfter time.Duration

	// DetachAfter removes the element from the page when non-zero.
	DetachAfter time.Duration

	// OnClick replaces the default click behaviour (follow href).
	OnClick func(d *Driver, tab *Tab)

	id     string
	parent *Element
	tab    *Tab
}

func El(tag string, attrs map[string]string, children ...*Element) *Element {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Element{Tag: tag, Attrs: attrs, Children: children}
}

func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

func (e *Element) WithXPath(exprs ...string) *Element {
	e.XPaths = append(e.XPaths, exprs...)
	return e
}

func (e *Element) Append(children ...*Element) {
	for _, c := range children {
		c.parent = e
		if e.tab != nil {
			e.tab.driver.register(e.tab, c)
		}
	}
	e.Children = append(e.Children, children...)
}

func (e *Element) classes() []string {
	return strings.Fields(e.Attrs["class"])
}

func (e *Element) hasClass(name string) bool {
	for _, c := range e.classes() {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) matches(loc entity.Locator) bool {
	switch loc.Strategy {
	case entity.StrategyID:
		return e.Attrs["id"] == loc.Expression
	case entity.StrategyClass:
		return e.hasClass(loc.Expression)
	case entity.StrategyXPath:
		for _, x := range e.XPaths {
			if x == loc.Expression {
				return true
			}
		}
		return false
	case entity.StrategyCSS:
		return e.matchesCSS(loc.Expression)
	}
	return false
}

// matchesCSS understands "tag", "#id", ".class" and combinations such as
// "li.a.b" or "select#x". Anything else never matches.
func (e *Element) matchesCSS(sel string) bool {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return false
	}

	tag := sel
	rest := ""
	if i := strings.IndexAny(sel, ".#"); i >= 0 {
		tag, rest = sel[:i], sel[i:]
	}
	if tag != "" && tag != e.Tag {
		return false
	}

	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, ".#")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]

		switch kind {
		case '#':
			if e.Attrs["id"] != name {
				return false
			}
		case '.':
			if !e.hasClass(name) {
				return false
			}
		}
	}
	return true
}

func (e *Element) text() string {
	var sb strings.Builder
	sb.WriteString(e.Text)
	for _, c := range e.Children {
		if t := c.text(); t != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(t)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.walk(fn)
	}
}
