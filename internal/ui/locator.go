// Package ui holds the browser-independent side of the page objects: the
// chainable Locator, the Surface capability a driver has to provide and the
// Component assertions that wait for the DOM through the poller
package ui

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	indexAll  = 0
	indexNth  = 1
	indexLast = 2
)

type step struct {
	selector string
	hasText  string
	index    int
	pick     int
}

// Locator is an immutable chain of CSS steps. Each step searches inside the
// elements matched by the previous one, optionally keeping only elements
// whose text contains a fragment and optionally picking one of them
type Locator struct {
	steps []step
}

// Locate starts a locator from a CSS selector
func Locate(selector string) Locator {
	return Locator{steps: []step{{selector: selector}}}
}

// ByRole matches elements with an explicit ARIA role whose text contains name
func ByRole(role, name string) Locator {
	return Locate(roleSelector(role)).Filter(name)
}

// ByPlaceholder matches inputs and textareas by their placeholder
func ByPlaceholder(placeholder string) Locator {
	return Locate(fmt.Sprintf("input[placeholder=%q], textarea[placeholder=%q]", placeholder, placeholder))
}

func roleSelector(role string) string {
	switch role {
	case "button":
		return "button, [role='button']"
	case "dialog":
		return "[role='dialog'], dialog"
	default:
		return fmt.Sprintf("[role='%s']", role)
	}
}

func (l Locator) with(s step) Locator {
	steps := make([]step, len(l.steps), len(l.steps)+1)
	copy(steps, l.steps)
	return Locator{steps: append(steps, s)}
}

func (l Locator) last() step {
	if len(l.steps) == 0 {
		return step{}
	}
	return l.steps[len(l.steps)-1]
}

func (l Locator) replaceLast(s step) Locator {
	steps := make([]step, len(l.steps))
	copy(steps, l.steps)
	steps[len(steps)-1] = s
	return Locator{steps: steps}
}

// Locate narrows the search to descendants matching selector
func (l Locator) Locate(selector string) Locator {
	if len(l.steps) == 0 {
		return Locate(selector)
	}
	return l.with(step{selector: selector})
}

// Filter keeps elements whose text contains fragment. A filter after a
// filter or a pick applies to what they left
func (l Locator) Filter(fragment string) Locator {
	s := l.last()
	if s.hasText != "" || s.pick != indexAll {
		return l.with(step{selector: ":scope", hasText: fragment})
	}
	s.hasText = fragment
	return l.replaceLast(s)
}

// Nth picks the element at index i (zero based) of the current step
func (l Locator) Nth(i int) Locator {
	s := l.last()
	s.pick, s.index = indexNth, i
	return l.replaceLast(s)
}

// First picks the first element of the current step
func (l Locator) First() Locator {
	return l.Nth(0)
}

// Last picks the last element of the current step
func (l Locator) Last() Locator {
	s := l.last()
	s.pick, s.index = indexLast, 0
	return l.replaceLast(s)
}

// IsZero reports whether the locator has no steps
func (l Locator) IsZero() bool {
	return len(l.steps) == 0
}

func (l Locator) String() string {
	parts := make([]string, 0, len(l.steps))
	for _, s := range l.steps {
		part := s.selector
		if s.hasText != "" {
			part += fmt.Sprintf(" >> has-text=%q", s.hasText)
		}
		switch s.pick {
		case indexNth:
			part += fmt.Sprintf(" >> nth=%d", s.index)
		case indexLast:
			part += " >> last"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " >> ")
}

// Resolve evaluates the locator against a parsed DOM snapshot
func (l Locator) Resolve(root *goquery.Selection) *goquery.Selection {
	sel := root
	for _, s := range l.steps {
		if s.selector != ":scope" {
			sel = sel.Find(s.selector)
		}
		if s.hasText != "" {
			fragment := s.hasText
			sel = sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
				return strings.Contains(NormalizeText(el.Text()), fragment)
			})
		}
		switch s.pick {
		case indexNth:
			sel = sel.Eq(s.index)
		case indexLast:
			sel = sel.Last()
		}
	}
	return sel
}

// NormalizeText collapses whitespace the way rendered text reads
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CSSPath builds a selector that addresses exactly the given element in the
// document it was parsed from
func CSSPath(el *goquery.Selection) string {
	var parts []string
	for cur := el.First(); cur.Length() > 0; cur = cur.Parent() {
		node := cur.Get(0)
		if node.Data == "" || goquery.NodeName(cur) == "#document" {
			break
		}
		name := goquery.NodeName(cur)
		if name == "html" {
			parts = append(parts, "html")
			break
		}
		parts = append(parts, fmt.Sprintf("%s:nth-child(%d)", name, cur.PrevAll().Length()+1))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}
