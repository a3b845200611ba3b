package selector

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/reel/internal/ir"
)

// Resolve returns the elements sel refers to, in document order.
// The returned elements are pointers into elems; callers must not mutate
// them. An invalid selector resolves to nothing; validate untrusted
// selectors with ir.Selector.Validate first.
func Resolve(sel ir.Selector, elems []ir.Element) []*ir.Element {
	if sel.Validate() != nil {
		return nil
	}

	switch sel.Kind() {
	case ir.SelectByID:
		return byID(*sel.ID, elems)
	case ir.SelectByLabel:
		return byLabel(*sel.Label, sel.Exact, elems)
	case ir.SelectByType:
		return byType(*sel.Type, sel.Index, elems)
	default:
		return byIndex(*sel.Index, elems)
	}
}

// ResolveIDs is Resolve reduced to element ids.
func ResolveIDs(sel ir.Selector, elems []ir.Element) []string {
	matches := Resolve(sel, elems)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

func byID(id string, elems []ir.Element) []*ir.Element {
	var found []*ir.Element
	ir.Walk(elems, func(e *ir.Element, _ int) bool {
		if e.ID == id {
			found = append(found, e)
			return false
		}
		return true
	})
	return found
}

func byLabel(query string, exact bool, elems []ir.Element) []*ir.Element {
	// A Caser is stateful; one per call keeps Resolve safe to call from
	// several goroutines.
	fold := cases.Fold()
	want := foldLabel(fold, query)

	var found []*ir.Element
	ir.Walk(elems, func(e *ir.Element, _ int) bool {
		if e.Label == "" {
			return true
		}
		got := foldLabel(fold, e.Label)
		if (exact && got == want) || (!exact && strings.Contains(got, want)) {
			found = append(found, e)
		}
		return true
	})
	return found
}

func byIndex(index int, elems []ir.Element) []*ir.Element {
	if index < 0 || index >= len(elems) {
		return nil
	}
	return []*ir.Element{&elems[index]}
}

func byType(t ir.ElementType, index *int, elems []ir.Element) []*ir.Element {
	// Accept the "group" alias.
	if parsed, ok := ir.ParseElementType(string(t)); ok {
		t = parsed
	}

	var found []*ir.Element
	ir.Walk(elems, func(e *ir.Element, _ int) bool {
		if e.Type == t {
			found = append(found, e)
		}
		return true
	})

	if index == nil {
		return found
	}
	if *index < 0 || *index >= len(found) {
		return nil
	}
	return found[*index : *index+1]
}

// foldLabel applies Unicode full case folding to the NFC form of s,
// so "STRASSE" matches "Straße".
func foldLabel(fold cases.Caser, s string) string {
	return fold.String(norm.NFC.String(s))
}
