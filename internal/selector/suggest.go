package selector

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"

	"github.com/roach88/reel/internal/ir"
)

// maxSuggestions caps how many alternatives Suggest offers.
const maxSuggestions = 3

// Suggest proposes alternatives for a selector that resolved to nothing:
// the closest labels (or ids) by edit distance, or the valid index range.
func Suggest(sel ir.Selector, elems []ir.Element) []string {
	if sel.Validate() != nil {
		return nil
	}

	switch sel.Kind() {
	case ir.SelectByLabel:
		return closest(*sel.Label, elems, func(e *ir.Element) string { return e.Label })
	case ir.SelectByID:
		return closest(*sel.ID, elems, func(e *ir.Element) string { return e.ID })
	case ir.SelectByType:
		n := len(Resolve(ir.ByType(*sel.Type), elems))
		if n == 0 {
			return []string{fmt.Sprintf("no %s elements exist", *sel.Type)}
		}
		return []string{fmt.Sprintf("%s index must be within 0..%d", *sel.Type, n-1)}
	default:
		if len(elems) == 0 {
			return []string{"the composition has no elements"}
		}
		return []string{fmt.Sprintf("index must be within 0..%d", len(elems)-1)}
	}
}

// closest ranks candidate strings by edit distance to query, keeping those
// within half the query length (at least 2 edits), ties in document order.
func closest(query string, elems []ir.Element, key func(*ir.Element) string) []string {
	fold := cases.Fold()
	want := foldLabel(fold, query)
	limit := max(2, len([]rune(want))/2)

	type scored struct {
		value string
		dist  int
		order int
	}
	var ranked []scored
	seen := make(map[string]bool)
	order := 0
	ir.Walk(elems, func(e *ir.Element, _ int) bool {
		v := key(e)
		if v == "" || seen[v] {
			return true
		}
		seen[v] = true
		if d := levenshtein(want, foldLabel(fold, v)); d <= limit {
			ranked = append(ranked, scored{value: v, dist: d, order: order})
		}
		order++
		return true
	})

	slices.SortStableFunc(ranked, func(a, b scored) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return a.order - b.order
	})

	out := make([]string, 0, min(len(ranked), maxSuggestions))
	for i := 0; i < len(ranked) && i < maxSuggestions; i++ {
		out = append(out, ranked[i].value)
	}
	return out
}

// levenshtein computes the edit distance between a and b over runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
