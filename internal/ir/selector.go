package ir

import (
	"fmt"
	"strconv"
)

// SelectorKind tags which variant of Selector is populated.
type SelectorKind string

const (
	SelectByID    SelectorKind = "id"
	SelectByLabel SelectorKind = "label"
	SelectByIndex SelectorKind = "index"
	SelectByType  SelectorKind = "type"
)

// Selector is a declarative reference to zero, one or many elements.
//
// Exactly one variant is populated:
//
//	{"id": "..."}                      by-id
//	{"label": "...", "exact": false}   by-label (case-insensitive substring)
//	{"index": 1}                       by-index (top-level elements only)
//	{"type": "video", "index": 1}      by-type, optionally indexed
//
// Selectors carry no mutable state.
type Selector struct {
	ID    *string      `json:"id,omitempty"`
	Label *string      `json:"label,omitempty"`
	Exact bool         `json:"exact,omitempty"`
	Index *int         `json:"index,omitempty"`
	Type  *ElementType `json:"type,omitempty"`
}

// ByID selects the element with the given id.
func ByID(id string) Selector {
	return Selector{ID: &id}
}

// ByLabel selects elements whose label contains the query, ignoring case.
func ByLabel(label string) Selector {
	return Selector{Label: &label}
}

// ByExactLabel selects elements whose label equals the query, ignoring case.
func ByExactLabel(label string) Selector {
	return Selector{Label: &label, Exact: true}
}

// ByIndex selects the top-level element at index.
func ByIndex(index int) Selector {
	return Selector{Index: &index}
}

// ByType selects every element of type t, depth-first.
func ByType(t ElementType) Selector {
	return Selector{Type: &t}
}

// ByTypeIndex selects the index-th element of type t, depth-first.
func ByTypeIndex(t ElementType, index int) Selector {
	return Selector{Type: &t, Index: &index}
}

// Kind returns the populated variant. Call Validate first on untrusted input.
func (s Selector) Kind() SelectorKind {
	switch {
	case s.ID != nil:
		return SelectByID
	case s.Label != nil:
		return SelectByLabel
	case s.Type != nil:
		return SelectByType
	default:
		return SelectByIndex
	}
}

// Validate checks that exactly one variant is populated and well formed.
func (s Selector) Validate() error {
	set := 0
	for _, present := range []bool{s.ID != nil, s.Label != nil, s.Type != nil} {
		if present {
			set++
		}
	}
	if set == 0 && s.Index == nil {
		return fmt.Errorf("selector is empty: one of id, label, index or type is required")
	}
	if set > 1 {
		return fmt.Errorf("selector mixes variants: use exactly one of id, label, index or type")
	}
	if s.Index != nil && (s.ID != nil || s.Label != nil) {
		return fmt.Errorf("index can only be combined with type")
	}
	if s.Exact && s.Label == nil {
		return fmt.Errorf("exact applies to label selectors only")
	}
	if s.ID != nil && *s.ID == "" {
		return fmt.Errorf("id must not be empty")
	}
	if s.Label != nil && *s.Label == "" {
		return fmt.Errorf("label must not be empty")
	}
	if s.Type != nil {
		if _, ok := ParseElementType(string(*s.Type)); !ok {
			return fmt.Errorf("unknown element type %q", *s.Type)
		}
	}
	return nil
}

// String renders the selector compactly for logs and messages.
func (s Selector) String() string {
	switch s.Kind() {
	case SelectByID:
		return "id=" + *s.ID
	case SelectByLabel:
		if s.Exact {
			return "label==" + strconv.Quote(*s.Label)
		}
		return "label~" + strconv.Quote(*s.Label)
	case SelectByType:
		if s.Index != nil {
			return fmt.Sprintf("type=%s[%d]", *s.Type, *s.Index)
		}
		return "type=" + string(*s.Type)
	default:
		if s.Index == nil {
			return "<empty>"
		}
		return fmt.Sprintf("index=%d", *s.Index)
	}
}
