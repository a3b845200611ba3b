package ir

import (
	"encoding/json"
	"fmt"
	"time"
)

// ElementType is the closed set of element kinds a composition may hold.
type ElementType string

const (
	TypeVideo    ElementType = "video"
	TypeAudio    ElementType = "audio"
	TypeText     ElementType = "text"
	TypeImage    ElementType = "image"
	TypeShape    ElementType = "shape"
	TypeSequence ElementType = "sequence"
)

// ElementTypes lists every element type in declaration order.
var ElementTypes = []ElementType{TypeVideo, TypeAudio, TypeText, TypeImage, TypeShape, TypeSequence}

// ParseElementType maps a type name to an ElementType.
// "group" is accepted as an alias of sequence.
func ParseElementType(s string) (ElementType, bool) {
	if s == "group" {
		return TypeSequence, true
	}
	for _, t := range ElementTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Operation names an edit operation.
type Operation string

const (
	OpAdd     Operation = "add"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpMove    Operation = "move"
	OpReorder Operation = "reorder"
)

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case OpAdd, OpUpdate, OpDelete, OpMove, OpReorder:
		return true
	}
	return false
}

// NeedsSelector reports whether the operation targets a single element.
func (op Operation) NeedsSelector() bool {
	return op == OpUpdate || op == OpDelete || op == OpMove
}

// Composition is the root document.
//
// INVARIANTS:
//   - Version strictly increases; every successful mutation bumps it by one
//   - Elements order is the authoritative document and z-order
//   - Patches is append-only except that undo pops the tail
type Composition struct {
	ID       string    `json:"id"`
	Version  int64     `json:"version"`
	Metadata Metadata  `json:"metadata"`
	Elements []Element `json:"elements"`
	Patches  []Patch   `json:"patches"`
}

// Metadata describes the canvas and timeline of a composition.
type Metadata struct {
	Width            int64 `json:"width"`
	Height           int64 `json:"height"`
	FPS              int64 `json:"fps"`
	DurationInFrames int64 `json:"durationInFrames"`
}

// NewComposition returns an empty composition at version 1.
func NewComposition(id string, meta Metadata) *Composition {
	return &Composition{
		ID:       id,
		Version:  1,
		Metadata: meta,
		Elements: []Element{},
		Patches:  []Patch{},
	}
}

// Element is a positioned unit of content. ID is assigned once at creation
// and is the only stable handle across edits.
type Element struct {
	ID               string
	Type             ElementType
	Label            string
	From             int64
	DurationInFrames int64
	Properties       Properties
	Animations       []Animation
	Children         []Element
}

// elementJSON is the wire shape of an Element. Properties travel as a flat
// object and are decoded into the typed variant for the element's type.
type elementJSON struct {
	ID               string      `json:"id"`
	Type             ElementType `json:"type"`
	Label            string      `json:"label,omitempty"`
	From             int64       `json:"from"`
	DurationInFrames int64       `json:"durationInFrames"`
	Properties       Object      `json:"properties"`
	Animations       []Animation `json:"animations,omitempty"`
	Children         []Element   `json:"children,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Element) MarshalJSON() ([]byte, error) {
	props := Object{}
	if e.Properties != nil {
		props = e.Properties.Object()
	}
	return json.Marshal(elementJSON{
		ID:               e.ID,
		Type:             e.Type,
		Label:            e.Label,
		From:             e.From,
		DurationInFrames: e.DurationInFrames,
		Properties:       props,
		Animations:       e.Animations,
		Children:         e.Children,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, ok := ParseElementType(string(raw.Type))
	if !ok {
		return fmt.Errorf("element %q: unknown type %q", raw.ID, raw.Type)
	}
	props, err := DecodeProperties(t, raw.Properties)
	if err != nil {
		return fmt.Errorf("element %q: %w", raw.ID, err)
	}
	*e = Element{
		ID:               raw.ID,
		Type:             t,
		Label:            raw.Label,
		From:             raw.From,
		DurationInFrames: raw.DurationInFrames,
		Properties:       props,
		Animations:       raw.Animations,
		Children:         raw.Children,
	}
	return nil
}

// End returns the first frame after the element.
func (e *Element) End() int64 {
	return e.From + e.DurationInFrames
}

// DisplayName names the element for receipts and candidate lists:
// its label when set, otherwise its type and a short id.
func (e *Element) DisplayName() string {
	if e.Label != "" {
		return fmt.Sprintf("%s %q", e.Type, e.Label)
	}
	return fmt.Sprintf("%s %s", e.Type, ShortID(e.ID))
}

// Animation interpolates one property across ordered keyframes.
type Animation struct {
	Property  string     `json:"property"`
	Keyframes []Keyframe `json:"keyframes"`
	Easing    string     `json:"easing,omitempty"`
}

// Keyframe pins a property value at a frame relative to the element start.
type Keyframe struct {
	Frame int64   `json:"frame"`
	Value float64 `json:"value"`
}

// EditPlan is an operation request emitted by the planning collaborator.
// Changes is kept as an untyped tree; the executor validates it before use.
type EditPlan struct {
	Operation Operation `json:"operation"`
	Selector  *Selector `json:"selector,omitempty"`
	Changes   Object    `json:"changes,omitempty"`
}

// Patch records one applied edit.
//
// TargetID pins the concrete element the edit touched so that redo replays
// by id rather than by the (possibly positional) selector. PreviousState is
// absent for add and reorder.
type Patch struct {
	ID               string    `json:"id"`
	Seq              int64     `json:"seq"`
	Timestamp        time.Time `json:"timestamp"`
	Operation        Operation `json:"operation"`
	Selector         *Selector `json:"selector,omitempty"`
	TargetID         string    `json:"targetId,omitempty"`
	Changes          Object    `json:"changes"`
	PreviousState    *Element  `json:"previousState,omitempty"`
	PreviousParentID string    `json:"previousParentId,omitempty"`
	PreviousIndex    *int      `json:"previousIndex,omitempty"`
	PreviousOrder    []string  `json:"previousOrder,omitempty"`
	CreatedIDs       []string  `json:"createdIds,omitempty"`
}
