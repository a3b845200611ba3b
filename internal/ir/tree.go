package ir

import "slices"

// Clone returns a deep copy of the element and its children.
func (e Element) Clone() Element {
	out := e
	out.Properties = CloneProperties(e.Properties)
	if e.Animations != nil {
		out.Animations = make([]Animation, len(e.Animations))
		for i, a := range e.Animations {
			out.Animations[i] = Animation{
				Property:  a.Property,
				Keyframes: slices.Clone(a.Keyframes),
				Easing:    a.Easing,
			}
		}
	}
	out.Children = CloneElements(e.Children)
	return out
}

// CloneElements deep-copies a slice of elements. nil stays nil.
func CloneElements(elems []Element) []Element {
	if elems == nil {
		return nil
	}
	out := make([]Element, len(elems))
	for i := range elems {
		out[i] = elems[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the composition, including its patch log.
func (c *Composition) Clone() *Composition {
	out := &Composition{
		ID:       c.ID,
		Version:  c.Version,
		Metadata: c.Metadata,
		Elements: CloneElements(c.Elements),
		Patches:  make([]Patch, len(c.Patches)),
	}
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	for i, p := range c.Patches {
		out.Patches[i] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the patch.
func (p Patch) Clone() Patch {
	out := p
	if p.Selector != nil {
		sel := *p.Selector
		out.Selector = &sel
	}
	out.Changes = p.Changes.Clone()
	if p.PreviousState != nil {
		prev := p.PreviousState.Clone()
		out.PreviousState = &prev
	}
	if p.PreviousIndex != nil {
		idx := *p.PreviousIndex
		out.PreviousIndex = &idx
	}
	out.PreviousOrder = slices.Clone(p.PreviousOrder)
	out.CreatedIDs = slices.Clone(p.CreatedIDs)
	return out
}

// Walk visits elements depth-first in document order (pre-order: a parent
// before its children). Returning false stops the walk.
func Walk(elems []Element, visit func(e *Element, depth int) bool) {
	walk(elems, 0, visit)
}

func walk(elems []Element, depth int, visit func(*Element, int) bool) bool {
	for i := range elems {
		if !visit(&elems[i], depth) {
			return false
		}
		if !walk(elems[i].Children, depth+1, visit) {
			return false
		}
	}
	return true
}

// Path locates an element by a list of indexes: the first into the
// top-level slice, each following one into the previous element's children.
type Path []int

// FindPath returns the path to the element with id, depth-first.
func FindPath(elems []Element, id string) (Path, bool) {
	for i := range elems {
		if elems[i].ID == id {
			return Path{i}, true
		}
		if sub, ok := FindPath(elems[i].Children, id); ok {
			return append(Path{i}, sub...), true
		}
	}
	return nil, false
}

// At returns the element at path, or nil if the path is out of range.
func At(elems []Element, path Path) *Element {
	if len(path) == 0 {
		return nil
	}
	cur := elems
	var el *Element
	for _, idx := range path {
		if idx < 0 || idx >= len(cur) {
			return nil
		}
		el = &cur[idx]
		cur = el.Children
	}
	return el
}

// Parent returns the id of the enclosing element of path, "" at top level.
func Parent(elems []Element, path Path) string {
	if len(path) < 2 {
		return ""
	}
	if p := At(elems, path[:len(path)-1]); p != nil {
		return p.ID
	}
	return ""
}

// siblings returns a pointer to the slice holding the element at path.
func siblings(elems *[]Element, path Path) *[]Element {
	cur := elems
	for _, idx := range path[:len(path)-1] {
		cur = &(*cur)[idx].Children
	}
	return cur
}

// ReplaceAt overwrites the element at path in place.
// elems must already be a private copy.
func ReplaceAt(elems []Element, path Path, el Element) bool {
	target := At(elems, path)
	if target == nil {
		return false
	}
	*target = el
	return true
}

// RemoveAt deletes the element at path from elems (a private copy) and
// returns the shortened top-level slice.
func RemoveAt(elems []Element, path Path) ([]Element, bool) {
	if At(elems, path) == nil {
		return elems, false
	}
	sib := siblings(&elems, path)
	idx := path[len(path)-1]
	*sib = slices.Delete(*sib, idx, idx+1)
	return elems, true
}

// InsertChild inserts el into the children of the element parentID (or the
// top level when parentID is empty) at index, clamped to the end. It
// reports false when the parent no longer exists.
func InsertChild(elems []Element, parentID string, index int, el Element) ([]Element, bool) {
	if parentID == "" {
		return insertClamped(elems, index, el), true
	}
	path, ok := FindPath(elems, parentID)
	if !ok {
		return elems, false
	}
	parent := At(elems, path)
	parent.Children = insertClamped(parent.Children, index, el)
	return elems, true
}

func insertClamped(elems []Element, index int, el Element) []Element {
	index = max(0, min(index, len(elems)))
	return slices.Insert(elems, index, el)
}

// TopLevelIDs returns the ids of the top-level elements in order.
func TopLevelIDs(elems []Element) []string {
	ids := make([]string, len(elems))
	for i := range elems {
		ids[i] = elems[i].ID
	}
	return ids
}

// CollectIDs returns every id in the tree, depth-first.
func CollectIDs(elems []Element) []string {
	var ids []string
	Walk(elems, func(e *Element, _ int) bool {
		ids = append(ids, e.ID)
		return true
	})
	return ids
}
