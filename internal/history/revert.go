package history

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/roach88/reel/internal/ir"
)

var (
	// ErrNothingToUndo is returned when the patch log is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNotLastPatch is returned when Revert is asked to undo a patch that
	// is not the tail of the composition's log.
	ErrNotLastPatch = errors.New("only the most recent patch can be reverted")

	// ErrInconsistentLog is returned when a patch's inverse cannot be applied
	// because the document no longer matches what the patch recorded.
	ErrInconsistentLog = errors.New("patch log does not match the document")
)

// Revert undoes p, which must be the last patch of comp. It returns a new
// composition with the inverse applied, p popped from the log and the
// version bumped. comp is not modified.
//
// Inverses:
//
//	add     remove the element the patch created
//	update  reinstate the previous element
//	move    reinstate the previous element
//	delete  reinsert the previous element at its old parent and index
//	reorder restore the previous top-level order
func Revert(comp *ir.Composition, p ir.Patch) (*ir.Composition, error) {
	n := len(comp.Patches)
	if n == 0 {
		return nil, ErrNothingToUndo
	}
	if comp.Patches[n-1].ID != p.ID {
		return nil, fmt.Errorf("%w: %s is not the last patch", ErrNotLastPatch, p.ID)
	}

	next := comp.Clone()
	var err error
	switch p.Operation {
	case ir.OpAdd:
		err = revertAdd(next, p)
	case ir.OpUpdate, ir.OpMove:
		err = revertReplace(next, p)
	case ir.OpDelete:
		err = revertDelete(next, p)
	case ir.OpReorder:
		err = revertReorder(next, p)
	default:
		err = fmt.Errorf("unknown operation %q", p.Operation)
	}
	if err != nil {
		return nil, fmt.Errorf("revert %s %s: %w", p.Operation, p.ID, err)
	}

	next.Patches = next.Patches[:n-1]
	next.Version = comp.Version + 1
	return next, nil
}

func revertAdd(c *ir.Composition, p ir.Patch) error {
	path, ok := ir.FindPath(c.Elements, p.TargetID)
	if !ok {
		return fmt.Errorf("%w: added element %q is missing", ErrInconsistentLog, p.TargetID)
	}
	c.Elements, _ = ir.RemoveAt(c.Elements, path)
	return nil
}

func revertReplace(c *ir.Composition, p ir.Patch) error {
	if p.PreviousState == nil {
		return fmt.Errorf("%w: %s patch has no previous state", ErrInconsistentLog, p.Operation)
	}
	path, ok := ir.FindPath(c.Elements, p.TargetID)
	if !ok {
		return fmt.Errorf("%w: element %q is missing", ErrInconsistentLog, p.TargetID)
	}
	ir.ReplaceAt(c.Elements, path, p.PreviousState.Clone())
	return nil
}

// revertDelete puts the element back where it was. An index past the end
// of its parent (possible only if the log was edited by hand) appends.
func revertDelete(c *ir.Composition, p ir.Patch) error {
	if p.PreviousState == nil {
		return fmt.Errorf("%w: delete patch has no previous state", ErrInconsistentLog)
	}
	if _, exists := ir.FindPath(c.Elements, p.PreviousState.ID); exists {
		return fmt.Errorf("%w: element %q already exists", ErrInconsistentLog, p.PreviousState.ID)
	}
	index := -1
	if p.PreviousIndex != nil {
		index = *p.PreviousIndex
	}
	if index < 0 {
		index = math.MaxInt
	}
	elems, ok := ir.InsertChild(c.Elements, p.PreviousParentID, index, p.PreviousState.Clone())
	if !ok {
		return fmt.Errorf("%w: parent %q is missing", ErrInconsistentLog, p.PreviousParentID)
	}
	c.Elements = elems
	return nil
}

func revertReorder(c *ir.Composition, p ir.Patch) error {
	current := ir.TopLevelIDs(c.Elements)
	want := slices.Clone(p.PreviousOrder)
	slices.Sort(current)
	slices.Sort(want)
	if !slices.Equal(current, want) {
		return fmt.Errorf("%w: top-level elements differ from the recorded order", ErrInconsistentLog)
	}

	byID := make(map[string]ir.Element, len(c.Elements))
	for _, el := range c.Elements {
		byID[el.ID] = el
	}
	restored := make([]ir.Element, len(p.PreviousOrder))
	for i, id := range p.PreviousOrder {
		restored[i] = byID[id]
	}
	c.Elements = restored
	return nil
}
