package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// Receipts are one-line, human-readable confirmations of an applied edit.
// They name elements the way a user would: by type and label, falling back
// to a short id for unlabeled elements.

func addedReceipt(el *ir.Element, fps int64) string {
	r := fmt.Sprintf("Added %s at %s", el.DisplayName(), ir.Timecode(el.From, fps))
	if n := countDescendants(el); n > 0 {
		r += fmt.Sprintf(" with %s", plural(n, "child", "children"))
	}
	return r
}

// updatedReceipt lists the changed fields, with property keys spelled out:
//
//	Updated text "Intro" (properties: color, fontSize)
//	Updated video "Clip" (from, label)
func updatedReceipt(prev *ir.Element, changes ir.Object) string {
	var fields []string
	var props []string
	for _, k := range changes.SortedKeys() {
		if k != "properties" {
			fields = append(fields, k)
			continue
		}
		if obj, ok := changes[k].(ir.Object); ok {
			props = obj.SortedKeys()
		}
	}
	if len(props) > 0 {
		fields = append(fields, "properties: "+strings.Join(props, ", "))
	}
	return fmt.Sprintf("Updated %s (%s)", prev.DisplayName(), strings.Join(fields, "; "))
}

func deletedReceipt(prev *ir.Element) string {
	r := "Deleted " + prev.DisplayName()
	if n := countDescendants(prev); n > 0 {
		r += fmt.Sprintf(" and %s", plural(n, "child", "children"))
	}
	return r
}

func movedReceipt(el *ir.Element) string {
	return fmt.Sprintf("Moved %s to frame %d for %s", el.DisplayName(), el.From, plural(el.DurationInFrames, "frame", "frames"))
}

func reorderedReceipt(n int) string {
	return "Reordered " + plural(int64(n), "element", "elements")
}

// Describe names the effect of a patch for undo and redo messages, e.g.
// `update of text "Intro"` or `reorder of 3 elements`. elems is the
// composition the patch applies to, used to name added elements.
func Describe(p ir.Patch, elems []ir.Element) string {
	switch {
	case p.Operation == ir.OpReorder:
		return fmt.Sprintf("reorder of %s", plural(int64(len(p.PreviousOrder)), "element", "elements"))
	case p.PreviousState != nil:
		return fmt.Sprintf("%s of %s", p.Operation, p.PreviousState.DisplayName())
	}
	if path, ok := ir.FindPath(elems, p.TargetID); ok {
		return fmt.Sprintf("%s of %s", p.Operation, ir.At(elems, path).DisplayName())
	}
	return fmt.Sprintf("%s of %s", p.Operation, ir.ShortID(p.TargetID))
}

func countDescendants(el *ir.Element) int64 {
	var n int64
	ir.Walk(el.Children, func(*ir.Element, int) bool {
		n++
		return true
	})
	return n
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
