package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/reel/internal/ir"
)

func el(id string, t ir.ElementType, label string, children ...ir.Element) ir.Element {
	props, _ := ir.DecodeProperties(t, ir.Object{})
	return ir.Element{ID: id, Type: t, Label: label, DurationInFrames: 30, Properties: props, Children: children}
}

// tree is:
//
//	v1 video "Opening shot"
//	t1 text  "Intro"
//	g1 sequence "Lower third"
//	  t2 text "intro subtitle"
//	  v2 video "B-roll"
//	v3 video "Closing"
func tree() []ir.Element {
	return []ir.Element{
		el("v1", ir.TypeVideo, "Opening shot"),
		el("t1", ir.TypeText, "Intro"),
		el("g1", ir.TypeSequence, "Lower third",
			el("t2", ir.TypeText, "intro subtitle"),
			el("v2", ir.TypeVideo, "B-roll"),
		),
		el("v3", ir.TypeVideo, "Closing"),
	}
}

func TestResolveByID(t *testing.T) {
	assert.Equal(t, []string{"v1"}, ResolveIDs(ir.ByID("v1"), tree()))
	assert.Equal(t, []string{"v2"}, ResolveIDs(ir.ByID("v2"), tree()), "nested ids are found")
	assert.Empty(t, ResolveIDs(ir.ByID("zzz"), tree()))
}

func TestResolveByLabelCaseInsensitiveSubstring(t *testing.T) {
	assert.Equal(t, []string{"t1", "t2"}, ResolveIDs(ir.ByLabel("INTRO"), tree()))
	assert.Equal(t, []string{"v2"}, ResolveIDs(ir.ByLabel("roll"), tree()))
	assert.Empty(t, ResolveIDs(ir.ByLabel("outro"), tree()))
}

func TestResolveByExactLabel(t *testing.T) {
	assert.Equal(t, []string{"t1"}, ResolveIDs(ir.ByExactLabel("intro"), tree()))
	assert.Empty(t, ResolveIDs(ir.ByExactLabel("intr"), tree()))
}

func TestResolveByLabelUnicodeFolding(t *testing.T) {
	elems := []ir.Element{el("s", ir.TypeText, "Stra\u00DFe"), el("c", ir.TypeText, "cafe\u0301")}

	assert.Equal(t, []string{"s"}, ResolveIDs(ir.ByLabel("STRASSE"), elems))
	assert.Equal(t, []string{"c"}, ResolveIDs(ir.ByExactLabel("CAF\u00C9"), elems), "NFC and NFD forms match")
}

func TestResolveByIndexTopLevelOnly(t *testing.T) {
	assert.Equal(t, []string{"g1"}, ResolveIDs(ir.ByIndex(2), tree()))
	assert.Equal(t, []string{"v3"}, ResolveIDs(ir.ByIndex(3), tree()), "children are not flattened in")
	assert.Empty(t, ResolveIDs(ir.ByIndex(4), tree()))
	assert.Empty(t, ResolveIDs(ir.ByIndex(0), nil))
	assert.Empty(t, ResolveIDs(ir.ByIndex(-1), tree()))
}

func TestResolveByTypeDepthFirst(t *testing.T) {
	assert.Equal(t, []string{"v1", "v2", "v3"}, ResolveIDs(ir.ByType(ir.TypeVideo), tree()))
	assert.Equal(t, []string{"v2"}, ResolveIDs(ir.ByTypeIndex(ir.TypeVideo, 1), tree()))
	assert.Empty(t, ResolveIDs(ir.ByTypeIndex(ir.TypeVideo, 3), tree()))
	assert.Empty(t, ResolveIDs(ir.ByTypeIndex(ir.TypeVideo, -1), tree()))
	assert.Equal(t, []string{"g1"}, ResolveIDs(ir.ByType(ir.ElementType("group")), tree()))
}

func TestResolveByTypeIgnoresInterleavedElements(t *testing.T) {
	elems := []ir.Element{
		el("A", ir.TypeVideo, ""),
		el("T", ir.TypeText, ""),
		el("B", ir.TypeVideo, ""),
		el("C", ir.TypeVideo, ""),
	}
	assert.Equal(t, []string{"B"}, ResolveIDs(ir.ByTypeIndex(ir.TypeVideo, 1), elems))
}

func TestResolveIsPureAndOrderStable(t *testing.T) {
	elems := tree()
	selectors := []ir.Selector{
		ir.ByID("v2"), ir.ByLabel("o"), ir.ByIndex(1), ir.ByType(ir.TypeText), ir.ByTypeIndex(ir.TypeVideo, 2),
	}

	for _, sel := range selectors {
		t.Run(sel.String(), func(t *testing.T) {
			first := ResolveIDs(sel, elems)
			second := ResolveIDs(sel, elems)
			assert.Equal(t, first, second)
		})
	}
	assert.Equal(t, tree(), elems, "resolution must not mutate its input")
}

func TestResolveInvalidSelector(t *testing.T) {
	assert.Empty(t, Resolve(ir.Selector{}, tree()))
}

func TestResolveReturnsPointersIntoInput(t *testing.T) {
	elems := tree()
	got := Resolve(ir.ByID("t2"), elems)
	assert.Same(t, &elems[2].Children[0], got[0])
}
