package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestedElements builds:
//
//	a (text)
//	g (sequence)
//	  g.1 (text)
//	  g.2 (sequence)
//	    g.2.1 (image)
//	b (video)
func nestedElements() []Element {
	return []Element{
		{ID: "a", Type: TypeText, DurationInFrames: 30, Properties: &TextProps{}},
		{ID: "g", Type: TypeSequence, DurationInFrames: 90, Properties: &SequenceProps{}, Children: []Element{
			{ID: "g.1", Type: TypeText, DurationInFrames: 30, Properties: &TextProps{}},
			{ID: "g.2", Type: TypeSequence, DurationInFrames: 30, Properties: &SequenceProps{}, Children: []Element{
				{ID: "g.2.1", Type: TypeImage, DurationInFrames: 30, Properties: &ImageProps{Src: "logo.png"}},
			}},
		}},
		{ID: "b", Type: TypeVideo, DurationInFrames: 30, Properties: &VideoProps{Src: "b.mp4"}},
	}
}

func TestWalkPreOrder(t *testing.T) {
	var visited []string
	var depths []int
	Walk(nestedElements(), func(e *Element, depth int) bool {
		visited = append(visited, e.ID)
		depths = append(depths, depth)
		return true
	})

	assert.Equal(t, []string{"a", "g", "g.1", "g.2", "g.2.1", "b"}, visited)
	assert.Equal(t, []int{0, 0, 1, 1, 2, 0}, depths)
}

func TestWalkStopsEarly(t *testing.T) {
	var visited []string
	Walk(nestedElements(), func(e *Element, _ int) bool {
		visited = append(visited, e.ID)
		return e.ID != "g.1"
	})
	assert.Equal(t, []string{"a", "g", "g.1"}, visited)
}

func TestFindPathAndAt(t *testing.T) {
	elems := nestedElements()

	path, ok := FindPath(elems, "g.2.1")
	require.True(t, ok)
	assert.Equal(t, Path{1, 1, 0}, path)
	assert.Equal(t, "g.2.1", At(elems, path).ID)
	assert.Equal(t, "g.2", Parent(elems, path))

	_, ok = FindPath(elems, "missing")
	assert.False(t, ok)

	assert.Nil(t, At(elems, Path{7}))
	assert.Equal(t, "", Parent(elems, Path{0}))
}

func TestRemoveAtNested(t *testing.T) {
	elems := CloneElements(nestedElements())

	out, ok := RemoveAt(elems, Path{1, 0})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "g", "g.2", "g.2.1", "b"}, CollectIDs(out))

	out, ok = RemoveAt(out, Path{0})
	require.True(t, ok)
	assert.Equal(t, []string{"g", "b"}, TopLevelIDs(out))

	_, ok = RemoveAt(out, Path{5})
	assert.False(t, ok)
}

func TestInsertChildClamps(t *testing.T) {
	elems := CloneElements(nestedElements())
	el := Element{ID: "new", Type: TypeShape, DurationInFrames: 1, Properties: &ShapeProps{}}

	out, ok := InsertChild(elems, "g", 99, el)
	require.True(t, ok)
	g := At(out, Path{1})
	assert.Equal(t, "new", g.Children[len(g.Children)-1].ID)

	out, ok = InsertChild(out, "", 0, Element{ID: "first", Type: TypeShape, DurationInFrames: 1, Properties: &ShapeProps{}})
	require.True(t, ok)
	assert.Equal(t, "first", out[0].ID)

	_, ok = InsertChild(out, "gone", 0, el)
	assert.False(t, ok)
}

func TestCloneElementsIsDeep(t *testing.T) {
	original := nestedElements()
	original[0].Animations = []Animation{{Property: "opacity", Keyframes: []Keyframe{{Frame: 0, Value: 0}}}}
	clone := CloneElements(original)

	clone[1].Children[0].Label = "changed"
	clone[0].Animations[0].Keyframes[0].Value = 1
	clone[2].Properties.(*VideoProps).Src = "other.mp4"

	assert.Equal(t, "", original[1].Children[0].Label)
	assert.Equal(t, 0.0, original[0].Animations[0].Keyframes[0].Value)
	assert.Equal(t, "b.mp4", original[2].Properties.(*VideoProps).Src)
}

func TestCompositionClone(t *testing.T) {
	c := sampleComposition()
	idx := 0
	c.Patches = []Patch{{ID: "p", Operation: OpDelete, Changes: Object{}, PreviousIndex: &idx, PreviousOrder: []string{"a"}}}

	clone := c.Clone()
	assert.Equal(t, c, clone)

	*clone.Patches[0].PreviousIndex = 3
	clone.Patches[0].PreviousOrder[0] = "z"
	assert.Equal(t, 0, *c.Patches[0].PreviousIndex)
	assert.Equal(t, "a", c.Patches[0].PreviousOrder[0])
}
