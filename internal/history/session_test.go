package history

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

func newTestSession(comp *ir.Composition) *Session {
	exec := engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(discard),
	)
	return NewSession(exec, comp, WithLogger(discard))
}

func fixture() *ir.Composition {
	return testutil.NewComposition("comp-1",
		testutil.Text("t1", "Intro", "Hello", 0, 60),
		testutil.Video("v1", "Clip A", "a.mp4", 0, 90),
		testutil.Audio("a1", "Music", "music.mp3", 0.5, 0, 300),
		testutil.Sequence("g", "Group", 0, 120,
			testutil.Image("g.1", "Logo", "logo.png", 0, 60),
			testutil.Text("g.2", "Caption", "Hi", 30, 30),
		),
	)
}

func sel(s ir.Selector) *ir.Selector {
	return &s
}

func mustApply(t *testing.T, s *Session, plan ir.EditPlan) *engine.Outcome {
	t.Helper()
	out, err := s.Apply(plan, "")
	require.NoError(t, err)
	require.Equal(t, engine.StatusSuccess, out.Status)
	return out
}

func TestSessionUndoAdd(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpAdd,
		Changes:   ir.Object{"type": ir.String("text"), "label": ir.String("Title")},
	})
	require.True(t, s.CanUndo())

	out, err := s.Undo()
	require.NoError(t, err)

	assert.Equal(t, `Undid add of text "Title"`, out.Receipt)
	assert.Equal(t, ir.OpAdd, out.Patch.Operation)

	c := s.Composition()
	assert.Equal(t, orig.Elements, c.Elements)
	assert.Empty(t, c.Patches)
	assert.Equal(t, int64(3), c.Version, "add and undo each bump the version")
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())
}

func TestSessionUndoUpdate(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpUpdate,
		Selector:  sel(ir.ByLabel("intro")),
		Changes:   ir.Object{"properties": ir.Object{"color": ir.String("#ff0000")}, "label": ir.String("Opening")},
	})

	out, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, `Undid update of text "Intro"`, out.Receipt)
	assert.Equal(t, orig.Elements[0], s.Composition().Elements[0])
}

func TestSessionUndoMove(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpMove,
		Selector:  sel(ir.ByID("v1")),
		Changes:   ir.Object{"from": ir.Int(45)},
	})
	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, orig.Elements, s.Composition().Elements)
}

func TestSessionUndoDeleteRestoresNestedPosition(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	mustApply(t, s, ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByID("g.1"))})
	require.Len(t, s.Composition().Elements[3].Children, 1)

	out, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, `Undid delete of image "Logo"`, out.Receipt)

	group := s.Composition().Elements[3]
	assert.Equal(t, []string{"g.1", "g.2"}, ir.TopLevelIDs(group.Children))
	assert.Equal(t, orig.Elements, s.Composition().Elements)
}

func TestSessionUndoDeleteRestoresTopLevelIndex(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	mustApply(t, s, ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByIndex(1))})
	_, err := s.Undo()
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "v1", "a1", "g"}, ir.TopLevelIDs(s.Composition().Elements))
}

func TestSessionUndoReorder(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpReorder,
		Changes:   ir.Object{"order": ir.Array{ir.String("g"), ir.String("a1"), ir.String("v1"), ir.String("t1")}},
	})
	require.Equal(t, []string{"g", "a1", "v1", "t1"}, ir.TopLevelIDs(s.Composition().Elements))

	out, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Undid reorder of 4 elements", out.Receipt)
	assert.Equal(t, []string{"t1", "v1", "a1", "g"}, ir.TopLevelIDs(s.Composition().Elements))
}

func TestSessionUndoIsLIFO(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{Operation: ir.OpMove, Selector: sel(ir.ByID("v1")), Changes: ir.Object{"from": ir.Int(10)}})
	mustApply(t, s, ir.EditPlan{Operation: ir.OpMove, Selector: sel(ir.ByID("v1")), Changes: ir.Object{"from": ir.Int(20)}})

	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.Composition().Elements[1].From)

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Composition().Elements[1].From)

	_, err = s.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestSessionRedoReappliesUpdate(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpUpdate,
		Selector:  sel(ir.ByID("t1")),
		Changes:   ir.Object{"properties": ir.Object{"color": ir.String("#ff0000")}},
	})
	_, err := s.Undo()
	require.NoError(t, err)

	out, err := s.Redo()
	require.NoError(t, err)
	assert.Equal(t, `Redid update of text "Intro"`, out.Receipt)

	c := s.Composition()
	assert.Equal(t, "#ff0000", c.Elements[0].Properties.(*ir.TextProps).Color)
	assert.Equal(t, int64(4), c.Version)
	require.Len(t, c.Patches, 1)
	assert.Equal(t, "t1", c.Patches[0].TargetID)
	assert.Equal(t, "", c.Patches[0].PreviousState.Properties.(*ir.TextProps).Color,
		"redo records a fresh previous state")
	assert.False(t, s.CanRedo())
}

func TestSessionRedoAddKeepsID(t *testing.T) {
	s := newTestSession(fixture())

	first := mustApply(t, s, ir.EditPlan{
		Operation: ir.OpAdd,
		Changes:   ir.Object{"type": ir.String("shape"), "properties": ir.Object{"shape": ir.String("circle")}},
	})
	addedID := first.Patch.TargetID

	_, err := s.Undo()
	require.NoError(t, err)
	_, err = s.Redo()
	require.NoError(t, err)

	elems := s.Composition().Elements
	assert.Equal(t, addedID, elems[len(elems)-1].ID)
}

func TestSessionRedoAfterReorderUndo(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{
		Operation: ir.OpReorder,
		Changes:   ir.Object{"order": ir.Array{ir.String("a1"), ir.String("t1"), ir.String("v1"), ir.String("g")}},
	})
	_, err := s.Undo()
	require.NoError(t, err)
	_, err = s.Redo()
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "t1", "v1", "g"}, ir.TopLevelIDs(s.Composition().Elements))
}

func TestSessionFreshEditClearsRedo(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByID("a1"))})
	_, err := s.Undo()
	require.NoError(t, err)
	require.True(t, s.CanRedo())

	mustApply(t, s, ir.EditPlan{Operation: ir.OpMove, Selector: sel(ir.ByID("v1")), Changes: ir.Object{"from": ir.Int(5)}})
	assert.False(t, s.CanRedo())

	_, err = s.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestSessionRejectedEditKeepsRedo(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByID("a1"))})
	_, err := s.Undo()
	require.NoError(t, err)
	before := ir.MustDigest(s.Composition())

	_, err = s.Apply(ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByID("missing"))}, "")
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))

	assert.True(t, s.CanRedo())
	assert.Equal(t, before, ir.MustDigest(s.Composition()))
}

func TestSessionAmbiguousKeepsState(t *testing.T) {
	s := newTestSession(fixture())
	before := ir.MustDigest(s.Composition())

	out, err := s.Apply(ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByType(ir.TypeText))}, "")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusAmbiguous, out.Status)
	assert.Len(t, out.Candidates, 2)
	assert.Equal(t, before, ir.MustDigest(s.Composition()))
}

func TestSessionUndoAllRestoresElements(t *testing.T) {
	orig := fixture()
	s := newTestSession(orig)

	plans := []ir.EditPlan{
		{Operation: ir.OpAdd, Changes: ir.Object{"type": ir.String("text"), "label": ir.String("Outro")}},
		{Operation: ir.OpUpdate, Selector: sel(ir.ByID("a1")), Changes: ir.Object{"properties": ir.Object{"volume": ir.Float(0.1)}}},
		{Operation: ir.OpDelete, Selector: sel(ir.ByID("g"))},
		{Operation: ir.OpMove, Selector: sel(ir.ByID("t1")), Changes: ir.Object{"durationInFrames": ir.Int(15)}},
	}
	for _, p := range plans {
		mustApply(t, s, p)
	}
	for s.CanUndo() {
		_, err := s.Undo()
		require.NoError(t, err)
	}

	c := s.Composition()
	assert.Equal(t, orig.Elements, c.Elements)
	assert.Equal(t, int64(1+2*len(plans)), c.Version)
}

func TestSessionResetDropsRedo(t *testing.T) {
	s := newTestSession(fixture())

	mustApply(t, s, ir.EditPlan{Operation: ir.OpDelete, Selector: sel(ir.ByID("a1"))})
	_, err := s.Undo()
	require.NoError(t, err)

	s.Reset(fixture())
	assert.False(t, s.CanRedo())
	assert.False(t, s.CanUndo())
}

func TestSessionUndoAddRemovesOnlyNewElement(t *testing.T) {
	exec := engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDs("el")),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(discard),
	)
	s := NewSession(exec, testutil.NewComposition("comp",
		testutil.Text("el-1", "Intro", "Hello", 0, 30),
	), WithLogger(discard))

	out := mustApply(t, s, ir.EditPlan{
		Operation: ir.OpAdd,
		Changes:   ir.Object{"type": ir.String("shape")},
	})
	assert.NotEqual(t, "el-1", out.Patch.TargetID)

	_, err := s.Undo()
	require.NoError(t, err)

	elems := s.Composition().Elements
	require.Len(t, elems, 1)
	assert.Equal(t, "el-1", elems[0].ID)
	assert.Equal(t, ir.TypeText, elems[0].Type)
}
