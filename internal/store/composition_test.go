package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reel/internal/history"
	"github.com/roach88/reel/internal/ir"
)

func TestCreateLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := createTestComposition("demo")

	require.NoError(t, s.Create(ctx, c))

	got, err := s.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, ir.MustDigest(c), ir.MustDigest(got))
	assert.Equal(t, int64(1), got.Version)
	assert.NotNil(t, got.Patches)
}

func TestCreate_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.Create(ctx, createTestComposition("demo")))
	err := s.Create(ctx, createTestComposition("demo"))
	assert.ErrorIs(t, err, ErrExists)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := createTestStore(t).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	x := testExecutor()

	base := createTestComposition("demo")
	require.NoError(t, s.Create(ctx, base))

	edited := applyEdit(t, x, base, ir.EditPlan{
		Operation: ir.OpMove,
		Selector:  selectID("v1"),
		Changes:   ir.Object{"from": ir.Int(90)},
	})
	require.NoError(t, s.Save(ctx, edited, base.Version))

	got, err := s.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, ir.MustDigest(edited), ir.MustDigest(got))

	// A second writer that also loaded version 1 loses.
	other := applyEdit(t, x, base, ir.EditPlan{
		Operation: ir.OpDelete,
		Selector:  selectID("t1"),
	})
	err = s.Save(ctx, other, base.Version)
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Contains(t, err.Error(), "stored version is 2")

	// The losing write changed nothing.
	got, err = s.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, ir.MustDigest(edited), ir.MustDigest(got))
}

func TestSave_NotFound(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	c := createTestComposition("ghost")
	c.Version = 2
	err := s.Save(ctx, c, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_VersionMustAdvance(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := createTestComposition("demo")
	require.NoError(t, s.Create(ctx, c))

	err := s.Save(ctx, c, c.Version)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}

func TestListPatches_MirrorsDocument(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	x := testExecutor()

	c := createTestComposition("demo")
	require.NoError(t, s.Create(ctx, c))

	c1 := applyEdit(t, x, c, ir.EditPlan{
		Operation: ir.OpUpdate,
		Selector:  selectID("t1"),
		Changes:   ir.Object{"label": ir.String("Opening")},
	})
	c2 := applyEdit(t, x, c1, ir.EditPlan{
		Operation: ir.OpAdd,
		Changes:   ir.Object{"type": ir.String("shape")},
	})
	require.NoError(t, s.Save(ctx, c2, c.Version))

	patches, err := s.ListPatches(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, ir.OpUpdate, patches[0].Operation)
	assert.Equal(t, "t1", patches[0].TargetID)
	assert.Equal(t, int64(2), patches[0].Seq)
	assert.Equal(t, ir.OpAdd, patches[1].Operation)
	assert.Equal(t, c2.Patches[1].CreatedIDs, patches[1].CreatedIDs)

	// Undo pops the tail; the rows follow on the next save.
	reverted, err := history.Revert(c2, c2.Patches[1])
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, reverted, c2.Version))

	patches, err = s.ListPatches(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, ir.OpUpdate, patches[0].Operation)
}

func TestListPatches_NotFound(t *testing.T) {
	_, err := createTestStore(t).ListPatches(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	sums, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sums)
	assert.NotNil(t, sums)

	x := testExecutor()
	b := createTestComposition("b")
	require.NoError(t, s.Create(ctx, b))
	require.NoError(t, s.Create(ctx, createTestComposition("a")))

	b2 := applyEdit(t, x, b, ir.EditPlan{Operation: ir.OpDelete, Selector: selectID("v1")})
	require.NoError(t, s.Save(ctx, b2, 1))

	sums, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "a", sums[0].ID)
	assert.Equal(t, 0, sums[0].Patches)
	assert.Equal(t, Summary{ID: "b", Version: 2, Digest: ir.MustDigest(b2), Patches: 1}, sums[1])
}

func TestDelete_CascadesPatches(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	x := testExecutor()

	c := createTestComposition("demo")
	require.NoError(t, s.Create(ctx, c))
	c2 := applyEdit(t, x, c, ir.EditPlan{Operation: ir.OpDelete, Selector: selectID("v1")})
	require.NoError(t, s.Save(ctx, c2, 1))

	require.NoError(t, s.Delete(ctx, "demo"))
	assert.ErrorIs(t, s.Delete(ctx, "demo"), ErrNotFound)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM patches").Scan(&n))
	assert.Zero(t, n)
}

func TestLoad_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	require.NoError(t, s.Create(ctx, createTestComposition("demo")))

	_, err := s.db.Exec(`UPDATE compositions SET document = replace(document, 'Hello', 'Howdy')`)
	require.NoError(t, err)

	_, err = s.Load(ctx, "demo")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCreate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := createTestStore(t).Create(ctx, createTestComposition("demo"))
	assert.Error(t, err)
}
