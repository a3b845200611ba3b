package store

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/testutil"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testExecutor() *engine.Executor {
	return engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDs("id")),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// createTestComposition returns a small composition with no history.
func createTestComposition(id string) *ir.Composition {
	return testutil.NewComposition(id,
		testutil.Text("t1", "Title", "Hello", 0, 60),
		testutil.Video("v1", "Clip", "clip.mp4", 60, 120),
	)
}

// applyEdit applies a plan and fails the test on error.
func applyEdit(t *testing.T, x *engine.Executor, c *ir.Composition, plan ir.EditPlan) *ir.Composition {
	t.Helper()
	out, err := x.Apply(c, plan, "")
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	return out.Composition
}

func selectID(id string) *ir.Selector {
	sel := ir.ByID(id)
	return &sel
}
