package engine

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints element and patch ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time. Ids are never reused, which is what lets an element id
// stay the sole stable handle across edits.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Format: "0192f3a1-7c00-7abc-8def-0123456789ab" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("el-1", "patch-1")
//	gen.Generate() // "el-1"
//	gen.Generate() // "patch-1"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed. This is fail-fast on purpose: a test
// that mints more ids than it declared is misconfigured.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// pinnedGenerator hands out previously recorded ids first, then falls back.
// Redo of an add uses it so the re-created element keeps its original ids.
type pinnedGenerator struct {
	pinned   []string
	fallback IDGenerator
}

func (g *pinnedGenerator) Generate() string {
	if len(g.pinned) > 0 {
		id := g.pinned[0]
		g.pinned = g.pinned[1:]
		return id
	}
	return g.fallback.Generate()
}
