package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reel/internal/ir"
)

func TestBuildersProduceValidCompositions(t *testing.T) {
	c := NewComposition("comp",
		Video("v", "Clip", "clip.mp4", 0, 90),
		Audio("a", "Music", "music.mp3", 0.5, 0, 300),
		Text("t", "Intro", "Hello", 0, 60),
		Image("i", "Logo", "logo.png", 30, 60),
		Shape("s", "", "rect", "#000000", 0, 30),
		Sequence("g", "Group", 0, 120, Text("g.1", "Caption", "Hi", 0, 30)),
	)

	require.NoError(t, ir.ValidateComposition(c))
	assert.Equal(t, int64(1), c.Version)
	assert.Len(t, c.Elements, 6)
}
