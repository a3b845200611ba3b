package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDecodePropertiesTypedAndExtra(t *testing.T) {
	p, err := DecodeProperties(TypeVideo, Object{
		"src":          String("clip.mp4"),
		"volume":       Float(0.5),
		"playbackRate": Int(2),
		"startFrom":    Int(15),
		"filter":       String("sepia"),
	})
	require.NoError(t, err)

	video, ok := p.(*VideoProps)
	require.True(t, ok)
	assert.Equal(t, "clip.mp4", video.Src)
	require.NotNil(t, video.Volume)
	assert.Equal(t, 0.5, *video.Volume)
	require.NotNil(t, video.PlaybackRate)
	assert.Equal(t, 2.0, *video.PlaybackRate)
	require.NotNil(t, video.StartFrom)
	assert.Equal(t, int64(15), *video.StartFrom)
	assert.Nil(t, video.Opacity)
	assert.Equal(t, Object{"filter": String("sepia")}, video.Extra)
}

func TestDecodePropertiesWrongKind(t *testing.T) {
	_, err := DecodeProperties(TypeText, Object{"fontSize": String("big"), "color": Int(3)})
	require.Error(t, err)
	assert.Equal(t, KindMalformed, ErrorKindOf(err))
	assert.Len(t, multierr.Errors(err), 2, "every bad key is reported")
}

func TestDecodePropertiesUnknownType(t *testing.T) {
	_, err := DecodeProperties(ElementType("hologram"), Object{})
	require.Error(t, err)
}

func TestPropertiesObjectRoundTrip(t *testing.T) {
	for _, et := range ElementTypes {
		t.Run(string(et), func(t *testing.T) {
			obj := Object{"opacity": Float(0.25), "custom": Array{Int(1)}}
			p, err := DecodeProperties(et, obj)
			require.NoError(t, err)
			assert.Equal(t, et, p.ElementType())
			assert.Equal(t, obj, p.Object())
		})
	}
}

func TestMergePropertiesShallow(t *testing.T) {
	p, err := DecodeProperties(TypeText, Object{"text": String("Hello"), "color": String("#000000"), "tag": String("x")})
	require.NoError(t, err)

	merged, err := MergeProperties(p, Object{"color": String("#ff0000"), "tag": Null{}})
	require.NoError(t, err)

	text := merged.(*TextProps)
	assert.Equal(t, "Hello", text.Text, "keys not mentioned survive")
	assert.Equal(t, "#ff0000", text.Color)
	assert.Nil(t, text.Extra, "null removes a key")

	// The original is untouched
	assert.Equal(t, "#000000", p.(*TextProps).Color)
	assert.Equal(t, Object{"tag": String("x")}, p.(*TextProps).Extra)
}

func TestCloneProperties(t *testing.T) {
	v := 0.3
	original := &ShapeProps{Shape: "circle", Opacity: &v, Extra: Object{"k": Object{"n": Int(1)}}}
	clone := CloneProperties(original).(*ShapeProps)

	*clone.Opacity = 0.9
	clone.Extra["k"].(Object)["n"] = Int(2)

	assert.Equal(t, 0.3, *original.Opacity)
	assert.Equal(t, Int(1), original.Extra["k"].(Object)["n"])
}

func TestValidatePropertiesRanges(t *testing.T) {
	tests := []struct {
		name  string
		et    ElementType
		props Object
		kind  ErrorKind
	}{
		{"volume above one", TypeAudio, Object{"src": String("a.mp3"), "volume": Float(1.5)}, KindOutOfBounds},
		{"negative volume", TypeVideo, Object{"src": String("v.mp4"), "volume": Float(-0.1)}, KindOutOfBounds},
		{"opacity above one", TypeText, Object{"opacity": Int(2)}, KindOutOfBounds},
		{"zero playback rate", TypeVideo, Object{"src": String("v.mp4"), "playbackRate": Int(0)}, KindOutOfBounds},
		{"playback rate above ten", TypeAudio, Object{"src": String("a.mp3"), "playbackRate": Float(10.5)}, KindOutOfBounds},
		{"volume as extra", TypeText, Object{"volume": Int(3)}, KindOutOfBounds},
		{"extra volume wrong kind", TypeShape, Object{"volume": String("loud")}, KindMalformed},
		{"missing src", TypeImage, Object{}, KindMalformed},
		{"negative startFrom", TypeVideo, Object{"src": String("v.mp4"), "startFrom": Int(-1)}, KindOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeProperties(tt.et, tt.props)
			require.NoError(t, err)
			err = ValidateProperties("properties", p)
			require.Error(t, err)
			assert.Equal(t, tt.kind, ErrorKindOf(err))
		})
	}
}

func TestValidatePropertiesBoundaries(t *testing.T) {
	p, err := DecodeProperties(TypeVideo, Object{
		"src":          String("v.mp4"),
		"volume":       Int(0),
		"opacity":      Int(1),
		"playbackRate": Int(10),
	})
	require.NoError(t, err)
	assert.NoError(t, ValidateProperties("properties", p))
}
