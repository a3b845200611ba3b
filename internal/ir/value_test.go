package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check: every variant implements Value
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(0.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00, which sorts before
	// U+FF61 (FF61) in UTF-16 even though it sorts after it in UTF-8.
	obj := Object{
		"\U0001F600": Int(1),
		"\uFF61":     Int(2),
	}

	assert.Equal(t, []string{"\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestUnmarshalValueNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"30", Int(30)},
		{"-4", Int(-4)},
		{"0.5", Float(0.5)},
		{"30.0", Float(30)},
		{"1e3", Float(1000)},
		{"99999999999999999999", Float(1e20)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := UnmarshalValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestUnmarshalValueTree(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"from": 30, "properties": {"color": "#ff0000", "volume": 0.5, "gone": null}, "tags": ["a", true]}`))
	require.NoError(t, err)

	expected := Object{
		"from": Int(30),
		"properties": Object{
			"color":  String("#ff0000"),
			"volume": Float(0.5),
			"gone":   Null{},
		},
		"tags": Array{String("a"), Bool(true)},
	}
	assert.Equal(t, expected, v)
}

func TestUnmarshalValueRejectsTrailingData(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
}

func TestObjectUnmarshalJSONRejectsNonObject(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`[1,2]`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

func TestFromAnyYAML(t *testing.T) {
	var raw any
	require.NoError(t, yaml.Unmarshal([]byte("from: 30\nvolume: 0.25\nlabel: Intro\nlist: [1, two]\n"), &raw))

	v, err := FromAny(raw)
	require.NoError(t, err)

	expected := Object{
		"from":   Int(30),
		"volume": Float(0.25),
		"label":  String("Intro"),
		"list":   Array{Int(1), String("two")},
	}
	assert.Equal(t, expected, v)
}

func TestToAnyRoundTrip(t *testing.T) {
	original := Object{
		"n":   Int(3),
		"f":   Float(0.5),
		"s":   String("x"),
		"arr": Array{Bool(false), Null{}},
	}

	back, err := FromAny(ToAny(original))
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestObjectCloneIsDeep(t *testing.T) {
	original := Object{"nested": Object{"k": Int(1)}, "arr": Array{Int(1)}}
	clone := original.Clone()

	clone["nested"].(Object)["k"] = Int(2)
	clone["arr"].(Array)[0] = Int(9)

	assert.Equal(t, Int(1), original["nested"].(Object)["k"])
	assert.Equal(t, Int(1), original["arr"].(Array)[0])
}

func TestAsIntAcceptsIntegralFloats(t *testing.T) {
	n, ok := AsInt(Float(30))
	assert.True(t, ok)
	assert.Equal(t, int64(30), n)

	_, ok = AsInt(Float(30.5))
	assert.False(t, ok)

	_, ok = AsInt(String("30"))
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", KindOf(Null{}))
	assert.Equal(t, "integer", KindOf(Int(1)))
	assert.Equal(t, "number", KindOf(Float(1.5)))
	assert.Equal(t, "object", KindOf(Object{}))
}
