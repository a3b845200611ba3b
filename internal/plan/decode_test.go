package plan

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
)

func TestDecode_Update(t *testing.T) {
	p, err := Decode([]byte(`{
		"operation": "update",
		"selector": {"label": "intro"},
		"changes": {"label": "Opening", "properties": {"fontSize": 48}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, ir.OpUpdate, p.Operation)
	require.NotNil(t, p.Selector)
	require.NotNil(t, p.Selector.Label)
	assert.Equal(t, "intro", *p.Selector.Label)
	assert.Equal(t, ir.String("Opening"), p.Changes["label"])
	props, ok := p.Changes["properties"].(ir.Object)
	require.True(t, ok)
	n, ok := ir.AsInt(props["fontSize"])
	require.True(t, ok)
	assert.Equal(t, int64(48), n)
}

func TestDecode_AddWithoutSelector(t *testing.T) {
	p, err := Decode([]byte(`{"operation": "add", "changes": {"type": "text", "properties": {"text": "Hi"}}}`))
	require.NoError(t, err)
	assert.Equal(t, ir.OpAdd, p.Operation)
	assert.Nil(t, p.Selector)
}

func TestDecode_TypeIndexSelector(t *testing.T) {
	p, err := Decode([]byte(`{"operation": "delete", "selector": {"type": "video", "index": 1}}`))
	require.NoError(t, err)
	require.NotNil(t, p.Selector.Type)
	assert.Equal(t, ir.TypeVideo, *p.Selector.Type)
	assert.Equal(t, 1, *p.Selector.Index)
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		plan string
	}{
		{"empty", ``},
		{"not an object", `["update"]`},
		{"invalid JSON", `{"operation": `},
		{"unknown operation", `{"operation": "explode", "selector": {"id": "a"}}`},
		{"missing operation", `{"selector": {"id": "a"}}`},
		{"unknown top-level field", `{"operation": "delete", "selector": {"id": "a"}, "force": true}`},
		{"unknown selector field", `{"operation": "delete", "selector": {"name": "a"}}`},
		{"unknown element type", `{"operation": "delete", "selector": {"type": "hologram"}}`},
		{"empty id", `{"operation": "delete", "selector": {"id": ""}}`},
		{"changes not an object", `{"operation": "update", "selector": {"id": "a"}, "changes": [1]}`},
		{"two selector variants", `{"operation": "delete", "selector": {"id": "a", "index": 0}}`},
		{"selector on add", `{"operation": "add", "selector": {"id": "a"}, "changes": {"type": "text"}}`},
		{"missing selector", `{"operation": "delete"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.plan))
			require.Error(t, err)
			assert.True(t, engine.IsMalformed(err), "want Malformed, got %v", err)
		})
	}
}

func TestDecode_SchemaErrorUnwraps(t *testing.T) {
	_, err := Decode([]byte(`{"operation": "delete", "selector": {"index": "first"}}`))
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "schema")
}

func TestDecodeYAML(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "update.yaml"))
	require.NoError(t, err)

	p, err := DecodeYAML(data)
	require.NoError(t, err)
	assert.Equal(t, ir.OpUpdate, p.Operation)
	assert.Equal(t, "title", *p.Selector.Label)
}

func TestDecodeYAML_Invalid(t *testing.T) {
	_, err := DecodeYAML([]byte("operation: [unclosed"))
	require.Error(t, err)
	assert.True(t, engine.IsMalformed(err))
}

func TestDecodeFile_DispatchesOnExtension(t *testing.T) {
	p, err := DecodeFile("plan.yml", []byte("operation: delete\nselector:\n  index: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, ir.OpDelete, p.Operation)

	p, err = DecodeFile("plan.json", []byte(`{"operation": "delete", "selector": {"index": 0}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, *p.Selector.Index)
}

func TestDecode_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Decode([]byte(`{"operation": "move", "selector": {"id": "a"}, "changes": {"from": 10}}`))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestDecodeSelector(t *testing.T) {
	sel, err := DecodeSelector([]byte(`{"type": "video", "index": 1}`))
	require.NoError(t, err)
	require.NotNil(t, sel.Type)
	require.NotNil(t, sel.Index)
	assert.Equal(t, ir.TypeVideo, *sel.Type)
	assert.Equal(t, 1, *sel.Index)

	for name, in := range map[string]string{
		"empty":      ``,
		"array":      `[]`,
		"two kinds":  `{"id": "a", "label": "b"}`,
		"bad type":   `{"type": "hologram"}`,
		"bad index":  `{"index": "one"}`,
		"no variant": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSelector([]byte(in))
			require.Error(t, err)
			assert.True(t, engine.IsMalformed(err), "got %v", err)
		})
	}
}
