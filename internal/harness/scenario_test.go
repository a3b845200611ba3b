package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesComposition(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "edit_undo_redo.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "edit_undo_redo", s.Name)
	assert.Equal(t, filepath.Join("testdata", "compositions", "demo.json"), s.Composition)
	require.Len(t, s.Steps, 7)
	assert.Equal(t, "v2", s.Steps[2].ResolvedID)
	assert.Equal(t, ActionUndo, s.Steps[3].Action())
	assert.Equal(t, ActionRedo, s.Steps[4].Action())
	assert.Equal(t, ActionApply, s.Steps[0].Action())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.Error(t, err)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nstep: []\n",
			want: "field step not found",
		},
		{
			name: "missing name",
			yaml: "description: d\ncomposition: c.json\nsteps: [{undo: true}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\ncomposition: c.json\nsteps: [{undo: true}]\n",
			want: "description is required",
		},
		{
			name: "no composition",
			yaml: "name: x\ndescription: d\nsteps: [{undo: true}]\n",
			want: "exactly one of composition or initial",
		},
		{
			name: "both compositions",
			yaml: "name: x\ndescription: d\ncomposition: c.json\ninitial: {id: a}\nsteps: [{undo: true}]\n",
			want: "exactly one of composition or initial",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: d\ncomposition: c.json\n",
			want: "steps list is required",
		},
		{
			name: "two actions in one step",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nsteps: [{undo: true, redo: true}]\n",
			want: "exactly one of apply, undo or redo",
		},
		{
			name: "resolved id on undo",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nsteps: [{undo: true, resolved_id: a}]\n",
			want: "resolved_id only applies",
		},
		{
			name: "unknown status",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nsteps: [{undo: true, expect: {status: maybe}}]\n",
			want: "unknown status",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nsteps: [{undo: true}]\nassertions: [{type: vibes}]\n",
			want: "unknown type",
		},
		{
			name: "element_field without field",
			yaml: "name: x\ndescription: d\ncomposition: c.json\nsteps: [{undo: true}]\nassertions: [{type: element_field, id: a}]\n",
			want: "requires id and field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_KeepsAbsolutePath(t *testing.T) {
	abs, err := filepath.Abs("testdata/compositions/demo.json")
	require.NoError(t, err)

	s, err := ParseScenario([]byte("name: x\ndescription: d\ncomposition: "+abs+"\nsteps: [{undo: true}]\n"), "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, abs, s.Composition)
}
