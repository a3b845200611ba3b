package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted editing session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Composition is a path to a .json, .yaml or .cue composition.
	// Relative paths are resolved against the scenario file.
	Composition string `yaml:"composition,omitempty"`

	// Initial is an inline composition, used when Composition is empty.
	Initial map[string]any `yaml:"initial,omitempty"`

	// IDPrefix prefixes generated element and patch ids. Default "el".
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// Steps run in order against one session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final composition.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one apply, undo or redo. Exactly one of the three is set.
type Step struct {
	// Apply is an edit plan in its wire form.
	Apply map[string]any `yaml:"apply,omitempty"`

	// ResolvedID pins the target of an apply, as a UI would after the user
	// picked a candidate.
	ResolvedID string `yaml:"resolved_id,omitempty"`

	Undo bool `yaml:"undo,omitempty"`
	Redo bool `yaml:"redo,omitempty"`

	// Expect checks the step outcome. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Action names the step kind.
func (s Step) Action() string {
	switch {
	case s.Undo:
		return ActionUndo
	case s.Redo:
		return ActionRedo
	default:
		return ActionApply
	}
}

// Step actions.
const (
	ActionApply = "apply"
	ActionUndo  = "undo"
	ActionRedo  = "redo"
)

// Expect specifies the expected outcome of a step. Empty fields are not
// checked.
type Expect struct {
	// Status is success, ambiguous or rejected. When empty it is derived:
	// rejected if Error is set, otherwise success.
	Status string `yaml:"status,omitempty"`

	// Error is the expected error kind, e.g. NotFound or NothingToUndo.
	Error string `yaml:"error,omitempty"`

	// Receipt must match exactly.
	Receipt string `yaml:"receipt,omitempty"`

	// Candidates lists the expected candidate ids in order.
	Candidates []string `yaml:"candidates,omitempty"`

	// Suggestions lists the expected "did you mean" labels in order.
	Suggestions []string `yaml:"suggestions,omitempty"`

	// Version is the composition version after the step.
	Version int64 `yaml:"version,omitempty"`
}

// Step statuses.
const (
	StatusSuccess   = "success"
	StatusAmbiguous = "ambiguous"
	StatusRejected  = "rejected"
)

// Assertion validates the final composition.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// ID is the element checked by element_* assertions.
	ID string `yaml:"id,omitempty"`

	// IDs is the expected order (top_level_order).
	IDs []string `yaml:"ids,omitempty"`

	// Field is a dotted path into the element's wire form (element_field),
	// e.g. "from" or "properties.fontSize".
	Field string `yaml:"field,omitempty"`

	// Value is the expected field value (element_field).
	Value any `yaml:"value,omitempty"`

	// Count is the expected number (version, patch_count).
	Count int64 `yaml:"count,omitempty"`

	// Text is the expected substring (compile_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertElementExists   = "element_exists"
	AssertElementAbsent   = "element_absent"
	AssertElementField    = "element_field"
	AssertTopLevelOrder   = "top_level_order"
	AssertVersion         = "version"
	AssertPatchCount      = "patch_count"
	AssertCompileContains = "compile_contains"
	AssertMatchesInitial  = "matches_initial"
)

// LoadScenario reads and parses a scenario YAML file. A relative
// composition path is resolved against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. baseDir resolves a relative
// composition path; it may be empty.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Composition != "" && !filepath.IsAbs(scenario.Composition) && baseDir != "" {
		scenario.Composition = filepath.Join(baseDir, scenario.Composition)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

var knownAssertions = map[string]bool{
	AssertElementExists:   true,
	AssertElementAbsent:   true,
	AssertElementField:    true,
	AssertTopLevelOrder:   true,
	AssertVersion:         true,
	AssertPatchCount:      true,
	AssertCompileContains: true,
	AssertMatchesInitial:  true,
}

var knownStatuses = map[string]bool{
	"":              true,
	StatusSuccess:   true,
	StatusAmbiguous: true,
	StatusRejected:  true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Composition == "") == (s.Initial == nil) {
		return fmt.Errorf("exactly one of composition or initial is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Apply != nil {
			set++
		}
		if step.Undo {
			set++
		}
		if step.Redo {
			set++
		}
		if set != 1 {
			return fmt.Errorf("step %d: exactly one of apply, undo or redo is required", i)
		}
		if step.ResolvedID != "" && step.Apply == nil {
			return fmt.Errorf("step %d: resolved_id only applies to apply steps", i)
		}
		if step.Expect != nil && !knownStatuses[step.Expect.Status] {
			return fmt.Errorf("step %d: unknown status %q", i, step.Expect.Status)
		}
	}

	for i, a := range s.Assertions {
		if !knownAssertions[a.Type] {
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
		switch a.Type {
		case AssertElementExists, AssertElementAbsent:
			if a.ID == "" {
				return fmt.Errorf("assertion %d: %s requires id", i, a.Type)
			}
		case AssertElementField:
			if a.ID == "" || a.Field == "" {
				return fmt.Errorf("assertion %d: element_field requires id and field", i)
			}
		case AssertCompileContains:
			if a.Text == "" {
				return fmt.Errorf("assertion %d: compile_contains requires text", i)
			}
		}
	}
	return nil
}
