// Package harness runs edit scenarios end to end.
//
// A scenario starts from a composition, applies a sequence of plans, undos
// and redos through a history.Session, and checks each step's outcome and
// the final document.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	composition: compositions/demo.json   # relative to the scenario file
//	steps:
//	  - apply:
//	      operation: update
//	      selector: {label: intro}
//	      changes: {properties: {fontSize: 48}}
//	    expect:
//	      status: success
//	      receipt: "Updated text \"Intro\" (properties: fontSize)"
//	  - undo: true
//	  - redo: true
//	  - apply:
//	      operation: delete
//	      selector: {label: clip}
//	    expect:
//	      status: ambiguous
//	      candidates: [v1, v2]
//	assertions:
//	  - type: element_field
//	    id: t1
//	    field: properties.fontSize
//	    value: 48
//	  - type: top_level_order
//	    ids: [t1, v1, v2]
//
// The composition may instead be given inline under "initial". A step
// without an expect clause must succeed.
//
// # Assertion Types
//
//   - element_exists / element_absent: an element id is (not) in the tree
//   - element_field: a field of an element, dotted into properties
//   - top_level_order: the exact top-level id order
//   - version: the final version
//   - patch_count: the length of the patch log
//   - compile_contains: the compiled TSX contains a string
//   - matches_initial: the final elements equal the initial ones
//
// # Deterministic Testing
//
// Every run uses sequential element ids (testutil.SequentialIDs), a
// deterministic clock (testutil.DeterministicClock) and a fresh in-memory
// SQLite store that each successful step is saved to with a version
// compare-and-swap. Identical scenarios produce identical traces, which
// RunWithGolden compares against testdata/golden.
package harness
