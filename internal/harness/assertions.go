package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []StepRecord // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, r := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s (v%d)\n", r.Index, r.Action, r.Operation, r.Status, r.Version)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func evaluate(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}

	switch a.Type {
	case AssertElementExists:
		if _, ok := ir.FindPath(r.Final.Elements, a.ID); !ok {
			return fail("element "+a.ID+" exists", "not found")
		}
	case AssertElementAbsent:
		if _, ok := ir.FindPath(r.Final.Elements, a.ID); ok {
			return fail("element "+a.ID+" absent", "found")
		}
	case AssertElementField:
		return assertElementField(r, a, fail)
	case AssertTopLevelOrder:
		got := ir.TopLevelIDs(r.Final.Elements)
		if !slices.Equal(got, a.IDs) {
			return fail(fmt.Sprintf("order %v", a.IDs), fmt.Sprintf("order %v", got))
		}
	case AssertVersion:
		if r.Final.Version != a.Count {
			return fail(fmt.Sprintf("version %d", a.Count), fmt.Sprintf("version %d", r.Final.Version))
		}
	case AssertPatchCount:
		if n := int64(len(r.Final.Patches)); n != a.Count {
			return fail(fmt.Sprintf("%d patches", a.Count), fmt.Sprintf("%d patches", n))
		}
	case AssertCompileContains:
		if r.Program == nil {
			return fail(fmt.Sprintf("compiled source containing %q", a.Text), "composition did not compile")
		}
		if !strings.Contains(r.Program.Source, a.Text) {
			return fail(fmt.Sprintf("compiled source containing %q", a.Text), "not found")
		}
	case AssertMatchesInitial:
		want, err := ir.CanonicalJSON(r.Initial.Elements)
		if err != nil {
			return err
		}
		got, err := ir.CanonicalJSON(r.Final.Elements)
		if err != nil {
			return err
		}
		if !bytes.Equal(want, got) {
			return fail("elements equal to the initial composition", string(got))
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertElementField compares one field of an element's wire form with
// the expected value, both in canonical JSON.
func assertElementField(r *Result, a Assertion, fail func(string, string) error) error {
	path, ok := ir.FindPath(r.Final.Elements, a.ID)
	if !ok {
		return fail("element "+a.ID+" exists", "not found")
	}
	raw, err := json.Marshal(ir.At(r.Final.Elements, path))
	if err != nil {
		return err
	}
	v, err := ir.UnmarshalValue(raw)
	if err != nil {
		return err
	}
	for _, key := range strings.Split(a.Field, ".") {
		obj, ok := v.(ir.Object)
		if !ok {
			return fail(fmt.Sprintf("%s.%s", a.ID, a.Field), "path does not lead to an object")
		}
		if v, ok = obj[key]; !ok {
			v = ir.Null{}
		}
	}

	wantValue, err := ir.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("%s: expected value: %w", a.Type, err)
	}
	want, err := ir.MarshalCanonical(wantValue)
	if err != nil {
		return err
	}
	got, err := ir.MarshalCanonical(v)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return fail(fmt.Sprintf("%s.%s = %s", a.ID, a.Field, want), string(got))
	}
	return nil
}
