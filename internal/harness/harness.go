package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/reel/internal/compiler"
	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/history"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/plan"
	"github.com/roach88/reel/internal/store"
	"github.com/roach88/reel/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs steps with deterministic ids and clock against one session.
type Harness struct {
	store   *store.Store
	session *history.Session
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Load the initial composition and store it
//  2. Execute steps, checking each expect clause
//  3. Check the stored document still matches the session
//  4. Compile the final composition
//  5. Evaluate assertions
//
// A failed expectation is recorded in the result; the returned error is
// reserved for infrastructure failures such as an unreadable composition.
func Run(scenario *Scenario) (*Result, error) {
	initial, err := loadInitial(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load composition: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Create(ctx, initial); err != nil {
		return nil, fmt.Errorf("failed to store composition: %w", err)
	}

	prefix := scenario.IDPrefix
	if prefix == "" {
		prefix = "el"
	}
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDs(prefix)),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(discard),
	)

	h := &Harness{
		store:   st,
		session: history.NewSession(exec, initial, history.WithLogger(discard)),
		logger:  discard,
	}

	result := NewResult()
	result.Initial = initial.Clone()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	final := h.session.Composition()
	result.Final = final

	stored, err := st.Load(ctx, final.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload composition: %w", err)
	}
	if ir.MustDigest(stored) != ir.MustDigest(final) {
		result.AddError("stored composition differs from the session")
	}

	program, err := compiler.Compile(final, compiler.WithLogger(discard))
	if err != nil {
		result.AddError(fmt.Sprintf("compile: %v", err))
	} else {
		result.Program = program
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadInitial(s *Scenario) (*ir.Composition, error) {
	if s.Composition != "" {
		return plan.LoadComposition(s.Composition)
	}
	v, err := ir.FromAny(s.Initial)
	if err != nil {
		return nil, err
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return nil, err
	}
	return plan.ParseComposition("initial.json", data)
}

// executeStep runs one step, records it, and saves any new version.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	before := h.session.Composition().Version
	rec := StepRecord{Index: i, Action: step.Action()}

	out, err := h.perform(step, &rec)
	switch {
	case err != nil:
		rec.Status = StatusRejected
		rec.Error = errorName(err)
		rec.Message = err.Error()
	case out.Status == engine.StatusAmbiguous:
		rec.Status = StatusAmbiguous
		for _, c := range out.Candidates {
			rec.Candidates = append(rec.Candidates, c.ID)
		}
	default:
		rec.Status = StatusSuccess
		rec.Receipt = out.Receipt
		if rec.Operation == "" && out.Patch != nil {
			rec.Operation = string(out.Patch.Operation)
		}
	}

	current := h.session.Composition()
	rec.Version = current.Version
	result.Trace = append(result.Trace, rec)

	if current.Version != before {
		if err := h.store.Save(ctx, current, before); err != nil {
			return fmt.Errorf("failed to save version %d: %w", current.Version, err)
		}
	}

	for _, msg := range checkExpect(step.Expect, rec, err) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", i, rec.Action, msg))
	}

	h.logger.Info("step completed",
		"step", i,
		"action", rec.Action,
		"status", rec.Status,
		"version", rec.Version,
	)
	return nil
}

func (h *Harness) perform(step Step, rec *StepRecord) (*engine.Outcome, error) {
	switch step.Action() {
	case ActionUndo:
		return h.session.Undo()
	case ActionRedo:
		return h.session.Redo()
	}

	v, err := ir.FromAny(step.Apply)
	if err != nil {
		return nil, &engine.EditError{Kind: engine.ErrMalformed, Message: err.Error(), Err: err}
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return nil, &engine.EditError{Kind: engine.ErrMalformed, Message: err.Error(), Err: err}
	}
	if op, ok := ir.AsString(v.(ir.Object)["operation"]); ok {
		rec.Operation = op
	}
	p, err := plan.Decode(data)
	if err != nil {
		return nil, err
	}
	return h.session.Apply(p, step.ResolvedID)
}

// errorName maps an error to the name used in expect clauses.
func errorName(err error) string {
	if kind, ok := engine.KindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, history.ErrNothingToUndo):
		return "NothingToUndo"
	case errors.Is(err, history.ErrNothingToRedo):
		return "NothingToRedo"
	}
	return "Error"
}

// checkExpect compares a step record with its expect clause and returns
// one message per mismatch.
func checkExpect(want *Expect, got StepRecord, err error) []string {
	if want == nil {
		if got.Status != StatusSuccess {
			return []string{fmt.Sprintf("expected success, got %s%s", got.Status, detail(got))}
		}
		return nil
	}

	var msgs []string
	status := want.Status
	if status == "" {
		status = StatusSuccess
		if want.Error != "" {
			status = StatusRejected
		}
	}
	if got.Status != status {
		msgs = append(msgs, fmt.Sprintf("expected %s, got %s%s", status, got.Status, detail(got)))
	}
	if want.Error != "" && got.Error != want.Error {
		msgs = append(msgs, fmt.Sprintf("expected error %s, got %q", want.Error, got.Error))
	}
	if want.Receipt != "" && got.Receipt != want.Receipt {
		msgs = append(msgs, fmt.Sprintf("expected receipt %q, got %q", want.Receipt, got.Receipt))
	}
	if want.Candidates != nil && !slices.Equal(want.Candidates, got.Candidates) {
		msgs = append(msgs, fmt.Sprintf("expected candidates %v, got %v", want.Candidates, got.Candidates))
	}
	if want.Suggestions != nil {
		var suggestions []string
		var ee *engine.EditError
		if errors.As(err, &ee) {
			suggestions = ee.Suggestions
		}
		if !slices.Equal(want.Suggestions, suggestions) {
			msgs = append(msgs, fmt.Sprintf("expected suggestions %v, got %v", want.Suggestions, suggestions))
		}
	}
	if want.Version != 0 && got.Version != want.Version {
		msgs = append(msgs, fmt.Sprintf("expected version %d, got %d", want.Version, got.Version))
	}
	return msgs
}

func detail(r StepRecord) string {
	if r.Message != "" {
		return ": " + r.Message
	}
	return ""
}
