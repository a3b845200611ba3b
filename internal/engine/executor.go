package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"go.uber.org/multierr"

	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/selector"
)

// DefaultDurationInFrames is the duration given to added elements that do
// not specify one (three seconds at 30 fps).
const DefaultDurationInFrames = 90

// Status reports how an Apply call ended when it did not return an error.
type Status string

const (
	// StatusSuccess means the edit was applied.
	StatusSuccess Status = "success"

	// StatusAmbiguous means the selector matched several elements and the
	// caller must pick one and retry with its id as resolvedID.
	StatusAmbiguous Status = "ambiguous"
)

// Candidate describes one element an ambiguous selector matched.
type Candidate struct {
	ID    string         `json:"id"`
	Label string         `json:"label,omitempty"`
	Type  ir.ElementType `json:"type"`
	Start string         `json:"start"`
	From  int64          `json:"from"`
}

// Outcome is the result of a successful or ambiguous Apply.
//
// On success Composition is the new document (the input is untouched),
// Patch is the entry appended to its log and Receipt is a one-line
// description of the change. On ambiguity only Candidates is set.
type Outcome struct {
	Status      Status          `json:"status"`
	Composition *ir.Composition `json:"composition,omitempty"`
	Patch       *ir.Patch       `json:"patch,omitempty"`
	Receipt     string          `json:"receipt,omitempty"`
	Candidates  []Candidate     `json:"candidates,omitempty"`
}

// Executor applies edit plans to compositions.
//
// Apply is a pure function of its inputs plus the injected id generator and
// clock: it never mutates the composition it is given and holds no state
// between calls.
//
// Thread-safety: an Executor is safe for concurrent use when its
// IDGenerator is (UUIDv7Generator and FixedGenerator both are).
type Executor struct {
	ids    IDGenerator
	clock  Clock
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithIDGenerator sets the generator for element and patch ids.
//
// Default: UUIDv7Generator.
// Use NewFixedGenerator in tests for predictable ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(x *Executor) {
		x.ids = g
	}
}

// WithClock sets the clock used for patch timestamps.
func WithClock(c Clock) Option {
	return func(x *Executor) {
		x.clock = c
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(x *Executor) {
		x.logger = l
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	x := &Executor{
		ids:    UUIDv7Generator{},
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ValidatePlan performs the structural checks that need no composition:
// a known operation, a selector exactly when the operation targets an
// element, and a well-formed selector. Failures are Malformed.
func ValidatePlan(plan ir.EditPlan) error {
	if !plan.Operation.Valid() {
		return newEditError(ErrMalformed, "",
			"unknown operation %q (one of add, update, delete, move, reorder)", plan.Operation)
	}
	if plan.Operation.NeedsSelector() && plan.Selector == nil {
		return newEditError(ErrMalformed, plan.Operation, "a selector is required")
	}
	if !plan.Operation.NeedsSelector() && plan.Selector != nil {
		return newEditError(ErrMalformed, plan.Operation, "%s does not take a selector", plan.Operation)
	}
	if plan.Selector != nil {
		if err := plan.Selector.Validate(); err != nil {
			return &EditError{
				Kind:      ErrMalformed,
				Operation: plan.Operation,
				Message:   "invalid selector: " + err.Error(),
				Err:       err,
			}
		}
	}
	return nil
}

// Apply validates plan against comp and, if every check passes, returns
// the edited copy together with its patch and receipt.
//
// resolvedID, when non-empty, names the element the caller picked after an
// ambiguous outcome. It must still exist; the selector is not re-run.
//
// Checks run in three layers and stop at the first failing layer:
// structure (ValidatePlan), resolution (selector or resolvedID) and
// execution (changes and resulting element bounds). Every rejection is an
// *EditError and leaves comp untouched.
func (x *Executor) Apply(comp *ir.Composition, plan ir.EditPlan, resolvedID string) (*Outcome, error) {
	return x.apply(comp, plan, resolvedID, x.ids)
}

// Reorder is shorthand for a reorder plan with the given top-level order.
func (x *Executor) Reorder(comp *ir.Composition, order []string) (*Outcome, error) {
	ids := make(ir.Array, len(order))
	for i, id := range order {
		ids[i] = ir.String(id)
	}
	return x.Apply(comp, ir.EditPlan{
		Operation: ir.OpReorder,
		Changes:   ir.Object{"order": ids},
	}, "")
}

// Replay re-applies the forward change a patch recorded. It is how redo
// works: the patch's target is addressed by TargetID, never by its original
// selector, and an add re-creates the element with the ids it had before.
func (x *Executor) Replay(comp *ir.Composition, p ir.Patch) (*Outcome, error) {
	plan := ir.EditPlan{
		Operation: p.Operation,
		Selector:  p.Selector,
		Changes:   p.Changes.Clone(),
	}
	var target string
	if p.Operation.NeedsSelector() {
		target = p.TargetID
	}
	gen := &pinnedGenerator{pinned: slices.Clone(p.CreatedIDs), fallback: x.ids}
	return x.apply(comp, plan, target, gen)
}

func (x *Executor) apply(comp *ir.Composition, plan ir.EditPlan, resolvedID string, ids IDGenerator) (*Outcome, error) {
	if err := ValidatePlan(plan); err != nil {
		x.logRejected(plan, err)
		return nil, err
	}

	var targetID string
	if plan.Operation.NeedsSelector() {
		id, candidates, err := x.resolve(comp, plan, resolvedID)
		if err != nil {
			x.logRejected(plan, err)
			return nil, err
		}
		if len(candidates) > 0 {
			x.logger.Debug("selector ambiguous",
				"operation", plan.Operation,
				"selector", plan.Selector.String(),
				"matches", len(candidates))
			return &Outcome{Status: StatusAmbiguous, Candidates: candidates}, nil
		}
		targetID = id
	} else if resolvedID != "" {
		err := newEditError(ErrMalformed, plan.Operation, "resolvedId applies only to update, delete and move")
		x.logRejected(plan, err)
		return nil, err
	}

	next := comp.Clone()
	ex := &execution{
		comp:   next,
		fps:    next.Metadata.FPS,
		ids:    ids,
		patch:  ir.Patch{Operation: plan.Operation, Selector: plan.Selector, Changes: plan.Changes.Clone()},
		target: targetID,
	}
	if ex.patch.Changes == nil {
		ex.patch.Changes = ir.Object{}
	}

	var err error
	switch plan.Operation {
	case ir.OpAdd:
		err = ex.add(plan.Changes)
	case ir.OpUpdate:
		err = ex.update(plan.Changes)
	case ir.OpDelete:
		err = ex.delete(plan.Changes)
	case ir.OpMove:
		err = ex.move(plan.Changes)
	case ir.OpReorder:
		err = ex.reorder(plan.Changes)
	}
	if errors.Is(err, ErrIDsExhausted) {
		x.logger.Error("edit failed", "operation", plan.Operation, "error", err)
		return nil, err
	}
	if err != nil {
		editErr := fromValidation(plan.Operation, err)
		x.logRejected(plan, editErr)
		return nil, editErr
	}

	next.Version = comp.Version + 1
	ex.patch.ID = ids.Generate()
	ex.patch.Seq = next.Version
	ex.patch.Timestamp = x.clock.Now().UTC()
	next.Patches = append(next.Patches, ex.patch)

	x.logger.Debug("edit applied",
		"composition", next.ID,
		"operation", plan.Operation,
		"target", ex.patch.TargetID,
		"version", next.Version)

	patch := ex.patch.Clone()
	return &Outcome{
		Status:      StatusSuccess,
		Composition: next,
		Patch:       &patch,
		Receipt:     ex.receipt,
	}, nil
}

// resolve picks the target of a selector operation. It returns either an id,
// a candidate list (ambiguous) or a NotFound error.
func (x *Executor) resolve(comp *ir.Composition, plan ir.EditPlan, resolvedID string) (string, []Candidate, error) {
	if resolvedID != "" {
		if _, ok := ir.FindPath(comp.Elements, resolvedID); !ok {
			return "", nil, newEditError(ErrNotFound, plan.Operation,
				"element %q no longer exists", resolvedID)
		}
		return resolvedID, nil, nil
	}

	matches := selector.Resolve(*plan.Selector, comp.Elements)
	switch len(matches) {
	case 0:
		return "", nil, &EditError{
			Kind:        ErrNotFound,
			Operation:   plan.Operation,
			Message:     fmt.Sprintf("no element matches %s", plan.Selector),
			Suggestions: selector.Suggest(*plan.Selector, comp.Elements),
		}
	case 1:
		return matches[0].ID, nil, nil
	}

	candidates := make([]Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = Candidate{
			ID:    m.ID,
			Label: m.Label,
			Type:  m.Type,
			Start: ir.Timecode(m.From, comp.Metadata.FPS),
			From:  m.From,
		}
	}
	return "", candidates, nil
}

func (x *Executor) logRejected(plan ir.EditPlan, err error) {
	kind, _ := KindOf(err)
	x.logger.Debug("edit rejected",
		"operation", plan.Operation,
		"kind", kind,
		"error", err)
}

// execution holds the working copy and the patch under construction for a
// single Apply call.
type execution struct {
	comp    *ir.Composition
	fps     int64
	ids     IDGenerator
	patch   ir.Patch
	target  string
	receipt string
}

// locate returns the path and a pointer to the target element.
func (ex *execution) locate() (ir.Path, *ir.Element, error) {
	path, ok := ir.FindPath(ex.comp.Elements, ex.target)
	if !ok {
		return nil, nil, newEditError(ErrNotFound, ex.patch.Operation, "element %q no longer exists", ex.target)
	}
	return path, ir.At(ex.comp.Elements, path), nil
}

func (ex *execution) add(changes ir.Object) error {
	el, err := parseAddChanges("changes", changes)
	if err != nil {
		return err
	}
	taken := make(map[string]bool)
	for _, id := range ir.CollectIDs(ex.comp.Elements) {
		taken[id] = true
	}
	created, err := assignIDs(&el, ex.ids, taken)
	if err != nil {
		return err
	}
	if err := ir.ValidateElement("changes", &el); err != nil {
		return err
	}
	ex.comp.Elements = append(ex.comp.Elements, el)
	ex.patch.TargetID = el.ID
	ex.patch.CreatedIDs = created
	ex.receipt = addedReceipt(&el, ex.fps)
	return nil
}

// maxIDAttempts bounds how many in-use ids assignIDs skips for one element.
const maxIDAttempts = 64

// assignIDs gives el and its descendants fresh ids, parent before children,
// and returns them in that order. Generated ids already in taken are
// skipped; every assigned id is added to taken.
func assignIDs(el *ir.Element, ids IDGenerator, taken map[string]bool) ([]string, error) {
	id, err := unusedID(ids, taken)
	if err != nil {
		return nil, err
	}
	el.ID = id
	created := []string{id}
	for i := range el.Children {
		more, err := assignIDs(&el.Children[i], ids, taken)
		if err != nil {
			return nil, err
		}
		created = append(created, more...)
	}
	return created, nil
}

func unusedID(ids IDGenerator, taken map[string]bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := ids.Generate()
		if !taken[id] {
			taken[id] = true
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDsExhausted, maxIDAttempts)
}

func (ex *execution) update(changes ir.Object) error {
	uc, err := parseUpdateChanges(changes)
	if err != nil {
		return err
	}
	path, target, err := ex.locate()
	if err != nil {
		return err
	}

	from, dur := target.From, target.DurationInFrames
	if uc.From != nil {
		from = *uc.From
	}
	if uc.Duration != nil {
		dur = *uc.Duration
	}
	if err := ir.ValidateTiming("changes", from, dur); err != nil {
		return err
	}

	prev := target.Clone()
	updated := target.Clone()
	updated.From, updated.DurationInFrames = from, dur
	if uc.Label != nil {
		updated.Label = *uc.Label
	}
	if uc.Properties != nil {
		base := updated.Properties
		if base == nil {
			base, _ = ir.DecodeProperties(updated.Type, nil)
		}
		merged, err := ir.MergeProperties(base, uc.Properties)
		if err != nil {
			return err
		}
		updated.Properties = merged
	}
	if uc.HasAnimations {
		updated.Animations = uc.Animations
	}

	var errs error
	errs = multierr.Append(errs, ir.ValidateProperties("changes.properties", updated.Properties))
	errs = multierr.Append(errs, ir.ValidateAnimations("changes", updated.Animations))
	if errs != nil {
		return errs
	}

	ir.ReplaceAt(ex.comp.Elements, path, updated)
	ex.patch.TargetID = prev.ID
	ex.patch.PreviousState = &prev
	ex.receipt = updatedReceipt(&prev, changes)
	return nil
}

func (ex *execution) delete(changes ir.Object) error {
	if err := checkKeys(ir.OpDelete, "changes", changes, nil); err != nil {
		return err
	}
	path, target, err := ex.locate()
	if err != nil {
		return err
	}
	prev := target.Clone()
	parentID := ir.Parent(ex.comp.Elements, path)
	index := path[len(path)-1]

	ex.comp.Elements, _ = ir.RemoveAt(ex.comp.Elements, path)
	ex.patch.TargetID = prev.ID
	ex.patch.PreviousState = &prev
	ex.patch.PreviousParentID = parentID
	ex.patch.PreviousIndex = &index
	ex.receipt = deletedReceipt(&prev)
	return nil
}

func (ex *execution) move(changes ir.Object) error {
	mc, err := parseMoveChanges(changes)
	if err != nil {
		return err
	}
	path, target, err := ex.locate()
	if err != nil {
		return err
	}
	from, dur := target.From, target.DurationInFrames
	if mc.From != nil {
		from = *mc.From
	}
	if mc.Duration != nil {
		dur = *mc.Duration
	}
	if err := ir.ValidateTiming("changes", from, dur); err != nil {
		return err
	}

	prev := target.Clone()
	moved := target.Clone()
	moved.From, moved.DurationInFrames = from, dur
	ir.ReplaceAt(ex.comp.Elements, path, moved)

	ex.patch.TargetID = prev.ID
	ex.patch.PreviousState = &prev
	ex.receipt = movedReceipt(&moved)
	return nil
}

func (ex *execution) reorder(changes ir.Object) error {
	order, err := parseReorderChanges(changes)
	if err != nil {
		return err
	}
	current := ir.TopLevelIDs(ex.comp.Elements)
	if err := checkPermutation(order, current); err != nil {
		return err
	}

	byID := make(map[string]ir.Element, len(ex.comp.Elements))
	for _, el := range ex.comp.Elements {
		byID[el.ID] = el
	}
	reordered := make([]ir.Element, len(order))
	for i, id := range order {
		reordered[i] = byID[id]
	}
	ex.comp.Elements = reordered
	ex.patch.PreviousOrder = current
	ex.receipt = reorderedReceipt(len(order))
	return nil
}

// checkPermutation requires order to hold exactly the ids in current: no
// additions, no omissions and no duplicates.
func checkPermutation(order, current []string) error {
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	seen := make(map[string]bool, len(order))
	var errs error
	for i, id := range order {
		switch {
		case seen[id]:
			errs = multierr.Append(errs, &ir.FieldError{
				Path: fmt.Sprintf("changes.order[%d]", i), Kind: ir.KindInvalidRange,
				Message: fmt.Sprintf("duplicate id %q", id),
			})
		case !known[id]:
			errs = multierr.Append(errs, &ir.FieldError{
				Path: fmt.Sprintf("changes.order[%d]", i), Kind: ir.KindInvalidRange,
				Message: fmt.Sprintf("%q is not a top-level element", id),
			})
		}
		seen[id] = true
	}
	for _, id := range current {
		if !seen[id] {
			errs = multierr.Append(errs, &ir.FieldError{
				Path: "changes.order", Kind: ir.KindInvalidRange,
				Message: fmt.Sprintf("missing top-level element %q", id),
			})
		}
	}
	return errs
}
