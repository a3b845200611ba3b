package history

import (
	"log/slog"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
)

// Session holds the current composition and the redo stack for one editing
// session. The redo stack is not persisted: it is lost when the session
// ends.
//
// Thread-safety: a Session is a single-writer object and is NOT safe for
// concurrent use.
type Session struct {
	exec   *engine.Executor
	comp   *ir.Composition
	redo   []ir.Patch
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession starts a session on comp. The session keeps its own copy.
func NewSession(exec *engine.Executor, comp *ir.Composition, opts ...Option) *Session {
	s := &Session{
		exec:   exec,
		comp:   comp.Clone(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Composition returns a copy of the current composition.
func (s *Session) Composition() *ir.Composition {
	return s.comp.Clone()
}

// CanUndo reports whether the patch log is non-empty.
func (s *Session) CanUndo() bool {
	return len(s.comp.Patches) > 0
}

// CanRedo reports whether an undone patch is waiting to be redone.
func (s *Session) CanRedo() bool {
	return len(s.redo) > 0
}

// Reset replaces the current composition and drops the redo stack.
func (s *Session) Reset(comp *ir.Composition) {
	s.comp = comp.Clone()
	s.redo = nil
}

// Apply runs an edit through the executor. On success the session moves to
// the new composition and the redo stack is cleared; an ambiguous outcome
// or a rejection leaves the session unchanged.
func (s *Session) Apply(plan ir.EditPlan, resolvedID string) (*engine.Outcome, error) {
	out, err := s.exec.Apply(s.comp, plan, resolvedID)
	if err != nil {
		return nil, err
	}
	if out.Status == engine.StatusSuccess {
		s.comp = out.Composition.Clone()
		if len(s.redo) > 0 {
			s.logger.Debug("redo stack cleared by new edit", "dropped", len(s.redo))
		}
		s.redo = nil
	}
	return out, nil
}

// Undo reverts the most recent patch and pushes it onto the redo stack.
// The returned outcome carries the reverted patch.
func (s *Session) Undo() (*engine.Outcome, error) {
	n := len(s.comp.Patches)
	if n == 0 {
		return nil, ErrNothingToUndo
	}
	last := s.comp.Patches[n-1].Clone()

	next, err := Revert(s.comp, last)
	if err != nil {
		return nil, err
	}
	receipt := "Undid " + engine.Describe(last, s.comp.Elements)

	s.comp = next
	s.redo = append(s.redo, last)
	s.logger.Debug("patch undone",
		"composition", next.ID,
		"patch", last.ID,
		"operation", last.Operation,
		"version", next.Version)

	return &engine.Outcome{
		Status:      engine.StatusSuccess,
		Composition: next.Clone(),
		Patch:       &last,
		Receipt:     receipt,
	}, nil
}

// Redo re-applies the most recently undone patch by its target id. The new
// patch is appended to the log with a fresh previous state. If the replay
// is rejected the redo stack is left as it was.
func (s *Session) Redo() (*engine.Outcome, error) {
	n := len(s.redo)
	if n == 0 {
		return nil, ErrNothingToRedo
	}
	p := s.redo[n-1]

	out, err := s.exec.Replay(s.comp, p)
	if err != nil {
		return nil, err
	}
	s.comp = out.Composition.Clone()
	s.redo = s.redo[:n-1]
	out.Receipt = "Redid " + engine.Describe(*out.Patch, out.Composition.Elements)

	s.logger.Debug("patch redone",
		"composition", out.Composition.ID,
		"patch", out.Patch.ID,
		"operation", out.Patch.Operation,
		"version", out.Composition.Version)
	return out, nil
}
