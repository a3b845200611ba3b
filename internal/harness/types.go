package harness

import (
	"github.com/roach88/reel/internal/compiler"
	"github.com/roach88/reel/internal/ir"
)

// StepRecord is the observed outcome of one step.
type StepRecord struct {
	Index      int      `json:"index"`
	Action     string   `json:"action"`
	Operation  string   `json:"operation,omitempty"`
	Status     string   `json:"status"`
	Receipt    string   `json:"receipt,omitempty"`
	Error      string   `json:"error,omitempty"`
	Message    string   `json:"message,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	Version    int64    `json:"version"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one record per step in order.
	Trace []StepRecord `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Initial and Final are the compositions before and after the steps.
	Initial *ir.Composition `json:"-"`
	Final   *ir.Composition `json:"-"`

	// Program is the compiled final composition, nil if it failed to
	// compile (which is also recorded in Errors).
	Program *compiler.Program `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
