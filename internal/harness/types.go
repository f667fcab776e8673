package harness

import (
	"github.com/roach88/versets/internal/commit"
	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/merge"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report is the rendered diff, commit partitions and merge summary.
	// Used for golden comparison.
	Report string `json:"report"`

	Registry  *descriptor.Registry `json:"-"`
	Diff      *compare.StateResult `json:"-"`
	Outcome   *commit.Outcome      `json:"-"`
	Revisions map[string]string    `json:"-"`
	Cycles    []graph.Cycle        `json:"-"`
	Merged    *merge.Result        `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
