package merge

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/vset"
)

// Warning is a per-object merge failure that was recovered from.
type Warning struct {
	Set    string
	Object uuid.UUID
	Type   string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %s: %v", w.Set, w.Type, w.Object, w.Err)
}

// Result is the merged state plus every degraded object.
type Result struct {
	Sets     []*vset.Set
	Warnings []Warning
}

// Degraded reports whether any object could not be merged cleanly.
func (r *Result) Degraded() bool {
	return len(r.Warnings) > 0
}

// Merger merges diffs. It keeps no state between calls and is safe for
// concurrent use.
type Merger struct {
	reg     *descriptor.Registry
	checker vset.BindingChecker
	ids     vset.IDGenerator
	logger  *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithIDGenerator sets the generator of merged set identities.
func WithIDGenerator(g vset.IDGenerator) Option {
	return func(m *Merger) {
		m.ids = g
	}
}

// WithChecker sets the binding checker used to rebind merged sets.
func WithChecker(ch vset.BindingChecker) Option {
	return func(m *Merger) {
		m.checker = ch
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = l
	}
}

// NewMerger creates a Merger over reg.
func NewMerger(reg *descriptor.Registry, opts ...Option) *Merger {
	m := &Merger{
		reg:    reg,
		ids:    vset.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.checker == nil {
		m.checker = graph.NewChecker(reg, graph.WithLogger(m.logger))
	}
	return m
}

// merging is the state of one Merge call.
type merging struct {
	*Merger
	leadOld  bool
	result   *Result
	replaced map[*vset.Set]*vset.Set
}

// Merge merges the two sides of diff. With oldIsLeading the old side wins
// field conflicts, otherwise the new side does.
func (m *Merger) Merge(diff *compare.StateResult, oldIsLeading bool) (*Result, error) {
	if diff == nil {
		return nil, vset.Precondition("merge requires a diff")
	}

	run := &merging{
		Merger:   m,
		leadOld:  oldIsLeading,
		result:   &Result{},
		replaced: make(map[*vset.Set]*vset.Set),
	}

	for i := range diff.Sets {
		sr := &diff.Sets[i]
		switch {
		case sr.First == nil:
			run.result.Sets = append(run.result.Sets, sr.Second)
		case sr.Second == nil:
			run.result.Sets = append(run.result.Sets, sr.First)
		case sr.First == sr.Second:
			run.result.Sets = append(run.result.Sets, sr.Second)
		default:
			merged := run.mergeSets(sr)
			run.replaced[sr.First] = merged
			run.replaced[sr.Second] = merged
			run.result.Sets = append(run.result.Sets, merged)
		}
	}

	run.rebind()

	m.logger.Debug("merged states",
		"sets", len(run.result.Sets),
		"merged", len(run.replaced)/2,
		"warnings", len(run.result.Warnings))
	return run.result, nil
}

func (run *merging) sides(sr *compare.SetResult) (leading, other *vset.Set) {
	if run.leadOld {
		return sr.First, sr.Second
	}
	return sr.Second, sr.First
}

func (run *merging) mergeSets(sr *compare.SetResult) *vset.Set {
	leading, other := run.sides(sr)

	name := vset.Increment(vset.Higher(sr.First.Name, sr.Second.Name))
	merged := vset.New(run.ids.NewID(), name, leading.Type, other.Strategy, other.Visible)
	merged.SetVersioning(sr.First, sr.Second)

	for i := range sr.Objects {
		or := &sr.Objects[i]
		leadObj, otherObj := or.First, or.Second
		if !run.leadOld {
			leadObj, otherObj = or.Second, or.First
		}

		switch {
		case leadObj == nil:
			merged.Add(or.ID, otherObj)
		case otherObj == nil || or.IsEqual():
			merged.Add(or.ID, leadObj)
		default:
			merged.Add(or.ID, run.mergeObject(merged.Name, or, leadObj, otherObj))
		}
	}

	for _, key := range leading.FieldKeys() {
		for _, id := range leading.FieldUUIDs(key) {
			merged.AddFieldUUID(key, id)
		}
	}
	for _, key := range other.FieldKeys() {
		for _, id := range other.FieldUUIDs(key) {
			if merged.Has(id) {
				merged.AddFieldUUID(key, id)
			}
		}
	}
	return merged
}

// rebind re-points edges of passed-through sets at merged sets and then
// attempts every pair of result sets, skipping rejected pairs.
func (run *merging) rebind() {
	for _, s := range run.result.Sets {
		for _, t := range s.Binding() {
			repl, ok := run.replaced[t]
			if !ok {
				continue
			}
			if err := s.ReplaceBinding(t, repl, run.checker); err != nil {
				run.logger.Warn("dropping binding to merged set",
					"set", s.Name, "target", repl.Name, "err", err)
				s.Unbind(t)
			}
		}
	}
	graph.BindAll(run.checker, run.result.Sets)
}
