package commit

import (
	"log/slog"
	"slices"

	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/vset"
)

// Outcome is the classification of one commit. Modified, Created,
// Invariable and BoundInNewState hold new-state instances; Deleted and
// RemainedInOldState hold old-state instances.
type Outcome struct {
	BoundInNewState    []*vset.Set
	RemainedInOldState []*vset.Set
	Committed          []*vset.Set
	Modified           []*vset.Set
	Created            []*vset.Set
	Deleted            []*vset.Set
	Invariable         []*vset.Set
	ActualState        []*vset.Set
}

// Committer classifies a diff into a commit outcome. It keeps no state
// between calls and is safe for concurrent use; the sets it is handed are
// mutated (names, versioning and binding edges of committed sets).
type Committer struct {
	checker vset.BindingChecker
	logger  *slog.Logger
}

// Option configures a Committer.
type Option func(*Committer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Committer) {
		c.logger = l
	}
}

// NewCommitter creates a Committer. checker validates re-pointed binding
// edges.
func NewCommitter(checker vset.BindingChecker, opts ...Option) *Committer {
	c := &Committer{checker: checker, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit computes the outcome of committing diff. Nothing is persisted.
func (c *Committer) Commit(diff *compare.StateResult) (*Outcome, error) {
	if diff == nil {
		return nil, vset.Precondition("commit requires a diff")
	}

	out := &Outcome{}
	previous := make(map[*vset.Set]*vset.Set)

	for i := range diff.Sets {
		sr := &diff.Sets[i]
		switch sr.Modification {
		case compare.Created:
			out.Created = append(out.Created, sr.Second)
		case compare.Deleted:
			out.Deleted = append(out.Deleted, sr.First)
		case compare.Modified:
			out.Modified = append(out.Modified, sr.Second)
			previous[sr.Second] = sr.First
		case compare.Invariable:
			out.Invariable = append(out.Invariable, sr.Second)
			previous[sr.Second] = sr.First
		}
	}

	bound := c.propagate(out)
	for _, s := range out.Invariable {
		if bound[s] {
			out.BoundInNewState = append(out.BoundInNewState, s)
		}
	}

	for i := range diff.Sets {
		s := diff.Sets[i].Second
		if s == nil {
			continue
		}
		if bound[s] || slices.Contains(out.Modified, s) || slices.Contains(out.Created, s) {
			out.Committed = append(out.Committed, s)
		}
	}

	for _, s := range out.Committed {
		if prev := previous[s]; prev != nil && prev != s {
			s.Name = vset.Increment(prev.Name)
			s.SetVersioning(prev)
		}
	}

	out.ActualState = slices.Clone(out.Committed)
	for _, s := range out.Invariable {
		if bound[s] {
			continue
		}
		carried := previous[s]
		if carried == nil {
			carried = s
		}
		if carried != s {
			for _, committed := range out.Committed {
				if !committed.IsBoundTo(s) {
					continue
				}
				if err := committed.ReplaceBinding(s, carried, c.checker); err != nil {
					c.logger.Warn("cannot re-point binding to carried-forward set",
						"set", committed.Name, "target", carried.Name, "err", err)
				}
			}
		}
		out.RemainedInOldState = append(out.RemainedInOldState, carried)
		out.ActualState = append(out.ActualState, carried)
	}

	c.logger.Debug("commit classified",
		"committed", len(out.Committed),
		"bound", len(out.BoundInNewState),
		"remained", len(out.RemainedInOldState),
		"deleted", len(out.Deleted))
	return out, nil
}

// propagate marks every invariable set bound, directly or transitively
// through other invariable sets, by a modified or created set.
func (c *Committer) propagate(out *Outcome) map[*vset.Set]bool {
	changed := make(map[*vset.Set]bool, len(out.Modified)+len(out.Created))
	for _, s := range out.Modified {
		changed[s] = true
	}
	for _, s := range out.Created {
		changed[s] = true
	}

	bound := make(map[*vset.Set]bool)
	var worklist []*vset.Set
	for _, s := range out.Invariable {
		if slices.ContainsFunc(s.Binding(), func(t *vset.Set) bool { return changed[t] }) {
			bound[s] = true
			worklist = append(worklist, s)
		}
	}

	for len(worklist) > 0 {
		popped := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, s := range out.Invariable {
			if s == popped || bound[s] {
				continue
			}
			if s.IsBoundTo(popped) {
				bound[s] = true
				worklist = append(worklist, s)
			}
		}
	}
	return bound
}
