package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/convert"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/fixture"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/merge"
	"github.com/roach88/versets/internal/repository"
	"github.com/roach88/versets/internal/store"
	"github.com/roach88/versets/internal/vset"
)

// Harness is the scenario execution engine.
// It runs scenarios with deterministic set identities.
type Harness struct {
	reg    *descriptor.Registry
	ids    *vset.SequentialGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	reg, err := LoadRegistry(scenario.Declarations, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load declarations: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{reg: reg, ids: vset.NewSequentialGenerator(), logger: logger}
	ctx := context.Background()
	repo := repository.New(reg, st, scenario.Name,
		repository.WithIDGenerator(h.ids),
		repository.WithLogger(logger))

	var oldSets []*vset.Set
	if scenario.Old != nil {
		roots, err := h.build(scenario.Old)
		if err != nil {
			return nil, fmt.Errorf("old model: %w", err)
		}
		if _, err := repo.Commit(ctx, nil, roots...); err != nil {
			return nil, fmt.Errorf("failed to commit old model: %w", err)
		}
		if oldSets, err = repo.LoadState(ctx); err != nil {
			return nil, fmt.Errorf("failed to reload old state: %w", err)
		}
	}

	newRoots, err := h.build(&scenario.New)
	if err != nil {
		return nil, fmt.Errorf("new model: %w", err)
	}
	committed, err := repo.Commit(ctx, oldSets, newRoots...)
	if err != nil {
		return nil, fmt.Errorf("failed to commit new model: %w", err)
	}

	result := NewResult()
	result.Registry = reg
	result.Diff = committed.Diff
	result.Outcome = committed.Outcome
	result.Revisions = committed.Revisions
	result.Cycles = graph.FindElementaryCycles(committed.Outcome.ActualState)
	for _, c := range committed.Conflicts {
		result.AddError(fmt.Sprintf("unexpected conflict on %s: %v", c.DocID, c.Err))
	}

	if scenario.Merge != nil {
		if result.Merged, err = h.merge(scenario); err != nil {
			return nil, fmt.Errorf("failed to merge: %w", err)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if result.Report, err = renderReport(result); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadRegistry compiles CUE declaration files into a new registry.
// A nil logger means slog.Default().
func LoadRegistry(paths []string, logger *slog.Logger) (*descriptor.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := descriptor.NewRegistry(descriptor.WithLogger(logger))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		decls, err := descriptor.ParseDeclarations(p, string(src))
		if err != nil {
			return nil, err
		}
		if err := reg.Declare(decls...); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return reg, nil
}

func (h *Harness) build(m *fixture.Model) ([]descriptor.Object, error) {
	g, err := m.Build(h.reg)
	if err != nil {
		return nil, err
	}
	return g.Roots, nil
}

func (h *Harness) convert(m *fixture.Model) ([]*vset.Set, error) {
	if m == nil {
		return nil, nil
	}
	roots, err := h.build(m)
	if err != nil {
		return nil, err
	}
	return convert.NewConverter(h.reg,
		convert.WithIDGenerator(h.ids),
		convert.WithLogger(h.logger),
	).Convert(roots...)
}

// merge merges fresh conversions of both models. The committed sets
// were renamed and rebound by the commit, so they are not reused.
func (h *Harness) merge(scenario *Scenario) (*merge.Result, error) {
	oldSets, err := h.convert(scenario.Old)
	if err != nil {
		return nil, err
	}
	newSets, err := h.convert(&scenario.New)
	if err != nil {
		return nil, err
	}
	diff, err := compare.NewComparator(h.reg, compare.WithLogger(h.logger)).CompareStates(oldSets, newSets)
	if err != nil {
		return nil, err
	}
	return merge.NewMerger(h.reg,
		merge.WithIDGenerator(h.ids),
		merge.WithLogger(h.logger),
	).Merge(diff, scenario.Merge.Leading == "old")
}

// renderReport renders the parts of a result that golden files capture.
func renderReport(r *Result) (string, error) {
	var b strings.Builder
	b.WriteString("diff:\n")
	if err := compare.Format(&b, r.Registry, r.Diff, false); err != nil {
		return "", err
	}

	b.WriteString("commit:\n")
	for _, p := range partitions {
		fmt.Fprintf(&b, "  %s: %s\n", p, joinNames(partition(r.Outcome, p)))
	}
	fmt.Fprintf(&b, "cycles: %d\n", len(r.Cycles))

	if r.Merged != nil {
		b.WriteString("merge:\n")
		fmt.Fprintf(&b, "  sets: %s\n", joinNames(r.Merged.Sets))
		for _, w := range r.Merged.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
	}
	return b.String(), nil
}

func joinNames(sets []*vset.Set) string {
	if len(sets) == 0 {
		return "-"
	}
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
