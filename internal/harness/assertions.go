package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/commit"
	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/vset"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertPartition:
			err = assertPartition(result.Outcome, a)
		case AssertModification:
			err = assertModification(result.Diff, a)
		case AssertSetName:
			err = assertSetName(result.Outcome, a)
		case AssertCycleCount:
			err = assertCount(a.Type, "elementary cycles", len(result.Cycles), a.Count)
		case AssertRevisionCount:
			err = assertCount(a.Type, "revisions written", len(result.Revisions), a.Count)
		case AssertMergeWarnings:
			if result.Merged == nil {
				err = fmt.Errorf("assertion[%d]: merge_warnings requires a merge step", i)
				break
			}
			err = assertCount(a.Type, "merge warnings", len(result.Merged.Warnings), a.Count)
		case AssertMergedField:
			err = assertMergedField(result, a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// partition returns the sets of a named commit partition.
func partition(o *commit.Outcome, name string) []*vset.Set {
	switch name {
	case "committed":
		return o.Committed
	case "modified":
		return o.Modified
	case "created":
		return o.Created
	case "deleted":
		return o.Deleted
	case "invariable":
		return o.Invariable
	case "bound":
		return o.BoundInNewState
	case "remained":
		return o.RemainedInOldState
	case "actual":
		return o.ActualState
	}
	return nil
}

// assertPartition compares base names in any order.
func assertPartition(o *commit.Outcome, a Assertion) error {
	var actual []string
	for _, s := range partition(o, a.Partition) {
		actual = append(actual, vset.BaseName(s.Name))
	}
	expected := slices.Clone(a.Sets)
	slices.Sort(actual)
	slices.Sort(expected)
	if !slices.Equal(actual, expected) {
		return &AssertionError{
			Type:     AssertPartition,
			Expected: fmt.Sprintf("%s = %v", a.Partition, expected),
			Actual:   fmt.Sprintf("%s = %v", a.Partition, actual),
		}
	}
	return nil
}

func assertModification(diff *compare.StateResult, a Assertion) error {
	for i := range diff.Sets {
		sr := &diff.Sets[i]
		if sr.Type.String() != a.Set {
			continue
		}
		if sr.Modification.String() != a.Modification {
			return &AssertionError{
				Type:     AssertModification,
				Expected: fmt.Sprintf("%s %s", a.Set, a.Modification),
				Actual:   fmt.Sprintf("%s %s", a.Set, sr.Modification),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertModification,
		Expected: fmt.Sprintf("%s %s", a.Set, a.Modification),
		Actual:   "set type not in diff",
	}
}

func assertSetName(o *commit.Outcome, a Assertion) error {
	for _, s := range o.ActualState {
		if s.Type.String() != a.Set {
			continue
		}
		if s.Name != a.Name {
			return &AssertionError{Type: AssertSetName, Expected: a.Name, Actual: s.Name}
		}
		return nil
	}
	return &AssertionError{Type: AssertSetName, Expected: a.Name, Actual: "set type not in actual state"}
}

func assertCount(kind, what string, actual, expected int) error {
	if actual != expected {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%d %s", expected, what),
			Actual:   fmt.Sprintf("%d %s", actual, what),
		}
	}
	return nil
}

func assertMergedField(r *Result, a Assertion) error {
	if r.Merged == nil {
		return fmt.Errorf("merged_field requires a merge step")
	}
	id, err := uuid.Parse(a.Object)
	if err != nil {
		return fmt.Errorf("merged_field: invalid object identity %q: %w", a.Object, err)
	}

	for _, s := range r.Merged.Sets {
		if s.Type.String() != a.Set {
			continue
		}
		o, ok := s.Member(id)
		if !ok {
			break
		}
		v, err := r.Registry.Get(o, a.Field)
		if err != nil {
			return fmt.Errorf("merged_field: %w", err)
		}
		if got := compare.FormatValue(r.Registry, v); got != a.Value {
			return &AssertionError{
				Type:     AssertMergedField,
				Expected: fmt.Sprintf("%s.%s = %s", a.Object, a.Field, a.Value),
				Actual:   fmt.Sprintf("%s.%s = %s", a.Object, a.Field, got),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertMergedField,
		Expected: fmt.Sprintf("object %s in merged %s", a.Object, a.Set),
		Actual:   "not found",
	}
}
