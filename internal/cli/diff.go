package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/compare"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	ModelOptions
	All bool // include equal objects and fields
}

// SetDiff is the JSON rendering of one set of a diff.
type SetDiff struct {
	Type         string       `json:"type"`
	Old          string       `json:"old,omitempty"`
	New          string       `json:"new,omitempty"`
	Modification string       `json:"modification"`
	Objects      []ObjectDiff `json:"objects,omitempty"`
}

// ObjectDiff is the JSON rendering of one member object of a diff.
type ObjectDiff struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Modification string      `json:"modification"`
	Fields       []FieldDiff `json:"fields,omitempty"`
}

// FieldDiff is the JSON rendering of one field of a diff.
type FieldDiff struct {
	Name         string `json:"name"`
	Old          string `json:"old"`
	New          string `json:"new"`
	Modification string `json:"modification"`
}

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	Equal bool      `json:"equal"`
	Sets  []SetDiff `json:"sets"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{ModelOptions: ModelOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "diff <old.yaml> <new.yaml>",
		Short: "Compare two states of a model",
		Long: `Convert two models and compare their sets, objects and fields.

Only changes are shown unless --all is given.

Examples:
  versets diff --types ./types old.yaml new.yaml
  versets diff --types ./types old.yaml new.yaml --all --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.All, "all", false, "include equal objects and fields")
	return cmd
}

func runDiff(opts *DiffOptions, oldPath, newPath string, cmd *cobra.Command) error {
	s, err := openSession(&opts.ModelOptions, cmd)
	if err != nil {
		return err
	}
	diff, err := s.compare(oldPath, newPath)
	if err != nil {
		return err
	}

	if s.out.JSON() {
		return s.out.Success(newDiffResult(s, diff, opts.All))
	}
	if diff.IsEqual() {
		s.out.Printf("no changes\n")
		return nil
	}
	return compare.Format(s.out.Writer, s.reg, diff, opts.All)
}

// compare converts both models and compares the resulting states.
func (s *session) compare(oldPath, newPath string) (*compare.StateResult, error) {
	oldSets, err := s.convert(oldPath)
	if err != nil {
		return nil, err
	}
	newSets, err := s.convert(newPath)
	if err != nil {
		return nil, err
	}
	diff, err := compare.NewComparator(s.reg, compare.WithLogger(s.logger)).CompareStates(oldSets, newSets)
	if err != nil {
		return nil, s.engineError(err)
	}
	return diff, nil
}

func newDiffResult(s *session, diff *compare.StateResult, all bool) DiffResult {
	res := DiffResult{Equal: diff.IsEqual(), Sets: make([]SetDiff, 0, len(diff.Sets))}
	for i := range diff.Sets {
		sr := &diff.Sets[i]
		sd := SetDiff{Modification: sr.Modification.String()}
		if sr.First != nil {
			sd.Old = sr.First.Name
			sd.Type = sr.First.Type.String()
		}
		if sr.Second != nil {
			sd.New = sr.Second.Name
			sd.Type = sr.Second.Type.String()
		}
		for j := range sr.Objects {
			or := &sr.Objects[j]
			if or.IsEqual() && !all {
				continue
			}
			od := ObjectDiff{ID: or.ID.String(), Type: or.Type, Modification: or.Modification.String()}
			for k := range or.Fields {
				fr := &or.Fields[k]
				if fr.IsEqual() && !all {
					continue
				}
				od.Fields = append(od.Fields, FieldDiff{
					Name:         fr.Field.Name,
					Old:          compare.FormatValue(s.reg, fr.First),
					New:          compare.FormatValue(s.reg, fr.Second),
					Modification: fr.Modification.String(),
				})
			}
			sd.Objects = append(sd.Objects, od)
		}
		res.Sets = append(res.Sets, sd)
	}
	return res
}
