package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/graph"
)

// CyclesResult is the JSON payload of the cycles command.
type CyclesResult struct {
	Cycles     [][]string `json:"cycles"`
	Components [][]string `json:"components"`
}

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cycles <model.yaml>",
		Short: "Report binding cycles of a model",
		Long: `Convert a model and report the elementary cycles of its binding graph
together with the groups of mutually bound sets. Cycles are diagnostics:
they never prevent a commit.

Examples:
  versets cycles --types ./types model.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycles(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runCycles(opts *ModelOptions, modelPath string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	sets, err := s.convert(modelPath)
	if err != nil {
		return err
	}

	view := CyclesResult{Cycles: [][]string{}, Components: [][]string{}}
	for _, c := range graph.FindElementaryCycles(sets) {
		view.Cycles = append(view.Cycles, setNames(c))
	}
	for _, c := range graph.Components(sets) {
		view.Components = append(view.Components, setNames(c))
	}

	if s.out.JSON() {
		return s.out.Success(view)
	}
	if len(view.Cycles) == 0 {
		s.out.Printf("no cycles\n")
		return nil
	}
	for _, c := range view.Cycles {
		s.out.Printf("cycle: %s\n", strings.Join(c, " -> "))
	}
	for _, c := range view.Components {
		s.out.Printf("component: %s\n", strings.Join(c, ", "))
	}
	return nil
}
