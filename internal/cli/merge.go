package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/merge"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	ModelOptions
	Leading string // "old" | "new"
	Strict  bool   // fail on degraded merges
}

// WarningView is an object that could not be merged cleanly.
type WarningView struct {
	Set     string `json:"set"`
	Object  string `json:"object"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MergeResult is the JSON payload of the merge command.
type MergeResult struct {
	Leading  string        `json:"leading"`
	Sets     []SetView     `json:"sets"`
	Warnings []WarningView `json:"warnings,omitempty"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{ModelOptions: ModelOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "merge <old.yaml> <new.yaml>",
		Short: "Merge two divergent states of a model",
		Long: `Convert two models, compare them and merge them into one state. The
leading side wins field conflicts.

Objects whose merge failed keep their leading version and are reported as
warnings. With --strict a degraded merge exits with status 1.

Examples:
  versets merge --types ./types ours.yaml theirs.yaml
  versets merge --types ./types ours.yaml theirs.yaml --leading old --strict`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Leading != "old" && opts.Leading != "new" {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid leading side %q: must be old or new", opts.Leading))
			}
			return runMerge(opts, args[0], args[1], cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Leading, "leading", "new", "side that wins field conflicts (old|new)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with status 1 on a degraded merge")
	return cmd
}

func runMerge(opts *MergeOptions, oldPath, newPath string, cmd *cobra.Command) error {
	s, err := openSession(&opts.ModelOptions, cmd)
	if err != nil {
		return err
	}
	diff, err := s.compare(oldPath, newPath)
	if err != nil {
		return err
	}

	res, err := merge.NewMerger(s.reg,
		merge.WithIDGenerator(s.ids),
		merge.WithLogger(s.logger),
	).Merge(diff, opts.Leading == "old")
	if err != nil {
		return s.engineError(err)
	}

	view := MergeResult{Leading: opts.Leading, Sets: newSetViews(s.reg, res.Sets)}
	for _, w := range res.Warnings {
		view.Warnings = append(view.Warnings, WarningView{
			Set:     w.Set,
			Object:  w.Object.String(),
			Type:    w.Type,
			Message: w.Err.Error(),
		})
	}

	if res.Degraded() && opts.Strict {
		msg := fmt.Sprintf("degraded merge: %d object(s) not merged", len(view.Warnings))
		if s.out.JSON() {
			_ = s.out.Failure(view, ErrCodeEngineFailed, msg)
		} else {
			printMerge(s.out, view)
		}
		return NewExitError(ExitFailure, msg)
	}
	if s.out.JSON() {
		return s.out.Success(view)
	}
	printMerge(s.out, view)
	return nil
}

func printMerge(out *OutputFormatter, view MergeResult) {
	for _, v := range view.Sets {
		out.Printf("%s\n", v)
	}
	for _, w := range view.Warnings {
		out.Printf("[warning] %s %s %s: %s\n", w.Set, w.Type, w.Object, w.Message)
	}
}
