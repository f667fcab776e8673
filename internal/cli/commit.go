package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/commit"
	"github.com/roach88/versets/internal/repository"
)

// DefaultNamespace is the document namespace used without --namespace.
const DefaultNamespace = "default"

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	ModelOptions
	Database  string
	Namespace string
}

// PartitionView is one partition of a commit outcome.
type PartitionView struct {
	Name string   `json:"name"`
	Sets []string `json:"sets"`
}

// ConflictView is a set whose document changed concurrently.
type ConflictView struct {
	Set     string `json:"set"`
	DocID   string `json:"doc_id"`
	Message string `json:"message"`
}

// CommitResult is the JSON payload of the commit command.
type CommitResult struct {
	Namespace  string            `json:"namespace"`
	Partitions []PartitionView   `json:"partitions"`
	Revisions  map[string]string `json:"revisions"`
	Conflicts  []ConflictView    `json:"conflicts,omitempty"`
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{ModelOptions: ModelOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "commit <model.yaml>",
		Short: "Commit a model state to the document store",
		Long: `Convert a model, compare it with the state stored in the database and
save every committed set as a new document revision. Set types missing
from the model are tombstoned.

Sets whose documents changed since the stored state was loaded are
reported as conflicts and never retried.

Exit codes:
  0 - State committed
  1 - One or more sets conflicted
  2 - Command error (invalid paths, declarations or models)

Examples:
  versets commit --types ./types --db ./versets.db model.yaml
  versets commit --types ./types --db ./versets.db --namespace plant model.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", DefaultNamespace, "document namespace")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runCommit(opts *CommitOptions, modelPath string, cmd *cobra.Command) error {
	s, err := openSession(&opts.ModelOptions, cmd)
	if err != nil {
		return err
	}
	roots, err := s.roots(modelPath)
	if err != nil {
		return err
	}

	s.out.VerboseLog("Opening database: %s", opts.Database)
	st, err := openStore(opts.Database)
	if err != nil {
		return fail(s.out, ExitCommandError, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo := repository.New(s.reg, st, opts.Namespace,
		repository.WithIDGenerator(s.ids),
		repository.WithLogger(s.logger))

	oldSets, err := repo.LoadState(ctx)
	if err != nil {
		return fail(s.out, ExitCommandError, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	s.out.VerboseLog("Loaded %d stored set(s)", len(oldSets))

	res, err := repo.Commit(ctx, oldSets, roots...)
	if err != nil {
		return s.engineError(err)
	}

	view := newCommitResult(opts.Namespace, res)
	if len(view.Conflicts) > 0 {
		msg := fmt.Sprintf("%d set(s) conflicted", len(view.Conflicts))
		if s.out.JSON() {
			_ = s.out.Failure(view, ErrCodeConflict, msg)
		} else {
			printCommit(s.out, view)
		}
		return NewExitError(ExitFailure, msg)
	}
	if s.out.JSON() {
		return s.out.Success(view)
	}
	printCommit(s.out, view)
	return nil
}

func partitionViews(o *commit.Outcome) []PartitionView {
	return []PartitionView{
		{Name: "committed", Sets: setNames(o.Committed)},
		{Name: "modified", Sets: setNames(o.Modified)},
		{Name: "created", Sets: setNames(o.Created)},
		{Name: "deleted", Sets: setNames(o.Deleted)},
		{Name: "invariable", Sets: setNames(o.Invariable)},
		{Name: "bound", Sets: setNames(o.BoundInNewState)},
		{Name: "remained", Sets: setNames(o.RemainedInOldState)},
		{Name: "actual", Sets: setNames(o.ActualState)},
	}
}

func newCommitResult(namespace string, res *repository.Result) CommitResult {
	view := CommitResult{
		Namespace:  namespace,
		Partitions: partitionViews(res.Outcome),
		Revisions:  res.Revisions,
	}
	for _, c := range res.Conflicts {
		view.Conflicts = append(view.Conflicts, ConflictView{Set: c.Set.Name, DocID: c.DocID, Message: c.Err.Error()})
	}
	return view
}

func printCommit(out *OutputFormatter, view CommitResult) {
	for _, p := range view.Partitions {
		out.Printf("%-11s %s\n", p.Name+":", joinStrings(p.Sets))
	}

	ids := make([]string, 0, len(view.Revisions))
	for id := range view.Revisions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if len(ids) > 0 {
		out.Printf("revisions:\n")
	}
	for _, id := range ids {
		out.Printf("  %s  %s\n", id, view.Revisions[id])
	}

	for _, c := range view.Conflicts {
		out.Printf("[conflict] %s (%s): %s\n", c.Set, c.DocID, c.Message)
	}
}
