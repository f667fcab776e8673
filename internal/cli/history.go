package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/ir"
	"github.com/roach88/versets/internal/repository"
	"github.com/roach88/versets/internal/store"
	"github.com/roach88/versets/internal/vset"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	Namespace string
	Show      string // revision whose body is printed; "head" for the current one
}

// RevisionView is one stored revision of a set document.
type RevisionView struct {
	Rev       string `json:"rev"`
	Seq       int64  `json:"seq"`
	ParentRev string `json:"parent_rev,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	DocID     string         `json:"doc_id"`
	Revisions []RevisionView `json:"revisions"`
	Body      string         `json:"body,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <set-type>",
		Short: "List the stored revisions of a set",
		Long: `List the revisions of the document of a set type, oldest first.

A set type is the primary type name, followed by the sub-type in angle
brackets for sets divided by sub-type, for example "Shift<night>". With
--show the canonical body of one revision is printed as well.

Examples:
  versets history --db ./versets.db Component
  versets history --db ./versets.db --namespace plant Component --show head`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", DefaultNamespace, "document namespace")
	cmd.Flags().StringVar(&opts.Show, "show", "", `print the body of a revision ("head" for the current one)`)
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

// parseSetType parses "Primary" or "Primary<Sub>".
func parseSetType(s string) (vset.SetType, error) {
	primary, rest, divided := strings.Cut(s, "<")
	if primary == "" {
		return vset.SetType{}, fmt.Errorf("invalid set type %q", s)
	}
	if !divided {
		return vset.SetType{Primary: primary}, nil
	}
	sub, ok := strings.CutSuffix(rest, ">")
	if !ok || sub == "" {
		return vset.SetType{}, fmt.Errorf("invalid set type %q", s)
	}
	return vset.SetType{Primary: primary, Sub: sub}, nil
}

func runHistory(opts *HistoryOptions, typeArg string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	t, err := parseSetType(typeArg)
	if err != nil {
		return fail(f, ExitCommandError, err)
	}

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return fail(f, ExitCommandError, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", opts.Database)})
	}
	f.VerboseLog("Opening database: %s", opts.Database)
	st, err := openStore(opts.Database)
	if err != nil {
		return fail(f, ExitCommandError, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Reading history needs no type declarations.
	repo := repository.New(descriptor.NewRegistry(), st, opts.Namespace,
		repository.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	docID := repo.DocID(t)
	revs, err := repo.History(ctx, t)
	if store.IsNotFound(err) {
		return fail(f, ExitCommandError, &LoadError{Code: ErrCodeNotFound, Message: err.Error()})
	}
	if err != nil {
		return fail(f, ExitCommandError, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}

	view := HistoryResult{DocID: docID, Revisions: make([]RevisionView, len(revs))}
	for i, r := range revs {
		view.Revisions[i] = RevisionView{Rev: r.Rev, Seq: r.Seq, ParentRev: r.ParentRev, Deleted: r.Deleted}
	}

	if opts.Show != "" {
		rev := opts.Show
		if rev == "head" {
			rev = ""
		}
		doc, err := repo.Document(ctx, t, rev)
		if err != nil {
			return fail(f, ExitCommandError, &LoadError{Code: ErrCodeNotFound, Message: err.Error()})
		}
		body, err := ir.MarshalCanonical(doc.Body)
		if err != nil {
			return fail(f, ExitFailure, err)
		}
		view.Body = string(body)
	}

	if f.JSON() {
		return f.Success(view)
	}
	for _, r := range view.Revisions {
		marker := ""
		if r.Deleted {
			marker = " (deleted)"
		}
		f.Printf("%4d  %s%s\n", r.Seq, r.Rev, marker)
	}
	if view.Body != "" {
		f.Printf("%s\n", view.Body)
	}
	return nil
}
