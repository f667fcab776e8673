package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/versets/internal/commit"
	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/convert"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/ir"
	"github.com/roach88/versets/internal/store"
	"github.com/roach88/versets/internal/vset"
)

// DocumentStore is the storage collaborator of a Repository.
// *store.Store implements it.
type DocumentStore interface {
	Load(ctx context.Context, id string) (store.Document, error)
	LoadRevision(ctx context.Context, id, rev string) (store.Document, error)
	Save(ctx context.Context, id, expectedRev string, body ir.IRObject) (store.Document, error)
	Delete(ctx context.Context, id, expectedRev string) (store.Document, error)
	ListRevisions(ctx context.Context, id string) ([]store.Revision, error)
	ListDocuments(ctx context.Context, prefix string) ([]string, error)
}

// Conflict is a set that could not be saved because its document changed
// since the state was loaded.
type Conflict struct {
	Set   *vset.Set
	DocID string
	Err   error
}

// Result is the outcome of a persisted commit.
type Result struct {
	Diff    *compare.StateResult
	Outcome *commit.Outcome

	// Revisions maps document IDs to the revisions written by this commit.
	Revisions map[string]string

	Conflicts []Conflict
}

// Repository persists set states of one namespace.
type Repository struct {
	reg       *descriptor.Registry
	docs      DocumentStore
	namespace string
	checker   *graph.Checker
	ids       vset.IDGenerator
	logger    *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithIDGenerator sets the generator of new set identities.
func WithIDGenerator(g vset.IDGenerator) Option {
	return func(r *Repository) {
		r.ids = g
	}
}

// New creates a Repository storing documents of namespace in docs.
func New(reg *descriptor.Registry, docs DocumentStore, namespace string, opts ...Option) *Repository {
	r := &Repository{
		reg:       reg,
		docs:      docs,
		namespace: namespace,
		ids:       vset.UUIDv7Generator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.checker = graph.NewChecker(reg, graph.WithLogger(r.logger))
	return r
}

// DocID returns the document ID of a set type.
func (r *Repository) DocID(t vset.SetType) string {
	return r.namespace + "/" + t.String()
}

// LoadState decodes every live document of the namespace. Each set carries
// the revision it was loaded at.
func (r *Repository) LoadState(ctx context.Context) ([]*vset.Set, error) {
	ids, err := r.docs.ListDocuments(ctx, r.namespace+"/")
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	bodies := make([]ir.IRObject, 0, len(ids))
	revs := make([]string, 0, len(ids))
	for _, id := range ids {
		doc, err := r.docs.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		bodies = append(bodies, doc.Body)
		revs = append(revs, doc.Rev)
	}

	sets, err := vset.Decode(r.reg, r.checker, bodies)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	for i, s := range sets {
		s.Revision = revs[i]
	}

	r.logger.Debug("loaded state", "namespace", r.namespace, "sets", len(sets))
	return sets, nil
}

// Commit converts roots into a new state, commits it against oldSets and
// saves every committed set. Deleted set types are tombstoned. Conflicting
// documents are reported in the result and never retried.
func (r *Repository) Commit(ctx context.Context, oldSets []*vset.Set, roots ...descriptor.Object) (*Result, error) {
	newSets, err := convert.NewConverter(r.reg,
		convert.WithChecker(r.checker),
		convert.WithIDGenerator(r.ids),
		convert.WithLogger(r.logger),
	).Convert(roots...)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	diff, err := compare.NewComparator(r.reg, compare.WithLogger(r.logger)).CompareStates(oldSets, newSets)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	outcome, err := commit.NewCommitter(r.checker, commit.WithLogger(r.logger)).Commit(diff)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	res := &Result{Diff: diff, Outcome: outcome, Revisions: make(map[string]string)}
	for _, s := range outcome.Committed {
		if err := r.save(ctx, s, expectedRevision(oldSets, s.Type), res); err != nil {
			return res, err
		}
	}
	for _, s := range outcome.Deleted {
		if err := r.remove(ctx, s, res); err != nil {
			return res, err
		}
	}

	r.logger.Info("committed state",
		"namespace", r.namespace,
		"committed", len(outcome.Committed),
		"deleted", len(outcome.Deleted),
		"conflicts", len(res.Conflicts))
	return res, nil
}

func expectedRevision(oldSets []*vset.Set, t vset.SetType) string {
	if prev := vset.FindType(oldSets, t); prev != nil {
		return prev.Revision
	}
	return ""
}

func (r *Repository) save(ctx context.Context, s *vset.Set, expectedRev string, res *Result) error {
	id := r.DocID(s.Type)
	body, err := vset.Encode(r.reg, s)
	if err != nil {
		return fmt.Errorf("commit %s: %w", s.Name, err)
	}

	doc, err := r.docs.Save(ctx, id, expectedRev, body)
	if store.IsConflict(err) {
		r.conflict(s, id, err, res)
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit %s: %w", s.Name, err)
	}

	s.Revision = doc.Rev
	res.Revisions[id] = doc.Rev
	return nil
}

func (r *Repository) remove(ctx context.Context, s *vset.Set, res *Result) error {
	id := r.DocID(s.Type)
	doc, err := r.docs.Delete(ctx, id, s.Revision)
	switch {
	case store.IsConflict(err):
		r.conflict(s, id, err, res)
		return nil
	case store.IsNotFound(err):
		r.logger.Warn("deleted set was never stored", "set", s.Name, "doc", id)
		return nil
	case err != nil:
		return fmt.Errorf("delete %s: %w", s.Name, err)
	}
	res.Revisions[id] = doc.Rev
	return nil
}

func (r *Repository) conflict(s *vset.Set, id string, err error, res *Result) {
	r.logger.Warn("concurrent update conflict", "set", s.Name, "doc", id, "err", err)
	res.Conflicts = append(res.Conflicts, Conflict{Set: s, DocID: id, Err: err})
}

// History lists the revisions of the document of a set type, oldest first.
func (r *Repository) History(ctx context.Context, t vset.SetType) ([]store.Revision, error) {
	revs, err := r.docs.ListRevisions(ctx, r.DocID(t))
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", t, err)
	}
	return revs, nil
}

// Document returns a stored revision of the document of a set type.
// An empty rev returns the current revision.
func (r *Repository) Document(ctx context.Context, t vset.SetType, rev string) (store.Document, error) {
	var (
		doc store.Document
		err error
	)
	if rev == "" {
		doc, err = r.docs.Load(ctx, r.DocID(t))
	} else {
		doc, err = r.docs.LoadRevision(ctx, r.DocID(t), rev)
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("document %s: %w", t, err)
	}
	return doc, nil
}
