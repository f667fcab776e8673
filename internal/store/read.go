package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/versets/internal/ir"
)

// Document is one revision of a stored document.
type Document struct {
	ID      string
	Rev     string
	Seq     int64
	Body    ir.IRObject
	Deleted bool
}

// Revision is a history entry of a document, without its body.
type Revision struct {
	Rev       string
	Seq       int64
	ParentRev string
	Deleted   bool
}

// Load returns the current revision of a document. A deleted document is
// reported as not found.
func (s *Store) Load(ctx context.Context, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.rev, r.seq, r.body, r.deleted
		FROM documents d
		JOIN revisions r ON r.doc_id = d.id AND r.rev = d.rev
		WHERE d.id = ?
	`, id)

	doc, err := scanDocument(id, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", id, err)
	}
	if doc.Deleted {
		return Document{}, &NotFoundError{ID: id}
	}
	return doc, nil
}

// LoadRevision returns a specific revision of a document, tombstones
// included.
func (s *Store) LoadRevision(ctx context.Context, id, rev string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT rev, seq, body, deleted
		FROM revisions
		WHERE doc_id = ? AND rev = ?
	`, id, rev)

	doc, err := scanDocument(id, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, &NotFoundError{ID: id, Rev: rev}
	}
	if err != nil {
		return Document{}, fmt.Errorf("load %s@%s: %w", id, rev, err)
	}
	return doc, nil
}

// ListRevisions returns the history of a document, oldest first.
func (s *Store) ListRevisions(ctx context.Context, id string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rev, seq, parent_rev, deleted
		FROM revisions
		WHERE doc_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var (
			r       Revision
			deleted int
		)
		if err := rows.Scan(&r.Rev, &r.Seq, &r.ParentRev, &deleted); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.Deleted = deleted != 0
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	if len(revs) == 0 {
		return nil, &NotFoundError{ID: id}
	}
	return revs, nil
}

// ListDocuments returns the IDs of all live documents whose ID starts with
// prefix, in binary order.
func (s *Store) ListDocuments(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM documents
		WHERE deleted = 0 AND substr(id, 1, ?) = ?
		ORDER BY id COLLATE BINARY ASC
	`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return ids, nil
}

func scanDocument(id string, row *sql.Row) (Document, error) {
	var (
		doc     = Document{ID: id}
		body    string
		deleted int
	)
	if err := row.Scan(&doc.Rev, &doc.Seq, &body, &deleted); err != nil {
		return Document{}, err
	}
	parsed, err := unmarshalBody(body)
	if err != nil {
		return Document{}, err
	}
	doc.Body = parsed
	doc.Deleted = deleted != 0
	return doc, nil
}
