package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/versets/internal/ir"
)

// Save writes a new revision of a document. expectedRev is the revision the
// caller last read, or "" for a document that should not exist yet. A
// mismatch with the current head returns a ConflictError and writes
// nothing.
//
// Saving over a tombstone requires the tombstone's revision and revives the
// document.
func (s *Store) Save(ctx context.Context, id, expectedRev string, body ir.IRObject) (Document, error) {
	data, err := marshalBody(body)
	if err != nil {
		return Document{}, fmt.Errorf("save %s: %w", id, err)
	}
	doc, err := s.append(ctx, id, expectedRev, data, false)
	if err != nil {
		return Document{}, err
	}
	doc.Body = body
	return doc, nil
}

// Delete writes a tombstone revision. The document's history stays
// readable through LoadRevision and ListRevisions.
func (s *Store) Delete(ctx context.Context, id, expectedRev string) (Document, error) {
	if expectedRev == "" {
		return Document{}, &NotFoundError{ID: id}
	}
	doc, err := s.append(ctx, id, expectedRev, []byte("{}"), true)
	if err != nil {
		return Document{}, err
	}
	doc.Body = ir.IRObject{}
	return doc, nil
}

func (s *Store) append(ctx context.Context, id, expectedRev string, body []byte, deleted bool) (Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("save %s: begin tx: %w", id, err)
	}
	defer tx.Rollback() // No-op if committed

	var (
		headRev     string
		headSeq     int64
		headDeleted int
	)
	err = tx.QueryRowContext(ctx, `SELECT rev, seq, deleted FROM documents WHERE id = ?`, id).
		Scan(&headRev, &headSeq, &headDeleted)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if deleted {
			return Document{}, &NotFoundError{ID: id}
		}
	case err != nil:
		return Document{}, fmt.Errorf("save %s: read head: %w", id, err)
	case deleted && headDeleted != 0:
		return Document{}, &NotFoundError{ID: id}
	}

	if headRev != expectedRev {
		return Document{}, &ConflictError{ID: id, Expected: expectedRev, Actual: headRev}
	}

	seq := headSeq + 1
	rev := ir.RevisionID(seq, headRev, body)
	flag := 0
	if deleted {
		flag = 1
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, rev, seq, deleted)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET rev = excluded.rev, seq = excluded.seq, deleted = excluded.deleted
	`, id, rev, seq, flag); err != nil {
		return Document{}, fmt.Errorf("save %s: write head: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (doc_id, rev, seq, parent_rev, body, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, rev, seq, headRev, string(body), flag); err != nil {
		return Document{}, fmt.Errorf("save %s: write revision: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("save %s: commit: %w", id, err)
	}

	return Document{ID: id, Rev: rev, Seq: seq, Deleted: deleted}, nil
}
