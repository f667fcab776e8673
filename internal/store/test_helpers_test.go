package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/versets/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// body creates a minimal set document body.
func body(name string, members ...string) ir.IRObject {
	ids := make(ir.IRArray, len(members))
	for i, m := range members {
		ids[i] = ir.IRString(m)
	}
	return ir.IRObject{"name": ir.IRString(name), "members": ids}
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
