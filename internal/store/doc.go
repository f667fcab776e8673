// Package store provides SQLite-backed durable storage for set documents.
//
// The store keeps an append-only revision history per document:
//   - documents: the current head revision of each document
//   - revisions: every saved body, including tombstones
//
// Saves are optimistic. A caller passes the revision it last read and gets
// a ConflictError when another writer got there first; nothing is retried.
//
// # Revisions
//
// Revision IDs have the form "<n>-<hash>" where n counts the saves of the
// document and hash is computed by ir.RevisionID over the parent revision
// and the canonical JSON body. History is ordered by n, never by time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
