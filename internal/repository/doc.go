// Package repository persists versioned sets in a document store.
//
// A Repository owns one namespace of documents, one per set type, with IDs
// of the form "<namespace>/<set type>". Commit runs the convert, compare and
// commit pipeline against the last loaded state and saves every committed
// set. Saves are optimistic; a set whose document moved on is reported as a
// Conflict and left unsaved.
package repository
