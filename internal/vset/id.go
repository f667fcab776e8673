package vset

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces set identities.
type IDGenerator interface {
	NewID() uuid.UUID
}

// UUIDv7Generator generates time-sortable UUIDv7 set identities.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// SequentialGenerator returns deterministic identities 1, 2, 3, ... for
// tests and golden output.
//
// Thread-safety: SequentialGenerator is safe for concurrent use.
type SequentialGenerator struct {
	mu   sync.Mutex
	next uint64
}

// NewSequentialGenerator starts the sequence at 1.
func NewSequentialGenerator() *SequentialGenerator {
	return &SequentialGenerator{next: 1}
}

// NewID returns the next identity of the sequence, formatted as
// "00000000-0000-7000-8000-<12 hex digits>".
func (g *SequentialGenerator) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := uuid.MustParse(fmt.Sprintf("00000000-0000-7000-8000-%012x", g.next))
	g.next++
	return id
}

// FixedGenerator returns predetermined identities in order.
//
// Thread-safety: FixedGenerator is safe for concurrent use.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []uuid.UUID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...uuid.UUID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined identity.
//
// Panics if all identities have been consumed, to catch a test that
// creates more sets than it expects.
func (g *FixedGenerator) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
