package vset

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	var gen UUIDv7Generator
	a, b := gen.NewID(), gen.NewID()
	assert.Equal(t, uuid.Version(7), a.Version())
	assert.NotEqual(t, a, b)
}

func TestSequentialGenerator(t *testing.T) {
	gen := NewSequentialGenerator()
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", gen.NewID().String())
	assert.Equal(t, "00000000-0000-7000-8000-000000000002", gen.NewID().String())

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(gen.NewID(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestFixedGenerator(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	gen := NewFixedGenerator(id1, id2)
	require.Equal(t, id1, gen.NewID())
	require.Equal(t, id2, gen.NewID())
	assert.Panics(t, func() { gen.NewID() })
}
