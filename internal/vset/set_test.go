package vset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/descriptor"
)

type checkerFunc func(bound, binder *Set) bool

func (f checkerFunc) IsBoundBy(bound, binder *Set) bool { return f(bound, binder) }

var allowAll = checkerFunc(func(*Set, *Set) bool { return true })
var denyAll = checkerFunc(func(*Set, *Set) bool { return false })

func newSet(name string) *Set {
	return New(uuid.New(), InitialName(name), SetType{Primary: name}, descriptor.PerClass, true)
}

func TestNew_VersioningPointsAtItself(t *testing.T) {
	s := newSet("Shift")
	assert.Equal(t, "Shift 0.0", s.Name)
	assert.Equal(t, []*Set{s}, s.Versioning())
	assert.Empty(t, s.Binding())
}

func TestAdd_UniqueByIdentity(t *testing.T) {
	s := newSet("Worker")
	id := uuid.New()
	a := descriptor.NewRecord("Worker", nil)
	b := descriptor.NewRecord("Worker", nil)

	assert.True(t, s.Add(id, a))
	assert.False(t, s.Add(id, b))
	assert.Equal(t, 1, s.Len())

	m, ok := s.Member(id)
	require.True(t, ok)
	assert.Same(t, a, m)
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(b))

	assert.True(t, s.Replace(id, b))
	m, _ = s.Member(id)
	assert.Same(t, b, m)
	assert.False(t, s.Replace(uuid.New(), a))
}

func TestBind_RequiresChecker(t *testing.T) {
	a, b := newSet("A"), newSet("B")

	err := a.Bind(b, denyAll)
	require.Error(t, err)
	assert.True(t, IsInvalidBinding(err))
	assert.Empty(t, a.Binding())

	err = a.Bind(b, nil)
	assert.True(t, IsInvalidBinding(err))

	require.NoError(t, a.Bind(b, allowAll))
	require.NoError(t, a.Bind(b, allowAll), "existing edge is a no-op")
	assert.Equal(t, []*Set{b}, a.Binding())
	assert.True(t, a.IsBoundTo(b))
	assert.False(t, b.IsBoundTo(a), "edges are directed")

	err = a.Bind(nil, allowAll)
	assert.True(t, IsPrecondition(err))
}

func TestReplaceBinding(t *testing.T) {
	a, b, b2, c := newSet("A"), newSet("B"), newSet("B"), newSet("C")
	require.NoError(t, a.Bind(b, allowAll))
	require.NoError(t, a.Bind(c, allowAll))

	err := a.ReplaceBinding(b, b2, denyAll)
	assert.True(t, IsInvalidBinding(err))
	assert.Equal(t, []*Set{b, c}, a.Binding())

	require.NoError(t, a.ReplaceBinding(b, b2, allowAll))
	assert.Equal(t, []*Set{b2, c}, a.Binding())

	// Rewriting onto an existing edge collapses the two.
	require.NoError(t, a.ReplaceBinding(b2, c, allowAll))
	assert.Equal(t, []*Set{c}, a.Binding())

	// Missing edges are ignored.
	require.NoError(t, a.ReplaceBinding(b, b2, denyAll))

	a.Unbind(c)
	assert.Empty(t, a.Binding())
}

func TestFieldUUIDs(t *testing.T) {
	s := newSet("Worker")
	id1, id2 := uuid.New(), uuid.New()
	crew := FieldKey{Owner: "Shift", Field: "crew"}
	lead := FieldKey{Owner: "Plant", Field: "lead"}

	s.AddFieldUUID(crew, id1)
	s.AddFieldUUID(crew, id2)
	s.AddFieldUUID(crew, id1)
	s.AddFieldUUID(lead, id2)

	assert.Equal(t, []uuid.UUID{id1, id2}, s.FieldUUIDs(crew))
	assert.Equal(t, []FieldKey{lead, crew}, s.FieldKeys())
	assert.Equal(t, "Shift.crew", crew.String())
}

func TestSetType(t *testing.T) {
	assert.Equal(t, "Shift", SetType{Primary: "Shift"}.String())
	assert.Equal(t, "Shift<Night>", SetType{Primary: "Shift", Sub: "Night"}.String())
	assert.Equal(t, SetType{Primary: "A", Sub: "x"}, SetType{Primary: "A", Sub: "x"})
	assert.NotEqual(t, SetType{Primary: "A"}, SetType{Primary: "A", Sub: "x"})

	b, a := newSet("B"), newSet("A")
	sets := []*Set{b, a}
	Sort(sets)
	assert.Equal(t, []*Set{a, b}, sets)
	assert.Same(t, b, FindType(sets, SetType{Primary: "B"}))
	assert.Nil(t, FindType(sets, SetType{Primary: "C"}))
}
