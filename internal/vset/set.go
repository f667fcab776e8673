package vset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/descriptor"
)

// SetType is the grouping key of a set: a primary type plus the sub-type
// resolved from divisor fields under PerObjectType.
type SetType struct {
	Primary string
	Sub     string
}

func (t SetType) String() string {
	if t.Sub == "" {
		return t.Primary
	}
	return t.Primary + "<" + t.Sub + ">"
}

// Compare orders set types by primary and then sub-type.
func (t SetType) Compare(o SetType) int {
	if c := strings.Compare(t.Primary, o.Primary); c != 0 {
		return c
	}
	return strings.Compare(t.Sub, o.Sub)
}

// FieldKey identifies a field of a container type.
type FieldKey struct {
	Owner string
	Field string
}

func (k FieldKey) String() string {
	return k.Owner + "." + k.Field
}

// BindingChecker decides whether bound is referentially bound by binder.
type BindingChecker interface {
	IsBoundBy(bound, binder *Set) bool
}

// Set is a named, typed group of domain objects versioned as one unit.
//
// Set is not safe for concurrent mutation.
type Set struct {
	UUID     uuid.UUID
	Name     string
	Type     SetType
	Strategy descriptor.Strategy
	Visible  bool

	// Revision is the document revision the set was last stored under.
	// Empty for sets that were never persisted.
	Revision string

	members []descriptor.Object
	ids     []uuid.UUID
	index   map[uuid.UUID]int

	binding    []*Set
	versioning []*Set

	fieldUUIDs map[FieldKey][]uuid.UUID
}

// New creates an empty set whose versioning edge points at itself.
func New(id uuid.UUID, name string, t SetType, strategy descriptor.Strategy, visible bool) *Set {
	s := &Set{
		UUID:       id,
		Name:       name,
		Type:       t,
		Strategy:   strategy,
		Visible:    visible,
		index:      make(map[uuid.UUID]int),
		fieldUUIDs: make(map[FieldKey][]uuid.UUID),
	}
	s.versioning = []*Set{s}
	return s
}

func (s *Set) String() string {
	return fmt.Sprintf("%s[%s]", s.Name, s.Type)
}

// Add adds a member under its identity. It reports false when a member
// with the same identity is already present.
func (s *Set) Add(id uuid.UUID, o descriptor.Object) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.members)
	s.members = append(s.members, o)
	s.ids = append(s.ids, id)
	return true
}

// Replace swaps the member with the given identity for o.
func (s *Set) Replace(id uuid.UUID, o descriptor.Object) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.members[i] = o
	return true
}

// Member returns the member with the given identity.
func (s *Set) Member(id uuid.UUID) (descriptor.Object, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.members[i], true
}

// Has reports whether a member with the given identity exists.
func (s *Set) Has(id uuid.UUID) bool {
	_, ok := s.index[id]
	return ok
}

// Contains reports whether o itself is a member.
func (s *Set) Contains(o descriptor.Object) bool {
	return slices.Contains(s.members, o)
}

// Members returns the members in insertion order.
func (s *Set) Members() []descriptor.Object {
	return slices.Clone(s.members)
}

// IDs returns the member identities in insertion order.
func (s *Set) IDs() []uuid.UUID {
	return slices.Clone(s.ids)
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Bind adds a binding edge from s to target. The edge is rejected unless
// checker confirms that s is bound by target.
func (s *Set) Bind(target *Set, checker BindingChecker) error {
	if target == nil {
		return Precondition("binding target is nil")
	}
	if s.IsBoundTo(target) {
		return nil
	}
	if checker == nil || !checker.IsBoundBy(s, target) {
		return &Error{
			Code:    ErrCodeInvalidBinding,
			Message: fmt.Sprintf("no member references %s", target.Name),
			Set:     s.Name,
		}
	}
	s.binding = append(s.binding, target)
	return nil
}

// ReplaceBinding rewrites the edge to old so that it points at repl.
// The new edge is checked like any other.
func (s *Set) ReplaceBinding(old, repl *Set, checker BindingChecker) error {
	i := slices.Index(s.binding, old)
	if i < 0 {
		return nil
	}
	if old == repl {
		return nil
	}
	if checker == nil || !checker.IsBoundBy(s, repl) {
		return &Error{
			Code:    ErrCodeInvalidBinding,
			Message: fmt.Sprintf("no member references %s", repl.Name),
			Set:     s.Name,
		}
	}
	if s.IsBoundTo(repl) {
		s.binding = slices.Delete(s.binding, i, i+1)
		return nil
	}
	s.binding[i] = repl
	return nil
}

// Unbind removes the binding edge to target.
func (s *Set) Unbind(target *Set) {
	s.binding = slices.DeleteFunc(s.binding, func(t *Set) bool { return t == target })
}

// IsBoundTo reports whether s has a binding edge to target.
func (s *Set) IsBoundTo(target *Set) bool {
	return slices.Contains(s.binding, target)
}

// Binding returns the binding edges of s.
func (s *Set) Binding() []*Set {
	return slices.Clone(s.binding)
}

// Versioning returns the versioning edges of s.
func (s *Set) Versioning() []*Set {
	return slices.Clone(s.versioning)
}

// SetVersioning replaces the versioning edges of s.
func (s *Set) SetVersioning(prev ...*Set) {
	s.versioning = slices.Clone(prev)
}

// AddFieldUUID records that id was absorbed from field key of a container.
func (s *Set) AddFieldUUID(key FieldKey, id uuid.UUID) {
	if slices.Contains(s.fieldUUIDs[key], id) {
		return
	}
	s.fieldUUIDs[key] = append(s.fieldUUIDs[key], id)
}

// FieldUUIDs returns the identities recorded for key.
func (s *Set) FieldUUIDs(key FieldKey) []uuid.UUID {
	return slices.Clone(s.fieldUUIDs[key])
}

// FieldKeys returns the recorded field keys in sorted order.
func (s *Set) FieldKeys() []FieldKey {
	keys := make([]FieldKey, 0, len(s.fieldUUIDs))
	for k := range s.fieldUUIDs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b FieldKey) int {
		if c := strings.Compare(a.Owner, b.Owner); c != 0 {
			return c
		}
		return strings.Compare(a.Field, b.Field)
	})
	return keys
}

// FindType returns the set of the given type, or nil.
func FindType(sets []*Set, t SetType) *Set {
	for _, s := range sets {
		if s.Type == t {
			return s
		}
	}
	return nil
}

// Sort orders sets by type for deterministic output.
func Sort(sets []*Set) {
	slices.SortStableFunc(sets, func(a, b *Set) int {
		return a.Type.Compare(b.Type)
	})
}
