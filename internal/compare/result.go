package compare

import (
	"github.com/google/uuid"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// Modification classifies a diff node.
type Modification int

const (
	Invariable Modification = iota
	Created
	Deleted
	Modified
)

var modificationNames = [...]string{
	Invariable: "INVARIABLE",
	Created:    "CREATED",
	Deleted:    "DELETED",
	Modified:   "MODIFIED",
}

func (m Modification) String() string {
	if int(m) < len(modificationNames) {
		return modificationNames[m]
	}
	return "UNKNOWN"
}

// FieldResult is the diff of one field. A nil side is an absent value.
type FieldResult struct {
	Field        descriptor.Field
	First        any
	Second       any
	Modification Modification
}

// IsEqual reports whether both sides are equal.
func (r *FieldResult) IsEqual() bool {
	return r.Modification == Invariable
}

// ObjectResult is the diff of one member object.
type ObjectResult struct {
	ID           uuid.UUID
	Type         string
	First        descriptor.Object
	Second       descriptor.Object
	Fields       []FieldResult
	Modification Modification
}

// IsEqual reports whether both sides are equal.
func (r *ObjectResult) IsEqual() bool {
	return r.Modification == Invariable
}

// SetResult is the diff of the sets of one type.
type SetResult struct {
	Type         vset.SetType
	First        *vset.Set
	Second       *vset.Set
	Objects      []ObjectResult
	Modification Modification
}

// IsEqual reports whether both sides are equal.
func (r *SetResult) IsEqual() bool {
	return r.Modification == Invariable
}

// ObjectsWith returns the object results with the given modification.
func (r *SetResult) ObjectsWith(m Modification) []ObjectResult {
	var out []ObjectResult
	for _, o := range r.Objects {
		if o.Modification == m {
			out = append(out, o)
		}
	}
	return out
}

// StateResult is the diff of two states.
type StateResult struct {
	Sets []SetResult
}

// IsEqual reports whether every set result is equal.
func (r *StateResult) IsEqual() bool {
	for i := range r.Sets {
		if !r.Sets[i].IsEqual() {
			return false
		}
	}
	return true
}

// Set returns the result for a set type, or nil.
func (r *StateResult) Set(t vset.SetType) *SetResult {
	for i := range r.Sets {
		if r.Sets[i].Type == t {
			return &r.Sets[i]
		}
	}
	return nil
}

// Count returns the number of set results with the given modification.
func (r *StateResult) Count(m Modification) int {
	n := 0
	for i := range r.Sets {
		if r.Sets[i].Modification == m {
			n++
		}
	}
	return n
}
