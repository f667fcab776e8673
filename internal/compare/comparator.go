package compare

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// Comparator diffs states, sets, objects and fields. It keeps no state
// between calls and is safe for concurrent use.
type Comparator struct {
	reg    *descriptor.Registry
	logger *slog.Logger
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) {
		c.logger = l
	}
}

// NewComparator creates a Comparator over reg.
func NewComparator(reg *descriptor.Registry, opts ...Option) *Comparator {
	c := &Comparator{reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompareStates pairs old and new sets by set type and diffs each pair.
// New sets without an old counterpart are CREATED; old sets whose type
// is gone from the new state are DELETED and listed last.
func (c *Comparator) CompareStates(oldSets, newSets []*vset.Set) (*StateResult, error) {
	result := &StateResult{}
	seen := make(map[vset.SetType]bool, len(newSets))

	for _, ns := range newSets {
		if seen[ns.Type] {
			return nil, vset.Precondition("new state has more than one set of type %s", ns.Type)
		}
		seen[ns.Type] = true
		sr, err := c.CompareSets(vset.FindType(oldSets, ns.Type), ns)
		if err != nil {
			return nil, err
		}
		result.Sets = append(result.Sets, *sr)
	}
	for _, prev := range oldSets {
		if seen[prev.Type] {
			continue
		}
		seen[prev.Type] = true
		sr, err := c.CompareSets(prev, nil)
		if err != nil {
			return nil, err
		}
		result.Sets = append(result.Sets, *sr)
	}

	c.logger.Debug("compared states",
		"sets", len(result.Sets),
		"created", result.Count(Created),
		"deleted", result.Count(Deleted),
		"modified", result.Count(Modified))
	return result, nil
}

// CompareSets diffs two sets of the same type. Either side may be nil.
func (c *Comparator) CompareSets(oldSet, newSet *vset.Set) (*SetResult, error) {
	switch {
	case oldSet == nil && newSet == nil:
		return nil, &BothAbsentError{What: "set"}
	case oldSet == nil:
		return c.oneSided(newSet, Created)
	case newSet == nil:
		return c.oneSided(oldSet, Deleted)
	}

	if oldSet.Type != newSet.Type {
		return nil, vset.Precondition("cannot compare set %s with set %s", oldSet.Type, newSet.Type)
	}

	sr := &SetResult{Type: newSet.Type, First: oldSet, Second: newSet, Modification: Invariable}
	matched := make(map[uuid.UUID]bool, oldSet.Len())

	for _, id := range newSet.IDs() {
		nm, _ := newSet.Member(id)
		oid, om := c.counterpart(oldSet, id, nm)
		var (
			or  *ObjectResult
			err error
		)
		if om != nil {
			matched[oid] = true
			or, err = c.CompareObjects(om, nm)
		} else {
			or, err = c.CompareObjects(nil, nm)
		}
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", newSet.Name, err)
		}
		sr.add(or)
	}
	for _, id := range oldSet.IDs() {
		if matched[id] {
			continue
		}
		om, _ := oldSet.Member(id)
		or, err := c.CompareObjects(om, nil)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", oldSet.Name, err)
		}
		sr.add(or)
	}
	return sr, nil
}

func (sr *SetResult) add(or *ObjectResult) {
	sr.Objects = append(sr.Objects, *or)
	if !or.IsEqual() {
		sr.Modification = Modified
	}
}

// counterpart finds the member of s that is the same logical object as o,
// trying the member with o's identity first.
func (c *Comparator) counterpart(s *vset.Set, id uuid.UUID, o descriptor.Object) (uuid.UUID, descriptor.Object) {
	if m, ok := s.Member(id); ok && c.reg.Same(m, o) {
		return id, m
	}
	for _, mid := range s.IDs() {
		m, _ := s.Member(mid)
		if c.reg.Same(m, o) {
			return mid, m
		}
	}
	return uuid.Nil, nil
}

func (c *Comparator) oneSided(s *vset.Set, m Modification) (*SetResult, error) {
	sr := &SetResult{Type: s.Type, Modification: m}
	if m == Created {
		sr.Second = s
	} else {
		sr.First = s
	}
	for _, id := range s.IDs() {
		obj, _ := s.Member(id)
		var (
			or  *ObjectResult
			err error
		)
		if m == Created {
			or, err = c.CompareObjects(nil, obj)
		} else {
			or, err = c.CompareObjects(obj, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", s.Name, err)
		}
		sr.Objects = append(sr.Objects, *or)
	}
	return sr, nil
}

// CompareObjects diffs two members. Exactly one side may be nil.
func (c *Comparator) CompareObjects(oldObj, newObj descriptor.Object) (*ObjectResult, error) {
	if oldObj == nil && newObj == nil {
		return nil, &BothAbsentError{What: "object"}
	}

	present := newObj
	if present == nil {
		present = oldObj
	}
	id, err := c.reg.Identity(present)
	if err != nil {
		return nil, err
	}
	or := &ObjectResult{ID: id, Type: present.TypeName(), First: oldObj, Second: newObj}

	switch {
	case oldObj == nil:
		or.Modification = Created
		return or, nil
	case newObj == nil:
		or.Modification = Deleted
		return or, nil
	case oldObj.TypeName() != newObj.TypeName():
		or.Modification = Modified
		return or, nil
	}

	fields, err := c.reg.ComparableFields(present.TypeName())
	if err != nil {
		return nil, err
	}
	or.Modification = Invariable
	for _, f := range fields {
		ov, err := c.reg.Get(oldObj, f.Name)
		if err != nil {
			return nil, err
		}
		nv, err := c.reg.Get(newObj, f.Name)
		if err != nil {
			return nil, err
		}
		fr := c.CompareFields(ov, nv, f)
		if !fr.IsEqual() {
			or.Modification = Modified
		}
		or.Fields = append(or.Fields, fr)
	}
	return or, nil
}

// CompareFields diffs two values of a field. A nil value is absent.
func (c *Comparator) CompareFields(oldVal, newVal any, f descriptor.Field) FieldResult {
	fr := FieldResult{Field: f, First: oldVal, Second: newVal, Modification: Invariable}
	if !Equal(c.reg, oldVal, newVal) {
		fr.Modification = Modified
	}
	return fr
}
