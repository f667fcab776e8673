package convert

import (
	"log/slog"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// Reverter pours versioned sets back into the container fields of a
// domain model.
type Reverter struct {
	reg    *descriptor.Registry
	logger *slog.Logger
}

// NewReverter creates a Reverter over reg. Only WithLogger applies.
func NewReverter(reg *descriptor.Registry, opts ...Option) *Reverter {
	c := &Converter{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return &Reverter{reg: reg, logger: c.logger}
}

// Revert assigns, for every field/UUID pair recorded on sets whose owner is
// model's type, the matching members to that field of model. Sequence
// fields are appended to; other fields are replaced, so a scalar field
// fed several members keeps the last one. Map and array fields are not
// supported. Per-field failures are logged and skipped.
//
// Revert returns the number of members assigned.
func (r *Reverter) Revert(model descriptor.Object, sets []*vset.Set) (int, error) {
	if model == nil {
		return 0, vset.Precondition("revert requires a domain model")
	}
	d, err := r.reg.Describe(model)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, s := range sets {
		for _, key := range s.FieldKeys() {
			if key.Owner != d.Name {
				continue
			}
			field, ok := d.Field(key.Field)
			if !ok {
				r.logger.Warn("revert target field missing",
					"set", s.Name, "object", d.Name, "field", key.Field)
				continue
			}
			assigned += r.revertField(model, s, field, key)
		}
	}
	return assigned, nil
}

func (r *Reverter) revertField(model descriptor.Object, s *vset.Set, field descriptor.Field, key vset.FieldKey) int {
	current, err := r.reg.Get(model, field.Name)
	if err != nil {
		r.logger.Warn("revert target field inaccessible",
			"set", s.Name, "object", key.Owner, "field", field.Name, "err", err)
		return 0
	}

	kind := field.Kind
	if kind == descriptor.KindAuto {
		kind = descriptor.KindOf(current)
	}
	switch kind {
	case descriptor.KindMapping, descriptor.KindArray:
		r.logger.Warn("revert into map or array field is not supported",
			"set", s.Name, "object", key.Owner, "field", field.Name)
		return 0
	}

	assigned := 0
	for _, id := range s.FieldUUIDs(key) {
		m, ok := s.Member(id)
		if !ok {
			r.logger.Warn("revert member not found",
				"set", s.Name, "object", key.Owner, "field", field.Name, "id", id)
			continue
		}

		var value any = m
		if kind == descriptor.KindSequence {
			seq, _ := current.(descriptor.Seq)
			seq = append(seq, m)
			current = seq
			value = seq
		}
		if err := r.reg.Set(model, field.Name, value); err != nil {
			r.logger.Warn("revert assignment failed",
				"set", s.Name, "object", key.Owner, "field", field.Name, "err", err)
			continue
		}
		assigned++
	}
	return assigned
}
