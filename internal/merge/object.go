package merge

import (
	"fmt"

	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/descriptor"
)

// mergeObject merges other into a clone of leading. Any failure, including
// a panicking Resolver, is recorded as a Warning and leading is returned
// unchanged.
func (run *merging) mergeObject(set string, or *compare.ObjectResult, leading, other descriptor.Object) (result descriptor.Object) {
	defer func() {
		if r := recover(); r != nil {
			run.degrade(set, or, fmt.Errorf("panic during merge: %v", r))
			result = leading
		}
	}()

	merged, err := run.mergeFields(or, leading, other)
	if err != nil {
		run.degrade(set, or, err)
		return leading
	}
	return merged
}

func (run *merging) degrade(set string, or *compare.ObjectResult, err error) {
	run.logger.Warn("degraded merge",
		"set", set, "object", or.Type, "id", or.ID, "err", err)
	run.result.Warnings = append(run.result.Warnings, Warning{
		Set:    set,
		Object: or.ID,
		Type:   or.Type,
		Err:    err,
	})
}

func (run *merging) mergeFields(or *compare.ObjectResult, leading, other descriptor.Object) (descriptor.Object, error) {
	clone, err := run.reg.Clone(leading)
	if err != nil {
		return nil, err
	}

	var (
		snapshot    descriptor.Object
		constraints []*descriptor.Constraint
	)
	for _, fr := range or.Fields {
		if fr.IsEqual() {
			continue
		}
		f := fr.Field
		if f.Constraint != nil && snapshot == nil {
			if snapshot, err = run.reg.Snapshot(leading); err != nil {
				return nil, err
			}
		}

		lv, err := run.reg.Get(clone, f.Name)
		if err != nil {
			return nil, err
		}
		ov, err := run.reg.Get(other, f.Name)
		if err != nil {
			return nil, err
		}
		if err := run.reg.Set(clone, f.Name, mergeValue(lv, ov)); err != nil {
			return nil, err
		}
		if f.Constraint != nil && !containsConstraint(constraints, f.Constraint) {
			constraints = append(constraints, f.Constraint)
		}
	}

	result := descriptor.Object(clone)
	for _, c := range constraints {
		violation := c.Check(result)
		if violation == nil {
			continue
		}
		if c.Resolver == nil {
			return nil, fmt.Errorf("constraint %s violated and no resolver declared: %w", c.Name, violation)
		}
		repaired, err := c.Resolver.Resolve(snapshot, result, other)
		if err != nil {
			return nil, fmt.Errorf("resolver for %s: %w", c.Name, err)
		}
		if repaired == nil {
			return nil, fmt.Errorf("resolver for %s returned no object", c.Name)
		}
		result = repaired
	}
	return result, nil
}

func containsConstraint(cs []*descriptor.Constraint, c *descriptor.Constraint) bool {
	for _, e := range cs {
		if e == c {
			return true
		}
	}
	return false
}

// mergeValue picks the merged value of one divergent field: the leading
// value, or the other side's when the leading value is absent.
func mergeValue(lead, other any) any {
	if lead == nil {
		return other
	}
	return lead
}
