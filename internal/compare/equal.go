package compare

import (
	"math"
	"reflect"

	"github.com/roach88/versets/internal/descriptor"
)

// Equal reports whether two field values are structurally equal.
func Equal(reg *descriptor.Registry, a, b any) bool {
	e := equality{reg: reg, visiting: make(map[[2]descriptor.Object]bool)}
	return e.equal(a, b)
}

type equality struct {
	reg      *descriptor.Registry
	visiting map[[2]descriptor.Object]bool
}

func (e *equality) equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case descriptor.Seq:
		bv, ok := b.(descriptor.Seq)
		return ok && e.multiset(av, bv)
	case descriptor.Array:
		bv, ok := b.(descriptor.Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !e.equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case descriptor.Map:
		bv, ok := b.(descriptor.Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !e.equal(x, y) {
				return false
			}
		}
		return true
	case descriptor.Object:
		bv, ok := b.(descriptor.Object)
		return ok && e.objects(av, bv)
	}

	if x, ok := toInt(a); ok {
		if y, ok := toInt(b); ok {
			return x == y
		}
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

// multiset compares two sequences regardless of order.
func (e *equality) multiset(a, b descriptor.Seq) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && e.equal(x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// objects compares versioned objects by identity and other registered
// objects by their comparable fields.
func (e *equality) objects(a, b descriptor.Object) bool {
	if a == b {
		return true
	}
	if a.TypeName() != b.TypeName() {
		return false
	}
	d, err := e.reg.Describe(a)
	if err != nil {
		return false
	}
	if d.Versioned {
		return e.reg.Same(a, b)
	}

	pair := [2]descriptor.Object{a, b}
	if e.visiting[pair] {
		return true
	}
	e.visiting[pair] = true
	defer delete(e.visiting, pair)

	fields, err := e.reg.ComparableFields(d.Name)
	if err != nil {
		return false
	}
	for _, f := range fields {
		x, err1 := e.reg.Get(a, f.Name)
		y, err2 := e.reg.Get(b, f.Name)
		if err1 != nil || err2 != nil || !e.equal(x, y) {
			return false
		}
	}
	return true
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
