package descriptor

import "fmt"

// Object is any domain entity known to a Registry.
// Implementations must be pointer types: object identity during graph
// traversal is pointer identity.
type Object interface {
	TypeName() string
}

// Accessor is implemented by objects that expose their fields by name.
// Descriptors without Get/Set functions fall back to it.
type Accessor interface {
	Field(name string) (any, bool)
	SetField(name string, value any) error
}

// Seq is a growable, order-insensitive sequence value.
type Seq []any

// Map is a keyed mapping value.
type Map map[string]any

// Array is a fixed-size, order-sensitive array value.
type Array []any

// Record is a generic Object backed by a value map. Types declared in CUE
// are instantiated as Records.
type Record struct {
	Type   string
	Values map[string]any
}

// NewRecord creates a Record of the given type. values may be nil.
func NewRecord(typeName string, values map[string]any) *Record {
	if values == nil {
		values = make(map[string]any)
	}
	return &Record{Type: typeName, Values: values}
}

// TypeName implements Object.
func (r *Record) TypeName() string { return r.Type }

// Field implements Accessor.
func (r *Record) Field(name string) (any, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// SetField implements Accessor.
func (r *Record) SetField(name string, value any) error {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[name] = value
	return nil
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.Type, r.Values)
}

// copyValue copies container values one level deep so a clone can be
// mutated without touching the original. Referenced objects are shared.
func copyValue(v any) any {
	switch val := v.(type) {
	case Seq:
		return append(Seq(nil), val...)
	case Array:
		return append(Array(nil), val...)
	case Map:
		m := make(Map, len(val))
		for k, e := range val {
			m[k] = e
		}
		return m
	default:
		return v
	}
}
