package descriptor

import "fmt"

// Strategy decides which domain objects fall into the same versioned set.
type Strategy int

const (
	// PerClass groups all objects of one concrete type.
	PerClass Strategy = iota
	// PerContainer groups objects of one type under the declared set name
	// of their container.
	PerContainer
	// PerSuperclass groups objects of every type sharing a declared super type.
	PerSuperclass
	// PerObjectType groups objects by the sub-type resolved from divisor fields.
	PerObjectType
)

var strategyNames = map[Strategy]string{
	PerClass:      "per_class",
	PerContainer:  "per_container",
	PerSuperclass: "per_superclass",
	PerObjectType: "per_object_type",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses the textual form used in declarations.
// An empty string means PerClass.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return PerClass, nil
	}
	for st, name := range strategyNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// FieldKind describes the shape of a field value. KindAuto infers the shape
// from the runtime value.
type FieldKind int

const (
	KindAuto FieldKind = iota
	KindScalar
	KindReference
	KindSequence
	KindMapping
	KindArray
)

var kindNames = map[FieldKind]string{
	KindAuto:      "auto",
	KindScalar:    "scalar",
	KindReference: "reference",
	KindSequence:  "sequence",
	KindMapping:   "mapping",
	KindArray:     "array",
}

func (k FieldKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// ParseFieldKind parses the textual form used in declarations.
func ParseFieldKind(s string) (FieldKind, error) {
	if s == "" {
		return KindAuto, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// KindOf infers the kind of a runtime value.
func KindOf(v any) FieldKind {
	switch v.(type) {
	case nil:
		return KindAuto
	case Object:
		return KindReference
	case Seq:
		return KindSequence
	case Map:
		return KindMapping
	case Array:
		return KindArray
	default:
		return KindScalar
	}
}
