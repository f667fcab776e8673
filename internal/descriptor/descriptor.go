package descriptor

// Descriptor is the explicit, statically registered metadata for one
// domain type.
type Descriptor struct {
	// Name is the type name returned by Object.TypeName.
	Name string

	// Versioned marks the type as a versioned entity. Objects of
	// non-versioned types are traversed as containers but never grouped.
	Versioned bool

	Strategy Strategy

	// SetName is the declared set name used by PerContainer and, when set,
	// PerSuperclass.
	SetName string

	// Super is the declared super type used as the grouping key under
	// PerSuperclass.
	Super string

	Visible bool

	// IdentityField names the field holding the stable UUID.
	IdentityField string

	// Fields lists every declared field. Fields with Skip set take part in
	// traversal but not in comparison.
	Fields []Field

	// Divisors names the fields resolving the sub-type under PerObjectType.
	Divisors []string

	// BoundBy lists type names that bind this type by declaration,
	// regardless of actual references.
	BoundBy []string

	// New constructs a default instance. Nil means a Record of this type.
	New func() Object

	// Get and Set access a named field. Nil means the object must
	// implement Accessor.
	Get func(o Object, field string) (any, bool)
	Set func(o Object, field string, value any) error

	// Clone copies an object for in-place merging. Nil copies every
	// declared field into New().
	Clone func(o Object) Object

	// Snapshot copies exactly what a Resolver needs to see of the
	// pre-merge state. Nil falls back to Clone.
	Snapshot func(o Object) Object

	// Same is the domain identity-equality. Nil compares identities.
	Same func(a, b Object) bool
}

// Field describes one field of a domain type.
type Field struct {
	Name    string
	Order   int
	Visible bool
	Kind    FieldKind

	// Skip excludes the field from comparison.
	Skip bool

	// Constraint is the consistency constraint of the field's declared
	// type, checked after a raw field merge.
	Constraint *Constraint
}

// Constraint is a consistency check with the resolver that repairs an
// object violating it.
type Constraint struct {
	Name     string
	Check    func(o Object) error
	Resolver Resolver
}

// Resolver repairs an object left inconsistent by an automatic field merge.
//
// snapshot is the leading object before the merge, merged is the leading
// object after the raw field merge, other is the non-leading object.
// The returned object replaces merged.
type Resolver interface {
	Resolve(snapshot, merged, other Object) (Object, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(snapshot, merged, other Object) (Object, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(snapshot, merged, other Object) (Object, error) {
	return f(snapshot, merged, other)
}

// Field returns the declared field with the given name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// GroupName returns the primary grouping key and display name base for
// objects of this type.
func (d *Descriptor) GroupName() (primary, display string) {
	switch d.Strategy {
	case PerSuperclass:
		primary = d.Super
		if primary == "" {
			primary = d.Name
		}
		display = primary
		if d.SetName != "" {
			display = d.SetName
		}
	case PerContainer:
		primary = d.Name
		display = d.SetName
		if display == "" {
			display = d.Name
		}
	default:
		primary = d.Name
		display = d.Name
	}
	return primary, display
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	c.Fields = append([]Field(nil), d.Fields...)
	c.Divisors = append([]string(nil), d.Divisors...)
	c.BoundBy = append([]string(nil), d.BoundBy...)
	return &c
}
