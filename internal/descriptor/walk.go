package descriptor

import "fmt"

// FieldRefs lists what one field of an owning object holds directly:
// the versioned objects and the registered non-versioned objects
// (containers) found in the field value or its collections, maps and
// arrays. Containers are not descended into; their contents belong to
// their own fields.
type FieldRefs struct {
	Field      string
	Objects    []Object
	Containers []Object
}

// FieldReferences returns, per declared field of o, the versioned objects
// and containers the field holds. Each collection element is inspected on
// its own, so mixed-type containers are handled element by element.
// Unregistered values are skipped.
func (r *Registry) FieldReferences(o Object) ([]FieldRefs, error) {
	d, err := r.Describe(o)
	if err != nil {
		return nil, err
	}

	var refs []FieldRefs
	for _, f := range d.Fields {
		v, err := r.Get(o, f.Name)
		if err != nil {
			return nil, fmt.Errorf("references of %s: %w", d.Name, err)
		}
		fr := FieldRefs{Field: f.Name}
		seen := make(map[Object]bool)
		r.held(v, func(obj Object, versioned bool) {
			if seen[obj] || obj == o {
				return
			}
			seen[obj] = true
			if versioned {
				fr.Objects = append(fr.Objects, obj)
			} else {
				fr.Containers = append(fr.Containers, obj)
			}
		})
		if len(fr.Objects) > 0 || len(fr.Containers) > 0 {
			refs = append(refs, fr)
		}
	}
	return refs, nil
}

// NestedVersionedValues returns every versioned object held by o, in field
// order, without duplicates. Registered non-versioned objects are descended
// into.
func (r *Registry) NestedVersionedValues(o Object) ([]Object, error) {
	d, err := r.Describe(o)
	if err != nil {
		return nil, err
	}
	visited := map[Object]bool{o: true}
	seen := make(map[Object]bool)
	var out []Object
	for _, f := range d.Fields {
		v, err := r.Get(o, f.Name)
		if err != nil {
			return nil, fmt.Errorf("references of %s: %w", d.Name, err)
		}
		if err := r.walk(v, visited, func(obj Object) {
			if !seen[obj] {
				seen[obj] = true
				out = append(out, obj)
			}
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// held reports the registered objects in v, unwrapping collections, maps
// and arrays but not objects.
func (r *Registry) held(v any, visit func(obj Object, versioned bool)) {
	switch val := v.(type) {
	case nil:
	case Object:
		d, err := r.Describe(val)
		if err != nil {
			r.logger.Debug("skipping unregistered value", "type", val.TypeName())
			return
		}
		visit(val, d.Versioned)
	case Seq:
		for _, e := range val {
			r.held(e, visit)
		}
	case Array:
		for _, e := range val {
			r.held(e, visit)
		}
	case Map:
		for _, k := range sortedKeys(val) {
			r.held(val[k], visit)
		}
	}
}

// walk visits the versioned objects in v. visited guards against cycles
// through non-versioned containers.
func (r *Registry) walk(v any, visited map[Object]bool, visit func(Object)) error {
	switch val := v.(type) {
	case nil:
		return nil
	case Object:
		d, err := r.Describe(val)
		if err != nil {
			r.logger.Debug("skipping unregistered value", "type", val.TypeName())
			return nil
		}
		if d.Versioned {
			visit(val)
			return nil
		}
		if visited[val] {
			return nil
		}
		visited[val] = true
		for _, f := range d.Fields {
			fv, err := r.Get(val, f.Name)
			if err != nil {
				return err
			}
			if err := r.walk(fv, visited, visit); err != nil {
				return err
			}
		}
	case Seq:
		for _, e := range val {
			if err := r.walk(e, visited, visit); err != nil {
				return err
			}
		}
	case Array:
		for _, e := range val {
			if err := r.walk(e, visited, visit); err != nil {
				return err
			}
		}
	case Map:
		for _, k := range sortedKeys(val) {
			if err := r.walk(val[k], visited, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
