package vset

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/ir"
)

// Decode rebuilds sets from their documents. Members are instantiated
// through the registry and references are resolved across all documents,
// so a state must be decoded as a whole. Binding edges are re-validated
// with checker; versioning edges to sets outside docs are dropped.
func Decode(reg *descriptor.Registry, checker BindingChecker, docs []ir.IRObject) ([]*Set, error) {
	dec := &decoder{
		reg:     reg,
		objects: make(map[uuid.UUID]descriptor.Object),
	}

	sets := make([]*Set, 0, len(docs))
	byID := make(map[uuid.UUID]*Set, len(docs))
	for _, doc := range docs {
		s, err := dec.newSet(doc)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
		byID[s.UUID] = s
	}

	for i, doc := range docs {
		if err := dec.fillMembers(sets[i], doc); err != nil {
			return nil, err
		}
	}

	for i, doc := range docs {
		s := sets[i]
		for _, id := range dec.ids(doc, "versioning") {
			if prev, ok := byID[id]; ok {
				s.versioning = appendUnique(s.versioning, prev)
			}
		}
		if len(s.versioning) == 0 {
			s.versioning = []*Set{s}
		}
	}
	for i, doc := range docs {
		s := sets[i]
		for _, id := range dec.ids(doc, "binding") {
			target, ok := byID[id]
			if !ok {
				continue
			}
			if err := s.Bind(target, checker); err != nil {
				return nil, err
			}
		}
	}
	if dec.err != nil {
		return nil, dec.err
	}
	return sets, nil
}

func appendUnique(sets []*Set, s *Set) []*Set {
	for _, e := range sets {
		if e == s {
			return sets
		}
	}
	return append(sets, s)
}

type decoder struct {
	reg     *descriptor.Registry
	objects map[uuid.UUID]descriptor.Object
	err     error
}

func decodeError(format string, args ...any) error {
	return &Error{Code: ErrCodeDecode, Message: fmt.Sprintf(format, args...)}
}

func str(obj ir.IRObject, key string) (string, bool) {
	s, ok := obj[key].(ir.IRString)
	return string(s), ok
}

func (d *decoder) newSet(doc ir.IRObject) (*Set, error) {
	idStr, _ := str(doc, "uuid")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, decodeError("set uuid %q: %v", idStr, err)
	}
	name, _ := str(doc, "name")
	primary, ok := str(doc, "type")
	if !ok {
		return nil, decodeError("set %s has no type", idStr)
	}
	sub, _ := str(doc, "sub")
	stratName, _ := str(doc, "strategy")
	strategy, err := descriptor.ParseStrategy(stratName)
	if err != nil {
		return nil, decodeError("set %s: %v", idStr, err)
	}
	visible, _ := doc["visible"].(ir.IRBool)

	s := New(id, name, SetType{Primary: primary, Sub: sub}, strategy, bool(visible))
	s.versioning = nil

	members, _ := doc["members"].(ir.IRArray)
	for _, mv := range members {
		m, ok := mv.(ir.IRObject)
		if !ok {
			return nil, decodeError("set %s: member is not an object", name)
		}
		midStr, _ := str(m, "uuid")
		mid, err := uuid.Parse(midStr)
		if err != nil {
			return nil, decodeError("set %s: member uuid %q: %v", name, midStr, err)
		}
		typeName, _ := str(m, "type")
		obj, err := d.reg.NewInstance(typeName)
		if err != nil {
			return nil, err
		}
		d.objects[mid] = obj
		s.Add(mid, obj)
	}

	pairs, _ := doc["field_uuids"].(ir.IRArray)
	for _, pv := range pairs {
		p, ok := pv.(ir.IRObject)
		if !ok {
			continue
		}
		owner, _ := str(p, "owner")
		field, _ := str(p, "field")
		ids, _ := p["uuids"].(ir.IRArray)
		for _, iv := range ids {
			sid, _ := iv.(ir.IRString)
			fid, err := uuid.Parse(string(sid))
			if err != nil {
				return nil, decodeError("set %s: field uuid %q: %v", name, sid, err)
			}
			s.AddFieldUUID(FieldKey{Owner: owner, Field: field}, fid)
		}
	}
	return s, nil
}

func (d *decoder) fillMembers(s *Set, doc ir.IRObject) error {
	members, _ := doc["members"].(ir.IRArray)
	for _, mv := range members {
		m := mv.(ir.IRObject)
		midStr, _ := str(m, "uuid")
		obj := d.objects[uuid.MustParse(midStr)]
		fields, _ := m["fields"].(ir.IRObject)
		if err := d.fill(obj, fields); err != nil {
			return fmt.Errorf("decode %s: %w", s.Name, err)
		}
	}
	return nil
}

func (d *decoder) fill(obj descriptor.Object, fields ir.IRObject) error {
	for _, name := range fields.SortedKeys() {
		v, err := d.value(fields[name])
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", obj.TypeName(), name, err)
		}
		if err := d.reg.Set(obj, name, v); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) value(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRArray:
		return nil, decodeError("untagged array")
	case ir.IRObject:
		return d.tagged(val)
	default:
		return nil, decodeError("unexpected value %T", v)
	}
}

func (d *decoder) tagged(obj ir.IRObject) (any, error) {
	if _, ok := obj[tagNull]; ok {
		return nil, nil
	}
	if ref, ok := str(obj, tagRef); ok {
		id, err := uuid.Parse(ref)
		if err != nil {
			return nil, decodeError("reference %q: %v", ref, err)
		}
		target, ok := d.objects[id]
		if !ok {
			return nil, decodeError("dangling reference %s", ref)
		}
		return target, nil
	}
	if typeName, ok := str(obj, tagType); ok {
		inst, err := d.reg.NewInstance(typeName)
		if err != nil {
			return nil, err
		}
		fields, _ := obj["fields"].(ir.IRObject)
		if err := d.fill(inst, fields); err != nil {
			return nil, err
		}
		return inst, nil
	}
	if s, ok := str(obj, tagUUID); ok {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, decodeError("uuid %q: %v", s, err)
		}
		return id, nil
	}
	if s, ok := str(obj, tagFloat); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, decodeError("float %q: %v", s, err)
		}
		return f, nil
	}
	if arr, ok := obj[tagSeq].(ir.IRArray); ok {
		elems, err := d.elements(arr)
		return descriptor.Seq(elems), err
	}
	if arr, ok := obj[tagArray].(ir.IRArray); ok {
		elems, err := d.elements(arr)
		return descriptor.Array(elems), err
	}
	if m, ok := obj[tagMap].(ir.IRObject); ok {
		out := make(descriptor.Map, len(m))
		for k, e := range m {
			v, err := d.value(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, decodeError("untagged object")
}

func (d *decoder) elements(arr ir.IRArray) ([]any, error) {
	out := make([]any, 0, len(arr))
	for _, e := range arr {
		v, err := d.value(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) ids(doc ir.IRObject, key string) []uuid.UUID {
	arr, _ := doc[key].(ir.IRArray)
	out := make([]uuid.UUID, 0, len(arr))
	for _, v := range arr {
		s, _ := v.(ir.IRString)
		id, err := uuid.Parse(string(s))
		if err != nil {
			if d.err == nil {
				d.err = decodeError("%s id %q: %v", key, s, err)
			}
			continue
		}
		out = append(out, id)
	}
	return out
}
