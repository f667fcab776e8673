package vset

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/ir"
)

// Value tags of the document encoding. Containers and non-JSON scalars are
// wrapped in single-key objects so decoding restores their kind.
const (
	tagRef   = "$ref"
	tagType  = "$type"
	tagSeq   = "$seq"
	tagMap   = "$map"
	tagArray = "$array"
	tagUUID  = "$uuid"
	tagFloat = "$float"
	tagNull  = "$null"
)

// null stands for an absent element of a collection, array or map, so
// positions and keys survive a round trip.
var null = ir.IRObject{tagNull: ir.IRBool(true)}

// Encode converts a set into its canonical document form. Members are
// ordered by identity; every declared field is included.
func Encode(reg *descriptor.Registry, s *Set) (ir.IRObject, error) {
	hash, err := ContentHash(reg, s)
	if err != nil {
		return nil, err
	}

	members := make(ir.IRArray, 0, s.Len())
	for _, id := range sortedIDs(s) {
		m, _ := s.Member(id)
		doc, err := encodeMember(reg, id, m, false)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", s.Name, err)
		}
		members = append(members, doc)
	}

	doc := ir.IRObject{
		"uuid":       ir.IRString(s.UUID.String()),
		"name":       ir.IRString(s.Name),
		"type":       ir.IRString(s.Type.Primary),
		"strategy":   ir.IRString(s.Strategy.String()),
		"visible":    ir.IRBool(s.Visible),
		"members":    members,
		"binding":    setIDs(s.binding),
		"versioning": setIDs(s.versioning),
		"hash":       ir.IRString(hash),
	}
	if s.Type.Sub != "" {
		doc["sub"] = ir.IRString(s.Type.Sub)
	}

	pairs := ir.IRArray{}
	for _, k := range s.FieldKeys() {
		ids := make(ir.IRArray, 0, len(s.fieldUUIDs[k]))
		for _, id := range s.fieldUUIDs[k] {
			ids = append(ids, ir.IRString(id.String()))
		}
		pairs = append(pairs, ir.IRObject{
			"owner": ir.IRString(k.Owner),
			"field": ir.IRString(k.Field),
			"uuids": ids,
		})
	}
	doc["field_uuids"] = pairs
	return doc, nil
}

// ContentHash hashes the comparable content of a set's members. Two sets
// with equal members in any insertion order hash equally.
func ContentHash(reg *descriptor.Registry, s *Set) (string, error) {
	hashes := make([]string, 0, s.Len())
	for _, id := range sortedIDs(s) {
		m, _ := s.Member(id)
		doc, err := encodeMember(reg, id, m, true)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", s.Name, err)
		}
		h, err := ir.ObjectHash(doc)
		if err != nil {
			return "", err
		}
		hashes = append(hashes, h)
	}
	return ir.SetHash(s.Type.String(), hashes)
}

func sortedIDs(s *Set) []uuid.UUID {
	ids := s.IDs()
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}

func setIDs(sets []*Set) ir.IRArray {
	out := make(ir.IRArray, 0, len(sets))
	for _, s := range sets {
		out = append(out, ir.IRString(s.UUID.String()))
	}
	return out
}

func encodeMember(reg *descriptor.Registry, id uuid.UUID, o descriptor.Object, comparableOnly bool) (ir.IRObject, error) {
	d, err := reg.Describe(o)
	if err != nil {
		return nil, err
	}
	fields := d.Fields
	if comparableOnly {
		if fields, err = reg.ComparableFields(d.Name); err != nil {
			return nil, err
		}
	}
	values, err := encodeFields(reg, o, fields, map[descriptor.Object]bool{})
	if err != nil {
		return nil, err
	}
	return ir.IRObject{
		"uuid":   ir.IRString(id.String()),
		"type":   ir.IRString(d.Name),
		"fields": values,
	}, nil
}

func encodeFields(reg *descriptor.Registry, o descriptor.Object, fields []descriptor.Field, visiting map[descriptor.Object]bool) (ir.IRObject, error) {
	out := make(ir.IRObject, len(fields))
	for _, f := range fields {
		v, err := reg.Get(o, f.Name)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		enc, err := encodeValue(reg, v, visiting)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", o.TypeName(), f.Name, err)
		}
		out[f.Name] = enc
	}
	return out, nil
}

// EncodeValue converts one field value into its document form. Versioned
// objects become references by identity; registered non-versioned objects
// are inlined.
func EncodeValue(reg *descriptor.Registry, v any) (ir.IRValue, error) {
	return encodeValue(reg, v, map[descriptor.Object]bool{})
}

func encodeValue(reg *descriptor.Registry, v any, visiting map[descriptor.Object]bool) (ir.IRValue, error) {
	switch val := v.(type) {
	case string:
		return ir.IRString(val), nil
	case bool:
		return ir.IRBool(val), nil
	case int:
		return ir.IRInt(val), nil
	case int8:
		return ir.IRInt(val), nil
	case int16:
		return ir.IRInt(val), nil
	case int32:
		return ir.IRInt(val), nil
	case int64:
		return ir.IRInt(val), nil
	case uint8:
		return ir.IRInt(val), nil
	case uint16:
		return ir.IRInt(val), nil
	case uint32:
		return ir.IRInt(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", val)
		}
		return ir.IRInt(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", val)
		}
		return ir.IRInt(val), nil
	case float64:
		return ir.IRObject{tagFloat: ir.IRString(strconv.FormatFloat(val, 'g', -1, 64))}, nil
	case float32:
		return ir.IRObject{tagFloat: ir.IRString(strconv.FormatFloat(float64(val), 'g', -1, 32))}, nil
	case uuid.UUID:
		return ir.IRObject{tagUUID: ir.IRString(val.String())}, nil
	case descriptor.Seq:
		arr, err := encodeElements(reg, val, visiting)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{tagSeq: arr}, nil
	case descriptor.Array:
		arr, err := encodeElements(reg, val, visiting)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{tagArray: arr}, nil
	case descriptor.Map:
		m := make(ir.IRObject, len(val))
		for k, e := range val {
			if e == nil {
				m[k] = null
				continue
			}
			enc, err := encodeValue(reg, e, visiting)
			if err != nil {
				return nil, err
			}
			m[k] = enc
		}
		return ir.IRObject{tagMap: m}, nil
	case descriptor.Object:
		d, err := reg.Describe(val)
		if err != nil {
			return nil, err
		}
		if d.Versioned {
			id, err := reg.Identity(val)
			if err != nil {
				return nil, err
			}
			return ir.IRObject{tagRef: ir.IRString(id.String()), tagType: ir.IRString(d.Name)}, nil
		}
		if visiting[val] {
			return nil, fmt.Errorf("cyclic %s value cannot be encoded", d.Name)
		}
		visiting[val] = true
		defer delete(visiting, val)
		fields, err := encodeFields(reg, val, d.Fields, visiting)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{tagType: ir.IRString(d.Name), "fields": fields}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func encodeElements(reg *descriptor.Registry, elems []any, visiting map[descriptor.Object]bool) (ir.IRArray, error) {
	arr := make(ir.IRArray, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			arr = append(arr, null)
			continue
		}
		enc, err := encodeValue(reg, e, visiting)
		if err != nil {
			return nil, err
		}
		arr = append(arr, enc)
	}
	return arr, nil
}
