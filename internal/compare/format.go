package compare

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// Format writes a readable rendering of a diff tree, one line per node.
// Equal objects and fields are left out unless all is set.
//
//	Component 0.0 -> Component 0.0 MODIFIED
//	  Component 00000000-0000-4000-8000-000000000003 MODIFIED
//	    name: "pump" -> "valve"
func Format(w io.Writer, reg *descriptor.Registry, r *StateResult, all bool) error {
	var b strings.Builder
	for i := range r.Sets {
		sr := &r.Sets[i]
		fmt.Fprintf(&b, "%s -> %s %s\n", setName(sr.First), setName(sr.Second), sr.Modification)
		for j := range sr.Objects {
			or := &sr.Objects[j]
			if or.IsEqual() && !all {
				continue
			}
			fmt.Fprintf(&b, "  %s %s %s\n", or.Type, or.ID, or.Modification)
			for k := range or.Fields {
				fr := &or.Fields[k]
				if fr.IsEqual() && !all {
					continue
				}
				fmt.Fprintf(&b, "    %s: %s -> %s\n", fr.Field.Name,
					FormatValue(reg, fr.First), FormatValue(reg, fr.Second))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func setName(s *vset.Set) string {
	if s == nil {
		return "-"
	}
	return s.Name
}

// FormatValue renders a field value. Versioned objects render as their
// type and identity.
func FormatValue(reg *descriptor.Registry, v any) string {
	return formatValue(reg, v, map[descriptor.Object]bool{})
}

func formatValue(reg *descriptor.Registry, v any, visiting map[descriptor.Object]bool) string {
	switch val := v.(type) {
	case nil:
		return "<absent>"
	case string:
		return fmt.Sprintf("%q", val)
	case descriptor.Seq:
		return "[" + formatElements(reg, val, visiting) + "]"
	case descriptor.Array:
		return "array[" + formatElements(reg, val, visiting) + "]"
	case descriptor.Map:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatValue(reg, val[k], visiting)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case descriptor.Object:
		d, err := reg.Describe(val)
		if err != nil {
			return val.TypeName() + "(?)"
		}
		if d.Versioned {
			id, err := reg.Identity(val)
			if err != nil {
				return d.Name + "(?)"
			}
			return d.Name + "(" + id.String() + ")"
		}
		if visiting[val] {
			return d.Name + "{...}"
		}
		visiting[val] = true
		defer delete(visiting, val)
		fields, err := reg.ComparableFields(d.Name)
		if err != nil {
			return d.Name + "{?}"
		}
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			fv, err := reg.Get(val, f.Name)
			if err != nil || fv == nil {
				continue
			}
			parts = append(parts, f.Name+": "+formatValue(reg, fv, visiting))
		}
		return d.Name + "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}

func formatElements(reg *descriptor.Registry, elems []any, visiting map[descriptor.Object]bool) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = formatValue(reg, e, visiting)
	}
	return strings.Join(parts, ", ")
}
