// Package fixture builds object graphs from YAML model files.
//
// A model lists objects by reference name. Field values are plain YAML
// scalars, lists and maps; a string starting with "@" refers to another
// object of the model, and "@@" escapes a literal leading "@".
//
//	objects:
//	  - ref: hall
//	    type: Location
//	    fields: {id: 5d1c..., name: hall}
//	  - ref: pump
//	    type: Component
//	    fields: {id: 8a02..., location: "@hall", tags: [a, b]}
//	roots: [pump]
package fixture

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/versets/internal/descriptor"
)

// Model is a parsed fixture file.
type Model struct {
	// Objects are instantiated in order.
	Objects []Object `yaml:"objects"`

	// Roots names the objects handed to the converter. When empty, every
	// object no other object refers to is a root.
	Roots []string `yaml:"roots,omitempty"`
}

// Object declares one domain object.
type Object struct {
	Ref    string         `yaml:"ref"`
	Type   string         `yaml:"type"`
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Graph is a built model.
type Graph struct {
	Roots   []descriptor.Object
	Objects map[string]descriptor.Object
}

// Parse decodes a model, rejecting unknown keys.
func Parse(data []byte) (*Model, error) {
	var m Model
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &m, nil
}

// Load reads and parses a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Parse(data)
}

// Validate checks refs, types and roots of a model.
func (m *Model) Validate() error {
	if len(m.Objects) == 0 {
		return fmt.Errorf("objects list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(m.Objects))
	for i, o := range m.Objects {
		if o.Ref == "" {
			return fmt.Errorf("objects[%d]: ref is required", i)
		}
		if o.Type == "" {
			return fmt.Errorf("objects[%d]: type is required", i)
		}
		if seen[o.Ref] {
			return fmt.Errorf("objects[%d]: duplicate ref %q", i, o.Ref)
		}
		seen[o.Ref] = true
	}
	for _, r := range m.Roots {
		if !seen[r] {
			return fmt.Errorf("root %q is not declared", r)
		}
	}
	return nil
}

// Build instantiates the model through reg. Objects are created first and
// their fields filled second, so references may point forward and form
// cycles.
func (m *Model) Build(reg *descriptor.Registry) (*Graph, error) {
	g := &Graph{Objects: make(map[string]descriptor.Object, len(m.Objects))}
	for _, o := range m.Objects {
		inst, err := reg.NewInstance(o.Type)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Ref, err)
		}
		g.Objects[o.Ref] = inst
	}

	referenced := make(map[string]bool)
	b := &builder{objects: g.Objects, referenced: referenced}
	for _, o := range m.Objects {
		inst := g.Objects[o.Ref]
		d, err := reg.Describe(inst)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Ref, err)
		}
		for _, name := range sortedFieldNames(o.Fields) {
			f, ok := d.Field(name)
			if !ok {
				return nil, fmt.Errorf("object %q: field %s.%s is not declared", o.Ref, o.Type, name)
			}
			v, err := b.value(o.Fields[name], f.Kind)
			if err != nil {
				return nil, fmt.Errorf("object %q field %s: %w", o.Ref, name, err)
			}
			if err := reg.Set(inst, name, v); err != nil {
				return nil, fmt.Errorf("object %q: %w", o.Ref, err)
			}
		}
	}

	roots := m.Roots
	if len(roots) == 0 {
		for _, o := range m.Objects {
			if !referenced[o.Ref] {
				roots = append(roots, o.Ref)
			}
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("model has no roots: every object is referenced")
	}
	for _, r := range roots {
		g.Roots = append(g.Roots, g.Objects[r])
	}
	return g, nil
}

type builder struct {
	objects    map[string]descriptor.Object
	referenced map[string]bool
}

// value converts a decoded YAML value. kind shapes lists and maps.
func (b *builder) value(v any, kind descriptor.FieldKind) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return b.ref(val)
	case int:
		return int64(val), nil
	case []any:
		elems := make([]any, len(val))
		for i, e := range val {
			conv, err := b.value(e, descriptor.KindAuto)
			if err != nil {
				return nil, err
			}
			elems[i] = conv
		}
		if kind == descriptor.KindArray {
			return descriptor.Array(elems), nil
		}
		return descriptor.Seq(elems), nil
	case map[string]any:
		out := make(descriptor.Map, len(val))
		for k, e := range val {
			conv, err := b.value(e, descriptor.KindAuto)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	default:
		// bool, float64 and yaml timestamps pass through.
		return val, nil
	}
}

func (b *builder) ref(s string) (any, error) {
	if strings.HasPrefix(s, "@@") {
		return s[1:], nil
	}
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	name := s[1:]
	o, ok := b.objects[name]
	if !ok {
		return nil, fmt.Errorf("unknown reference %q", s)
	}
	b.referenced[name] = true
	return o, nil
}

func sortedFieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
