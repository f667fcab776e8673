package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/descriptor"
)

// ID returns the deterministic identity number n.
func ID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

// PlantDescriptors returns the descriptors of the plant domain.
func PlantDescriptors() []descriptor.Descriptor {
	return []descriptor.Descriptor{
		{
			Name: "Plant",
			Fields: []descriptor.Field{
				{Name: "locations", Kind: descriptor.KindSequence},
				{Name: "components", Kind: descriptor.KindSequence},
				{Name: "shifts", Kind: descriptor.KindSequence},
				{Name: "lead", Kind: descriptor.KindReference},
				{Name: "index", Kind: descriptor.KindMapping},
			},
		},
		{
			Name:          "Location",
			Versioned:     true,
			Visible:       true,
			IdentityField: "id",
			Fields: []descriptor.Field{
				{Name: "id", Order: 0},
				{Name: "name", Order: 1, Visible: true},
			},
		},
		{
			Name:          "Component",
			Versioned:     true,
			Visible:       true,
			IdentityField: "id",
			Fields: []descriptor.Field{
				{Name: "id", Order: 0},
				{Name: "name", Order: 1, Visible: true},
				{Name: "location", Order: 2, Kind: descriptor.KindReference},
				{Name: "qty", Order: 3, Visible: true},
				{Name: "tags", Order: 4, Kind: descriptor.KindSequence},
			},
		},
		{
			Name:          "Shift",
			Versioned:     true,
			Strategy:      descriptor.PerObjectType,
			Visible:       true,
			IdentityField: "id",
			Divisors:      []string{"kind"},
			Fields: []descriptor.Field{
				{Name: "id"},
				{Name: "name", Order: 1},
				{Name: "kind", Order: 2, Kind: descriptor.KindReference},
			},
		},
		{Name: "Night", Fields: []descriptor.Field{{Name: "label"}}},
		{Name: "Day", Fields: []descriptor.Field{{Name: "label"}}},
	}
}

// PlantRegistry returns a registry holding the plant domain.
func PlantRegistry(t testing.TB) *descriptor.Registry {
	t.Helper()
	reg := descriptor.NewRegistry(descriptor.WithLogger(DiscardLogger()))
	for _, d := range PlantDescriptors() {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

// Location creates a location with identity number n.
func Location(n int, name string) *descriptor.Record {
	return descriptor.NewRecord("Location", map[string]any{"id": ID(n), "name": name})
}

// Component creates a component with identity number n placed at loc.
func Component(n int, name string, loc *descriptor.Record, qty int64) *descriptor.Record {
	values := map[string]any{"id": ID(n), "name": name, "qty": qty}
	if loc != nil {
		values["location"] = loc
	}
	return descriptor.NewRecord("Component", values)
}

// Shift creates a shift with identity number n of the given kind type.
func Shift(n int, name, kind string) *descriptor.Record {
	return descriptor.NewRecord("Shift", map[string]any{
		"id":   ID(n),
		"name": name,
		"kind": descriptor.NewRecord(kind, map[string]any{"label": kind}),
	})
}

// Plant creates a plant container. Any argument may be nil.
func Plant(locations, components, shifts []*descriptor.Record) *descriptor.Record {
	p := descriptor.NewRecord("Plant", nil)
	if locations != nil {
		p.Values["locations"] = seq(locations)
	}
	if components != nil {
		p.Values["components"] = seq(components)
	}
	if shifts != nil {
		p.Values["shifts"] = seq(shifts)
	}
	return p
}

func seq(records []*descriptor.Record) descriptor.Seq {
	out := make(descriptor.Seq, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// CloneRecord copies a record's values one level deep.
func CloneRecord(r *descriptor.Record) *descriptor.Record {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return descriptor.NewRecord(r.Type, values)
}
