package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/testutil"
)

func TestEqual(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	loc := testutil.Location(1, "hall")
	locRenamed := testutil.Location(1, "yard")
	other := testutil.Location(2, "hall")
	night := func(label string) *descriptor.Record {
		return descriptor.NewRecord("Night", map[string]any{"label": label})
	}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both absent", nil, nil, true},
		{"one absent", nil, "x", false},
		{"strings", "x", "x", true},
		{"int widths", 5, int64(5), true},
		{"int and float", int64(2), 2.0, true},
		{"unsigned and signed", uint64(5), 5, true},
		{"uint and int8", uint(7), int8(7), true},
		{"uint16 and int16", uint16(3), int16(4), false},
		{"uint64 beyond int64", uint64(math.MaxUint64), int64(-1), false},
		{"absent elements", descriptor.Array{1, nil, 3}, descriptor.Array{1, nil, 3}, true},
		{"different ints", int64(2), int64(3), false},
		{"bools", true, false, false},
		{"sequence order", descriptor.Seq{1, 2, 3}, descriptor.Seq{3, 1, 2}, true},
		{"sequence multiplicity", descriptor.Seq{1, 1, 2}, descriptor.Seq{1, 2, 2}, false},
		{"sequence length", descriptor.Seq{1}, descriptor.Seq{1, 1}, false},
		{"array order", descriptor.Array{1, 2}, descriptor.Array{2, 1}, false},
		{"array equal", descriptor.Array{1, "a"}, descriptor.Array{int64(1), "a"}, true},
		{"map pairwise", descriptor.Map{"a": 1, "b": 2}, descriptor.Map{"a": 2, "b": 1}, false},
		{"map equal", descriptor.Map{"a": 1, "b": 2}, descriptor.Map{"b": 2, "a": 1}, true},
		{"map keys", descriptor.Map{"a": 1}, descriptor.Map{"b": 1}, false},
		{"sequence vs array", descriptor.Seq{1}, descriptor.Array{1}, false},
		{"versioned by identity", loc, locRenamed, true},
		{"versioned different identity", loc, other, false},
		{"value objects by fields", night("n"), night("n"), true},
		{"value objects differ", night("n"), night("m"), false},
		{"objects of different types", loc, night("n"), false},
		{"objects in sequences", descriptor.Seq{loc, other}, descriptor.Seq{other, locRenamed}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(reg, tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(reg, tt.b, tt.a), "symmetric")
		})
	}
}

func TestEqual_CyclicValueObjects(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.MustRegister(descriptor.Descriptor{Name: "Node", Fields: []descriptor.Field{{Name: "next"}, {Name: "v"}}})

	a := descriptor.NewRecord("Node", map[string]any{"v": 1})
	a.Values["next"] = a
	b := descriptor.NewRecord("Node", map[string]any{"v": 1})
	b.Values["next"] = b
	c := descriptor.NewRecord("Node", map[string]any{"v": 2})
	c.Values["next"] = c

	assert.True(t, Equal(reg, a, b))
	assert.False(t, Equal(reg, a, c))
}

func TestModificationString(t *testing.T) {
	assert.Equal(t, "INVARIABLE", Invariable.String())
	assert.Equal(t, "CREATED", Created.String())
	assert.Equal(t, "DELETED", Deleted.String())
	assert.Equal(t, "MODIFIED", Modified.String())
	assert.Equal(t, "UNKNOWN", Modification(9).String())
}
