package convert

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/graph"
	"github.com/roach88/versets/internal/testutil"
	"github.com/roach88/versets/internal/vset"
)

func newConverter(reg *descriptor.Registry) *Converter {
	return NewConverter(reg,
		WithIDGenerator(vset.NewSequentialGenerator()),
		WithLogger(testutil.DiscardLogger()))
}

func names(sets []*vset.Set) []string {
	out := make([]string, len(sets))
	for i, s := range sets {
		out[i] = s.Name
	}
	return out
}

func TestConvert_GroupsAndBinds(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1, l2 := testutil.Location(1, "hall"), testutil.Location(2, "yard")
	c1 := testutil.Component(3, "pump", l1, 5)
	c2 := testutil.Component(4, "valve", l2, 1)
	plant := testutil.Plant([]*descriptor.Record{l1, l2}, []*descriptor.Record{c1, c2}, nil)

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)
	require.Equal(t, []string{"Location 0.0", "Component 0.0"}, names(sets))

	locations, components := sets[0], sets[1]
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", locations.UUID.String())
	assert.Equal(t, []descriptor.Object{l1, l2}, locations.Members())
	assert.Equal(t, []descriptor.Object{c1, c2}, components.Members())

	assert.Equal(t, []*vset.Set{locations}, components.Binding())
	assert.Empty(t, locations.Binding())
	assert.Equal(t, []*vset.Set{locations}, locations.Versioning())
	assert.Equal(t, []*vset.Set{components}, components.Versioning())

	key := vset.FieldKey{Owner: "Plant", Field: "components"}
	assert.Equal(t, []uuid.UUID{uuid.MustParse(testutil.ID(3)), uuid.MustParse(testutil.ID(4))}, components.FieldUUIDs(key))
	assert.Equal(t, []vset.FieldKey{{Owner: "Plant", Field: "locations"}}, locations.FieldKeys())
}

func TestConvert_BindingValidity(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1 := testutil.Location(1, "hall")
	plant := testutil.Plant([]*descriptor.Record{l1},
		[]*descriptor.Record{testutil.Component(2, "pump", l1, 1)},
		[]*descriptor.Record{testutil.Shift(3, "early", "Day")})

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)
	assert.Empty(t, graph.Verify(graph.NewChecker(reg), sets))
}

func TestConvert_ReachesUnlistedEntities(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1 := testutil.Location(1, "hall")
	c1 := testutil.Component(2, "pump", l1, 1)

	// The location is reachable only through the component.
	sets, err := newConverter(reg).Convert(c1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Component 0.0", "Location 0.0"}, names(sets))
	assert.Empty(t, sets[1].FieldKeys(), "no container owned the location")
}

func TestConvert_PerObjectType(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	plant := testutil.Plant(nil, nil, []*descriptor.Record{
		testutil.Shift(1, "early", "Day"),
		testutil.Shift(2, "late", "Night"),
		testutil.Shift(3, "noon", "Day"),
	})

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)
	require.Equal(t, []string{"Shift/Day 0.0", "Shift/Night 0.0"}, names(sets))
	assert.Equal(t, vset.SetType{Primary: "Shift", Sub: "Day"}, sets[0].Type)
	assert.Equal(t, 2, sets[0].Len())
	assert.Equal(t, descriptor.PerObjectType, sets[0].Strategy)
}

func TestConvert_PerSuperclassAndContainer(t *testing.T) {
	reg := descriptor.NewRegistry()
	for _, name := range []string{"Pump", "Valve"} {
		reg.MustRegister(descriptor.Descriptor{
			Name: name, Versioned: true, Strategy: descriptor.PerSuperclass, Super: "Equipment",
			IdentityField: "id", Fields: []descriptor.Field{{Name: "id"}},
		})
	}
	reg.MustRegister(descriptor.Descriptor{
		Name: "Crew", Versioned: true, Strategy: descriptor.PerContainer, SetName: "Staff",
		IdentityField: "id", Fields: []descriptor.Field{{Name: "id"}},
	})
	reg.MustRegister(descriptor.Descriptor{Name: "Site", Fields: []descriptor.Field{{Name: "things"}}})

	site := descriptor.NewRecord("Site", map[string]any{"things": descriptor.Seq{
		descriptor.NewRecord("Pump", map[string]any{"id": testutil.ID(1)}),
		descriptor.NewRecord("Valve", map[string]any{"id": testutil.ID(2)}),
		descriptor.NewRecord("Crew", map[string]any{"id": testutil.ID(3)}),
	}})

	sets, err := newConverter(reg).Convert(site)
	require.NoError(t, err)
	require.Equal(t, []string{"Equipment 0.0", "Staff 0.0"}, names(sets))
	assert.Equal(t, 2, sets[0].Len())
	assert.Equal(t, vset.SetType{Primary: "Equipment"}, sets[0].Type)
}

func TestConvert_Errors(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	c := newConverter(reg)

	_, err := c.Convert()
	assert.True(t, vset.IsPrecondition(err))

	_, err = c.Convert(nil)
	assert.True(t, vset.IsPrecondition(err))

	noKind := descriptor.NewRecord("Shift", map[string]any{"id": testutil.ID(1)})
	_, err = c.Convert(testutil.Plant(nil, nil, []*descriptor.Record{noKind}))
	assert.True(t, descriptor.IsSubTypeNotFound(err))

	badID := descriptor.NewRecord("Location", map[string]any{"id": "L-1"})
	_, err = c.Convert(testutil.Plant([]*descriptor.Record{badID}, nil, nil))
	assert.True(t, descriptor.IsInvalidIdentity(err))
}

func TestConvert_Deterministic(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	build := func() []*vset.Set {
		l1 := testutil.Location(1, "hall")
		plant := testutil.Plant([]*descriptor.Record{l1},
			[]*descriptor.Record{testutil.Component(2, "pump", l1, 1)}, nil)
		sets, err := newConverter(reg).Convert(plant)
		require.NoError(t, err)
		return sets
	}

	a, b := build(), build()
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].UUID, b[i].UUID)
		ha, err := vset.ContentHash(reg, a[i])
		require.NoError(t, err)
		hb, err := vset.ContentHash(reg, b[i])
		require.NoError(t, err)
		assert.Equal(t, ha, hb)
	}
}
