package compare

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/convert"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/testutil"
	"github.com/roach88/versets/internal/vset"
)

func convertState(t *testing.T, reg *descriptor.Registry, roots ...descriptor.Object) []*vset.Set {
	t.Helper()
	sets, err := convert.NewConverter(reg,
		convert.WithIDGenerator(vset.NewSequentialGenerator()),
		convert.WithLogger(testutil.DiscardLogger()),
	).Convert(roots...)
	require.NoError(t, err)
	return sets
}

func newComparator(reg *descriptor.Registry) *Comparator {
	return NewComparator(reg, WithLogger(testutil.DiscardLogger()))
}

// plantState builds a plant with one location and the given components,
// each placed at that location.
func plantState(t *testing.T, reg *descriptor.Registry, comps ...[2]any) []*vset.Set {
	t.Helper()
	loc := testutil.Location(1, "hall")
	var records []*descriptor.Record
	for i, c := range comps {
		records = append(records, testutil.Component(3+i, c[0].(string), loc, int64(c[1].(int))))
	}
	return convertState(t, reg, testutil.Plant([]*descriptor.Record{loc}, records, nil))
}

func TestCompareStates_Idempotent(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	state := plantState(t, reg, [2]any{"pump", 5}, [2]any{"valve", 2})

	result, err := newComparator(reg).CompareStates(state, state)
	require.NoError(t, err)
	require.Len(t, result.Sets, 2)
	assert.True(t, result.IsEqual())
	for _, sr := range result.Sets {
		assert.Equal(t, Invariable, sr.Modification)
	}

	// An independently converted equal state compares equal too.
	again := plantState(t, reg, [2]any{"pump", 5}, [2]any{"valve", 2})
	result, err = newComparator(reg).CompareStates(state, again)
	require.NoError(t, err)
	assert.True(t, result.IsEqual())
}

func TestCompareStates_ModifiedField(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	oldState := plantState(t, reg, [2]any{"pump", 5})
	newState := plantState(t, reg, [2]any{"valve", 5})

	result, err := newComparator(reg).CompareStates(oldState, newState)
	require.NoError(t, err)
	assert.False(t, result.IsEqual())

	locations := result.Set(vset.SetType{Primary: "Location"})
	require.NotNil(t, locations)
	assert.Equal(t, Invariable, locations.Modification)

	components := result.Set(vset.SetType{Primary: "Component"})
	require.NotNil(t, components)
	assert.Equal(t, Modified, components.Modification)
	require.Len(t, components.Objects, 1)

	obj := components.Objects[0]
	assert.Equal(t, Modified, obj.Modification)
	var changed []string
	for _, f := range obj.Fields {
		if !f.IsEqual() {
			changed = append(changed, f.Field.Name)
			assert.Equal(t, "pump", f.First)
			assert.Equal(t, "valve", f.Second)
		}
	}
	assert.Equal(t, []string{"name"}, changed)
}

func TestCompareStates_CreatedAndDeleted(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	loc := testutil.Location(1, "hall")
	oldState := convertState(t, reg, testutil.Plant([]*descriptor.Record{loc},
		[]*descriptor.Record{testutil.Component(3, "pump", loc, 1)}, nil))
	newState := convertState(t, reg, testutil.Plant([]*descriptor.Record{testutil.Location(2, "yard")},
		nil, []*descriptor.Record{testutil.Shift(5, "late", "Night")}))

	result, err := newComparator(reg).CompareStates(oldState, newState)
	require.NoError(t, err)
	require.Len(t, result.Sets, 3)

	locations := result.Sets[0]
	assert.Equal(t, Modified, locations.Modification)
	require.Len(t, locations.Objects, 2)
	assert.Equal(t, Created, locations.Objects[0].Modification)
	assert.Equal(t, testutil.ID(2), locations.Objects[0].ID.String())
	assert.Equal(t, Deleted, locations.Objects[1].Modification)
	assert.Len(t, locations.ObjectsWith(Deleted), 1)

	shifts := result.Sets[1]
	assert.Equal(t, Created, shifts.Modification)
	assert.Nil(t, shifts.First)
	assert.Equal(t, Created, shifts.Objects[0].Modification)

	components := result.Sets[2]
	assert.Equal(t, Deleted, components.Modification)
	assert.Nil(t, components.Second)
	assert.Equal(t, Deleted, components.Objects[0].Modification)

	assert.Equal(t, 1, result.Count(Created))
	assert.Equal(t, 1, result.Count(Deleted))
}

func TestCompare_BothAbsent(t *testing.T) {
	c := newComparator(testutil.PlantRegistry(t))

	_, err := c.CompareSets(nil, nil)
	assert.True(t, IsBothAbsent(err))

	_, err = c.CompareObjects(nil, nil)
	assert.True(t, IsBothAbsent(err))
	assert.Contains(t, err.Error(), "BOTH_ABSENT")
}

func TestCompareStates_DuplicateType(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	state := plantState(t, reg, [2]any{"pump", 5})
	_, err := newComparator(reg).CompareStates(nil, append(state, state[0]))
	assert.True(t, vset.IsPrecondition(err))
}

func TestFormat_Golden(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	oldState := plantState(t, reg, [2]any{"pump", 5})
	newState := plantState(t, reg, [2]any{"valve", 5}, [2]any{"gauge", 1})

	result, err := newComparator(reg).CompareStates(oldState, newState)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, reg, result, false))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "modified_component", buf.Bytes())
}

func TestFormatValue(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	loc := testutil.Location(1, "hall")
	night := descriptor.NewRecord("Night", map[string]any{"label": "n"})

	assert.Equal(t, "<absent>", FormatValue(reg, nil))
	assert.Equal(t, `"x"`, FormatValue(reg, "x"))
	assert.Equal(t, "3", FormatValue(reg, int64(3)))
	assert.Equal(t, "Location("+testutil.ID(1)+")", FormatValue(reg, loc))
	assert.Equal(t, `Night{label: "n"}`, FormatValue(reg, night))
	assert.Equal(t, `[1, "a"]`, FormatValue(reg, descriptor.Seq{1, "a"}))
	assert.Equal(t, `array[true]`, FormatValue(reg, descriptor.Array{true}))
	assert.Equal(t, `{a: 1, b: 2}`, FormatValue(reg, descriptor.Map{"b": 2, "a": 1}))
}
