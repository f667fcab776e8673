package convert

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/testutil"
	"github.com/roach88/versets/internal/vset"
)

func TestRevert_RoundTrip(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1, l2 := testutil.Location(1, "hall"), testutil.Location(2, "yard")
	c1 := testutil.Component(3, "pump", l1, 5)
	shifts := []*descriptor.Record{testutil.Shift(4, "early", "Day"), testutil.Shift(5, "late", "Night")}
	plant := testutil.Plant([]*descriptor.Record{l1, l2}, []*descriptor.Record{c1}, shifts)
	plant.Values["lead"] = c1

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)

	restored := descriptor.NewRecord("Plant", nil)
	n, err := NewReverter(reg, WithLogger(testutil.DiscardLogger())).Revert(restored, sets)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	for _, field := range []string{"locations", "components", "shifts", "lead"} {
		assert.Equal(t, plant.Values[field], restored.Values[field], field)
	}
}

func TestRevert_LeavesNestedContainersAlone(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1 := testutil.Location(1, "L1")
	night := descriptor.NewRecord("Night", map[string]any{"label": l1})
	plant := testutil.Plant(nil, nil, nil)
	plant.Values["lead"] = night

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, []vset.FieldKey{{Owner: "Night", Field: "label"}}, sets[0].FieldKeys())

	restored := descriptor.NewRecord("Plant", nil)
	n, err := NewReverter(reg, WithLogger(testutil.DiscardLogger())).Revert(restored, sets)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, restored.Values["lead"], "the location belongs to the night record, not to the plant")

	restoredNight := descriptor.NewRecord("Night", nil)
	n, err = NewReverter(reg, WithLogger(testutil.DiscardLogger())).Revert(restoredNight, sets)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Same(t, l1, restoredNight.Values["label"])
}

func TestRevert_AppendsToSequences(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	l1 := testutil.Location(1, "hall")
	plant := testutil.Plant([]*descriptor.Record{l1}, nil, nil)

	sets, err := newConverter(reg).Convert(plant)
	require.NoError(t, err)

	// Reverting into the populated model appends.
	_, err = NewReverter(reg).Revert(plant, sets)
	require.NoError(t, err)
	assert.Equal(t, descriptor.Seq{l1, l1}, plant.Values["locations"])
}

func TestRevert_SkipsUnsupportedAndMissing(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	logger, logs := testutil.CaptureLogger()

	l1 := testutil.Location(1, "hall")
	s := vset.New(uuid.New(), "Location 0.0", vset.SetType{Primary: "Location"}, descriptor.PerClass, true)
	s.Add(uuid.MustParse(testutil.ID(1)), l1)
	s.AddFieldUUID(vset.FieldKey{Owner: "Plant", Field: "index"}, uuid.MustParse(testutil.ID(1)))
	s.AddFieldUUID(vset.FieldKey{Owner: "Plant", Field: "ghost"}, uuid.MustParse(testutil.ID(1)))
	s.AddFieldUUID(vset.FieldKey{Owner: "Plant", Field: "locations"}, uuid.MustParse(testutil.ID(9)))
	s.AddFieldUUID(vset.FieldKey{Owner: "Site", Field: "locations"}, uuid.MustParse(testutil.ID(1)))

	model := descriptor.NewRecord("Plant", nil)
	n, err := NewReverter(reg, WithLogger(logger)).Revert(model, []*vset.Set{s})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, model.Values)

	out := logs.String()
	assert.Contains(t, out, "not supported")
	assert.Contains(t, out, "field missing")
	assert.Contains(t, out, "member not found")
}

func TestRevert_Preconditions(t *testing.T) {
	reg := testutil.PlantRegistry(t)
	_, err := NewReverter(reg).Revert(nil, nil)
	assert.True(t, vset.IsPrecondition(err))

	_, err = NewReverter(reg).Revert(descriptor.NewRecord("Ghost", nil), nil)
	assert.True(t, descriptor.IsUnknownType(err))
}
