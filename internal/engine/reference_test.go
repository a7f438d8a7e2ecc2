package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{Min: 70, Max: 100}.Validate())
	assert.NoError(t, Range{Min: 0, Max: 180}.Validate())
	assert.NoError(t, Range{Min: 90, Max: 90}.Validate())

	assert.ErrorIs(t, Range{Min: 100, Max: 70}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Range{Min: -5, Max: 90}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Range{Min: 90, Max: 185}.Validate(), ErrInvalidRange)
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 70, Max: 100}
	assert.True(t, r.Contains(70))
	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(85))
	assert.False(t, r.Contains(69.9))
	assert.False(t, r.Contains(100.1))
}

func TestRefSetValidate(t *testing.T) {
	set := DefaultRefSet()
	require.NoError(t, set.Validate())

	set[ExerciseSquat].Phases[PhaseDown][JointKnee] = Range{Min: 120, Max: 40}
	err := set.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Contains(t, err.Error(), ExerciseSquat)
}

func TestRefSetMerge(t *testing.T) {
	set := DefaultRefSet()

	set.Merge(RefSet{
		ExerciseSquat: {
			Phases: map[string]map[string]Range{
				PhaseDown: {JointKnee: {Min: 65, Max: 95}},
			},
		},
		ExerciseBicepCurl: {
			Joints: map[string]Range{JointElbow: {Min: 25, Max: 170}},
		},
	})

	// Overlaid keys take the new values.
	assert.Equal(t, Range{Min: 65, Max: 95}, set[ExerciseSquat].Phases[PhaseDown][JointKnee])
	assert.Equal(t, Range{Min: 25, Max: 170}, set[ExerciseBicepCurl].Joints[JointElbow])

	// Sibling joints, phases, and exercises survive untouched.
	assert.Equal(t, Range{Min: 150, Max: 180}, set[ExerciseSquat].Phases[PhaseDown][JointHip])
	assert.Contains(t, set[ExerciseSquat].Phases, PhaseUp)
	assert.Contains(t, set, ExercisePlank)
}

func TestRefSetMergeNewExercise(t *testing.T) {
	set := RefSet{}
	set.Merge(RefSet{
		"Lunge": {Joints: map[string]Range{JointKnee: {Min: 60, Max: 175}}},
	})

	require.Contains(t, set, "Lunge")
	assert.Equal(t, Range{Min: 60, Max: 175}, set["Lunge"].Joints[JointKnee])
}

func TestRangeLegacyArrayJSON(t *testing.T) {
	var r Range
	require.NoError(t, json.Unmarshal([]byte(`[70, 100]`), &r))
	assert.Equal(t, Range{Min: 70, Max: 100}, r)

	// Legacy files allow 185 for sensor slack; the geometry tops out at 180.
	require.NoError(t, json.Unmarshal([]byte(`[165, 185]`), &r))
	assert.Equal(t, Range{Min: 165, Max: 180}, r)

	assert.Error(t, json.Unmarshal([]byte(`[70]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[70, 100, 130]`), &r))
}

func TestRefSetLegacyPhaseKeyedJSON(t *testing.T) {
	// The exact default document shipped with the legacy references file.
	doc := `{
		"Squat": {
			"Down": {"Knee": [70, 100], "Hip": [150, 180]},
			"Up": {"Knee": [160, 180], "Hip": [165, 185]}
		},
		"Push-up": {
			"Down": {"Elbow": [70, 100], "Shoulder": [60, 100]},
			"Up": {"Elbow": [160, 185]}
		},
		"Plank": {
			"Hold": {"Back": [170, 185], "Hip": [160, 185]}
		}
	}`

	var set RefSet
	require.NoError(t, json.Unmarshal([]byte(doc), &set))
	require.NoError(t, set.Validate())

	assert.Equal(t, Range{Min: 70, Max: 100}, set[ExerciseSquat].Phases[PhaseDown][JointKnee])
	assert.Equal(t, Range{Min: 165, Max: 180}, set[ExerciseSquat].Phases[PhaseUp][JointHip])
	assert.Equal(t, Range{Min: 160, Max: 180}, set[ExercisePushup].Phases[PhaseUp][JointElbow])
	assert.Equal(t, Range{Min: 170, Max: 180}, set[ExercisePlank].Phases[PhaseHold][JointBack])

	// The decoded set layers cleanly over the defaults.
	merged := DefaultRefSet()
	merged.Merge(set)
	assert.Equal(t, Range{Min: 150, Max: 180}, merged[ExerciseSquat].Phases[PhaseDown][JointHip])
	assert.NotEmpty(t, merged[ExerciseBicepCurl].Joints)
}

func TestRefSetJSONRoundTrip(t *testing.T) {
	set := DefaultRefSet()

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded RefSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set, decoded)

	// The interchange shape uses min/max keys.
	assert.Contains(t, string(data), `"min"`)
	assert.Contains(t, string(data), `"max"`)
}
