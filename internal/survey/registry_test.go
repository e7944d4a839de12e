package survey_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dekic648/segmentator/internal/survey"
)

func sampleTypes() survey.TypeMap {
	return survey.TypeMap{
		"Q5_a": survey.Checkbox,
		"Q5_b": survey.Checkbox,
		"Q5_c": survey.Checkbox,
		"M1":   survey.Matrix,
		"M2":   survey.Matrix,
		"age":  survey.Numeric,
	}
}

func TestRegistryCreateDeleteRoundTrip(t *testing.T) {
	r := survey.NewRegistry()
	types := sampleTypes()
	require.NoError(t, r.Create(survey.CheckboxGroup, "Channels", []string{"Q5_a"}, types))

	before, err := r.List(survey.CheckboxGroup)
	require.NoError(t, err)

	require.NoError(t, r.Create(survey.CheckboxGroup, "Brands", []string{"Q5_b", "Q5_c"}, types))
	require.NoError(t, r.Delete(survey.CheckboxGroup, "Brands"))

	after, err := r.List(survey.CheckboxGroup)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegistryValidationPrecedence(t *testing.T) {
	types := sampleTypes()
	r := survey.NewRegistry()
	require.NoError(t, r.Create(survey.CheckboxGroup, "Taken", []string{"Q5_a"}, types))

	tests := []struct {
		name    string
		group   string
		columns []string
		want    error
	}{
		{"empty name beats empty columns", "", nil, survey.ErrEmptyName},
		{"whitespace name", "   ", []string{"age"}, survey.ErrEmptyName},
		{"duplicate beats empty columns", "Taken", nil, survey.ErrDuplicateName},
		{"duplicate beats wrong type", " Taken ", []string{"age"}, survey.ErrDuplicateName},
		{"empty columns beats nothing", "New", []string{}, survey.ErrEmptyColumns},
		{"wrong type", "New", []string{"Q5_b", "age"}, survey.ErrWrongType},
		{"unknown column", "New", []string{"nope"}, survey.ErrWrongType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Create(survey.CheckboxGroup, tt.group, tt.columns, types)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
			var ge *survey.GroupError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, survey.CheckboxGroup, ge.Kind)
		})
	}

	groups, err := r.List(survey.CheckboxGroup)
	require.NoError(t, err)
	require.Len(t, groups, 1, "failed creates must not mutate the registry")
}

func TestRegistryDuplicateKeepsOriginal(t *testing.T) {
	types := sampleTypes()
	r := survey.NewRegistry()
	require.NoError(t, r.Create(survey.CheckboxGroup, "Q5", []string{"Q5_a", "Q5_b"}, types))
	err := r.Create(survey.CheckboxGroup, "Q5", []string{"Q5_c"}, types)
	require.ErrorIs(t, err, survey.ErrDuplicateName)

	g, ok := r.Get(survey.CheckboxGroup, "Q5")
	require.True(t, ok)
	assert.Equal(t, []string{"Q5_a", "Q5_b"}, g.Columns)
}

func TestRegistryWrongTypeDoesNotInsert(t *testing.T) {
	r := survey.NewRegistry()
	err := r.Create(survey.CheckboxGroup, "Ages", []string{"age"}, sampleTypes())
	require.ErrorIs(t, err, survey.ErrWrongType)

	var ge *survey.GroupError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "age", ge.Column)

	groups, err := r.List(survey.CheckboxGroup)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestRegistryNamespacesAreIndependent(t *testing.T) {
	types := sampleTypes()
	r := survey.NewRegistry()
	require.NoError(t, r.Create(survey.CheckboxGroup, "Q", []string{"Q5_a"}, types))
	require.NoError(t, r.Create(survey.MatrixGroup, "Q", []string{"M1", "M2"}, types))

	require.NoError(t, r.Delete(survey.MatrixGroup, "Q"))
	_, ok := r.Get(survey.CheckboxGroup, "Q")
	assert.True(t, ok)

	err := r.Delete(survey.MatrixGroup, "Q")
	require.ErrorIs(t, err, survey.ErrNotFound)
}

func TestRegistryListKeepsCreationOrderAndCopies(t *testing.T) {
	types := sampleTypes()
	r := survey.NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Create(survey.CheckboxGroup, name, []string{"Q5_a", "Q5_a", "Q5_b"}, types))
	}
	groups, err := r.List(survey.CheckboxGroup)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "zeta", groups[0].Name)
	assert.Equal(t, "alpha", groups[1].Name)
	assert.Equal(t, "mid", groups[2].Name)
	assert.Equal(t, []string{"Q5_a", "Q5_b"}, groups[0].Columns)

	groups[0].Columns[0] = "mutated"
	g, _ := r.Get(survey.CheckboxGroup, "zeta")
	assert.Equal(t, "Q5_a", g.Columns[0])
}

func TestRegistryInvalidKind(t *testing.T) {
	r := survey.NewRegistry()
	_, err := r.List(survey.GroupKind("radio"))
	require.ErrorIs(t, err, survey.ErrInvalidKind)
	require.ErrorIs(t, r.Create("radio", "x", []string{"a"}, nil), survey.ErrInvalidKind)

	_, err = survey.ParseGroupKind(" Matrix ")
	require.NoError(t, err)
	_, err = survey.ParseGroupKind("grid")
	require.ErrorIs(t, err, survey.ErrInvalidKind)
}

func TestRegistryJSONRoundTrip(t *testing.T) {
	types := sampleTypes()
	r := survey.NewRegistry()
	require.NoError(t, r.Create(survey.CheckboxGroup, "b", []string{"Q5_b"}, types))
	require.NoError(t, r.Create(survey.CheckboxGroup, "a", []string{"Q5_a"}, types))
	require.NoError(t, r.Create(survey.MatrixGroup, "grid", []string{"M1", "M2"}, types))

	b, err := json.Marshal(r)
	require.NoError(t, err)

	back := survey.NewRegistry()
	require.NoError(t, json.Unmarshal(b, back))
	for _, k := range survey.Kinds {
		want, _ := r.List(k)
		got, _ := back.List(k)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 3, back.Len())
}
