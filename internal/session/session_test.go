package session_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/survey"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	header := []string{"region", "sat", "use_web", "use_app", "grid_1", "grid_2"}
	rows := [][]string{
		{"North", "5", "Web", "", "4", "5"},
		{"South", "3", "", "App", "2", "3"},
		{"North", "7", "Web", "App", "", "1"},
	}
	ds := dataset.FromRecords(header, rows, dataset.DefaultOptions())
	return session.New("wave1", "wave1.csv", ds, survey.DefaultClassifierOptions())
}

func TestNewClassifiesEveryColumn(t *testing.T) {
	s := newSession(t)
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.Types, 6)
	assert.Equal(t, survey.Categorical, s.Types["region"])
	assert.Equal(t, survey.Likert, s.Types["sat"])
	assert.Equal(t, []string{"region", "use_web", "use_app"}, s.SegmentCandidates())
}

func TestGroupWorkflow(t *testing.T) {
	s := newSession(t)
	before := s.UpdatedAt
	time.Sleep(2 * time.Millisecond)

	require.NoError(t, s.OverrideType("use_web", survey.Checkbox))
	require.NoError(t, s.OverrideType("use_app", survey.Checkbox))
	assert.True(t, s.UpdatedAt.After(before))
	assert.Equal(t, []string{"use_web", "use_app"}, s.Columns(survey.Checkbox))

	require.NoError(t, s.CreateGroup(survey.CheckboxGroup, "Channels", []string{"use_web", "use_app"}))
	err := s.CreateGroup(survey.MatrixGroup, "Grid", []string{"grid_1"})
	require.ErrorIs(t, err, survey.ErrWrongType)

	groups, err := s.ListGroups(survey.CheckboxGroup)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	rep, err := s.Charts("region")
	require.NoError(t, err)
	var titles []string
	for _, c := range rep.Charts {
		titles = append(titles, c.Title)
	}
	assert.Contains(t, titles, "Channels - % Selected (region: North)")

	require.NoError(t, s.DeleteGroup(survey.CheckboxGroup, "Channels"))
	require.ErrorIs(t, s.DeleteGroup(survey.CheckboxGroup, "Channels"), survey.ErrNotFound)
}

func TestOverrideRejectsUnknownColumn(t *testing.T) {
	s := newSession(t)
	stamp := s.UpdatedAt
	require.ErrorIs(t, s.OverrideType("missing", survey.Text), survey.ErrUnknownColumn)
	assert.Equal(t, stamp, s.UpdatedAt)
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.OverrideType("grid_1", survey.Matrix))
	require.NoError(t, s.OverrideType("grid_2", survey.Matrix))
	require.NoError(t, s.CreateGroup(survey.MatrixGroup, "Grid", []string{"grid_1", "grid_2"}))

	b, err := json.Marshal(s)
	require.NoError(t, err)
	back, err := session.Decode(b)
	require.NoError(t, err)

	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Types, back.Types)
	groups, err := back.ListGroups(survey.MatrixGroup)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"grid_1", "grid_2"}, groups[0].Columns)
	assert.Equal(t, s.Summarize().Rows, back.Summarize().Rows)
}

func TestDecodeRejectsIncompleteTypeMap(t *testing.T) {
	s := newSession(t)
	delete(s.Types, "region")
	b, err := json.Marshal(s)
	require.NoError(t, err)
	_, err = session.Decode(b)
	assert.Error(t, err)
}
