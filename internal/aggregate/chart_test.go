package aggregate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dekic648/segmentator/internal/aggregate"
	"github.com/Dekic648/segmentator/internal/survey"
)

func chartFixture(t *testing.T) (survey.TypeMap, *survey.Registry) {
	t.Helper()
	types := survey.TypeMap{
		"region": survey.Categorical,
		"q1":     survey.Numeric,
		"opt_a":  survey.Checkbox,
		"opt_b":  survey.Checkbox,
		"m1":     survey.Matrix,
		"m2":     survey.Matrix,
	}
	reg := survey.NewRegistry()
	require.NoError(t, reg.Create(survey.MatrixGroup, "Grid", []string{"m1", "m2"}, types))
	require.NoError(t, reg.Create(survey.CheckboxGroup, "Options", []string{"opt_a", "opt_b"}, types))
	return types, reg
}

func TestBuildUnsegmentedOrderAndTitles(t *testing.T) {
	ds := survey7(t)
	types, reg := chartFixture(t)

	rep, err := aggregate.Build(ds, types, reg, "")
	require.NoError(t, err)
	require.Len(t, rep.Charts, 3)

	assert.Equal(t, "q1 (%)", rep.Charts[0].Title)
	assert.Equal(t, aggregate.YPercent, rep.Charts[0].YLabel)
	assert.Equal(t, "Options - % Selected", rep.Charts[1].Title)
	assert.Equal(t, "Grid - Avg Scores", rep.Charts[2].Title)
	assert.Equal(t, aggregate.YMean, rep.Charts[2].YLabel)
	assert.Equal(t, 7, rep.Charts[1].N)
}

func TestBuildSegmented(t *testing.T) {
	ds := survey7(t)
	types, reg := chartFixture(t)

	rep, err := aggregate.Build(ds, types, reg, "region")
	require.NoError(t, err)
	// 3 segments for q1, checkbox group and matrix group.
	require.Len(t, rep.Charts, 9)

	titles := make([]string, 0, len(rep.Charts))
	for _, c := range rep.Charts {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{
		"q1 - region: East",
		"q1 - region: North",
		"q1 - region: South",
		"Options - % Selected (region: East)",
		"Options - % Selected (region: North)",
		"Options - % Selected (region: South)",
		"Grid - Avg Scores (region: East)",
		"Grid - Avg Scores (region: North)",
		"Grid - Avg Scores (region: South)",
	}, titles)

	east := rep.Charts[0]
	labels := make([]string, 0, len(east.Bars))
	for _, b := range east.Bars {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"1", "2", "3", "10"}, labels, "segments share the value axis of covered rows")
	assert.InDelta(t, 100, east.Bars[3].Value, 1e-9)
	assert.Zero(t, east.Bars[0].Value)

	southGrid := rep.Charts[8]
	assert.True(t, southGrid.Bars[1].Empty)
	assert.InDelta(t, 3.0, southGrid.Bars[0].Value, 1e-9)
}

func TestBuildSkipsSegmentsWithoutValues(t *testing.T) {
	ds := survey7(t)
	types, _ := chartFixture(t)
	types["m2"] = survey.Numeric

	rep, err := aggregate.Build(ds, types, survey.NewRegistry(), "region")
	require.NoError(t, err)
	var m2 []string
	for _, c := range rep.Charts {
		if c.Name == "m2" {
			m2 = append(m2, c.SegmentValue)
		}
	}
	assert.Equal(t, []string{"East", "North"}, m2)
}

func TestBuildRejectsInvalidSegment(t *testing.T) {
	ds := survey7(t)
	types, reg := chartFixture(t)

	_, err := aggregate.Build(ds, types, reg, "nope")
	require.ErrorIs(t, err, aggregate.ErrInvalidSegment)
	_, err = aggregate.Build(ds, types, reg, "q1")
	require.ErrorIs(t, err, aggregate.ErrInvalidSegment)
}

func TestMarkdownRendering(t *testing.T) {
	ds := survey7(t)
	types, reg := chartFixture(t)
	rep, err := aggregate.Build(ds, types, reg, "region")
	require.NoError(t, err)

	md := rep.Markdown()
	assert.Contains(t, md, "[CHARTS]")
	assert.Contains(t, md, "Segment: region")
	assert.Contains(t, md, "### q1 - region: East")
	assert.Contains(t, md, "100.0%")
	assert.Contains(t, md, "n/a")
	assert.Contains(t, md, "Avg Score (n=3)")
	assert.Equal(t, len(rep.Charts), strings.Count(md, "```text"))
}

func TestChartMarkdownMeanFormatting(t *testing.T) {
	c := aggregate.Chart{
		Title:  "Grid - Avg Scores",
		Source: aggregate.SourceMatrix,
		YLabel: aggregate.YMean,
		N:      2,
		Bars:   []aggregate.Bar{{Label: "m1", Value: 4.5, Count: 2}, {Label: "m2", Value: 2.25, Count: 2}},
	}
	md := c.Markdown()
	assert.Contains(t, md, "4.50")
	assert.Contains(t, md, "2.25")
	assert.Contains(t, md, strings.Repeat("█", 30), "the largest mean fills the bar")
}
