package aggregate

import (
	"errors"
	"fmt"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/survey"
)

// ErrInvalidSegment indicates the segment column is absent or not categorical.
var ErrInvalidSegment = errors.New("invalid segment column")

// Source identifies what a chart summarises.
type Source string

const (
	SourceColumn   Source = "column"
	SourceCheckbox Source = "checkbox"
	SourceMatrix   Source = "matrix"
)

const (
	YPercent = "% of Responses"
	YMean    = "Avg Score"
)

// Bar is one labelled value of a chart. Empty marks a mean with nothing to
// average.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Empty bool    `json:"empty,omitempty"`
}

// Chart is a single bar chart ready for rendering.
type Chart struct {
	Title        string `json:"title"`
	Source       Source `json:"source"`
	Name         string `json:"name"`
	Segment      string `json:"segment,omitempty"`
	SegmentValue string `json:"segment_value,omitempty"`
	YLabel       string `json:"y_label"`
	// N is the denominator: present values for column charts, rows for groups.
	N    int   `json:"n"`
	Bars []Bar `json:"bars"`
}

// Percent reports whether bar values are percentages.
func (c Chart) Percent() bool { return c.Source != SourceMatrix }

// Report is the ordered set of charts for one dataset view.
type Report struct {
	Segment string  `json:"segment,omitempty"`
	Rows    int     `json:"rows"`
	Charts  []Chart `json:"charts"`
}

// Build produces charts for every numeric and likert column in dataset order,
// then every checkbox group, then every matrix group. With a non-empty segment
// each source yields one chart per segment value.
func Build(ds *dataset.Dataset, types survey.TypeMap, reg *survey.Registry, segment string) (*Report, error) {
	rep := &Report{Segment: segment, Rows: ds.Rows()}

	var segments []Segment
	if segment != "" {
		c, ok := ds.Column(segment)
		if !ok {
			return nil, fmt.Errorf("%q: not a column: %w", segment, ErrInvalidSegment)
		}
		if types[segment] != survey.Categorical {
			return nil, fmt.Errorf("%q is %s, want %s: %w", segment, types[segment], survey.Categorical, ErrInvalidSegment)
		}
		segments = Partition(c)
	}

	for _, c := range ds.Columns {
		if t := types[c.Name]; t != survey.Numeric && t != survey.Likert {
			continue
		}
		if segment == "" {
			rep.Charts = append(rep.Charts, columnChart(c))
			continue
		}
		rep.Charts = append(rep.Charts, segmentedColumnCharts(c, segment, segments)...)
	}

	for _, kind := range survey.Kinds {
		groups, err := reg.List(kind)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			charts, err := groupCharts(ds, g, segment, segments)
			if err != nil {
				return nil, fmt.Errorf("%s group %q: %w", kind, g.Name, err)
			}
			rep.Charts = append(rep.Charts, charts...)
		}
	}
	return rep, nil
}

func columnChart(c *dataset.Column) Chart {
	shares := ValueShares(c, nil)
	ch := Chart{
		Title:  fmt.Sprintf("%s (%%)", c.Name),
		Source: SourceColumn,
		Name:   c.Name,
		YLabel: YPercent,
		N:      c.Present(),
	}
	for _, s := range shares {
		ch.Bars = append(ch.Bars, Bar{Label: s.Value, Value: s.Percent, Count: s.Count})
	}
	return ch
}

// segmentedColumnCharts shares one value axis across segments so charts are
// comparable. Segments with no present target values are skipped.
func segmentedColumnCharts(c *dataset.Column, segment string, segments []Segment) []Chart {
	var covered []int
	for _, s := range segments {
		covered = append(covered, s.Rows...)
	}
	var axis []string
	for _, s := range ValueShares(c, covered) {
		axis = append(axis, s.Value)
	}

	var out []Chart
	for _, s := range segments {
		shares, present := valueSharesOver(c, s.Rows, axis)
		if present == 0 {
			continue
		}
		ch := Chart{
			Title:        fmt.Sprintf("%s - %s: %s", c.Name, segment, s.Value),
			Source:       SourceColumn,
			Name:         c.Name,
			Segment:      segment,
			SegmentValue: s.Value,
			YLabel:       YPercent,
			N:            present,
		}
		for _, sh := range shares {
			ch.Bars = append(ch.Bars, Bar{Label: sh.Value, Value: sh.Percent, Count: sh.Count})
		}
		out = append(out, ch)
	}
	return out
}

func groupCharts(ds *dataset.Dataset, g survey.Group, segment string, segments []Segment) ([]Chart, error) {
	if segment == "" {
		ch, err := groupChart(ds, g, nil)
		if err != nil {
			return nil, err
		}
		ch.Title = groupTitle(g, "")
		return []Chart{ch}, nil
	}
	out := make([]Chart, 0, len(segments))
	for _, s := range segments {
		ch, err := groupChart(ds, g, s.Rows)
		if err != nil {
			return nil, err
		}
		ch.Title = groupTitle(g, fmt.Sprintf(" (%s: %s)", segment, s.Value))
		ch.Segment = segment
		ch.SegmentValue = s.Value
		out = append(out, ch)
	}
	return out, nil
}

func groupTitle(g survey.Group, suffix string) string {
	if g.Kind == survey.MatrixGroup {
		return g.Name + " - Avg Scores" + suffix
	}
	return g.Name + " - % Selected" + suffix
}

func groupChart(ds *dataset.Dataset, g survey.Group, rows []int) (Chart, error) {
	n := len(rows)
	if rows == nil {
		n = ds.Rows()
	}
	ch := Chart{Name: g.Name, N: n}
	switch g.Kind {
	case survey.CheckboxGroup:
		shares, err := CheckboxShares(ds, g.Columns, rows)
		if err != nil {
			return Chart{}, err
		}
		ch.Source, ch.YLabel = SourceCheckbox, YPercent
		for _, s := range shares {
			ch.Bars = append(ch.Bars, Bar{Label: s.Column, Value: s.Percent, Count: s.Present})
		}
	case survey.MatrixGroup:
		means, err := MatrixMeans(ds, g.Columns, rows)
		if err != nil {
			return Chart{}, err
		}
		ch.Source, ch.YLabel = SourceMatrix, YMean
		for _, m := range means {
			ch.Bars = append(ch.Bars, Bar{Label: m.Column, Value: m.Mean, Count: m.N, Empty: m.N == 0})
		}
	default:
		return Chart{}, survey.ErrInvalidKind
	}
	return ch, nil
}
