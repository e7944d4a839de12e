package aggregate

import (
	"fmt"
	"sort"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/survey"
)

// Share is the portion of present observations equal to one value.
type Share struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ColumnShare is the portion of rows in which a checkbox column is present.
type ColumnShare struct {
	Column  string  `json:"column"`
	Present int     `json:"present"`
	Rows    int     `json:"rows"`
	Percent float64 `json:"percent"`
}

// ColumnMean is the mean of the present numeric values of one column.
// N is zero when nothing was averaged; Mean is then 0 and meaningless.
type ColumnMean struct {
	Column string  `json:"column"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
}

// Segment is the set of row indexes sharing one value of the segment column.
type Segment struct {
	Value string `json:"value"`
	Rows  []int  `json:"rows"`
}

// allRows returns 0..n-1.
func allRows(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

type valueCount struct {
	value dataset.Value
	count int
}

// countValues tallies present values of c over rows keyed by Value.Key.
func countValues(c *dataset.Column, rows []int) (map[string]*valueCount, int) {
	counts := map[string]*valueCount{}
	present := 0
	for _, i := range rows {
		v := c.Values[i]
		if v.Missing {
			continue
		}
		present++
		k := v.Key()
		if vc, ok := counts[k]; ok {
			vc.count++
			continue
		}
		counts[k] = &valueCount{value: v, count: 1}
	}
	return counts, present
}

// sortedKeys orders distinct values ascending: numerically for numeric values,
// lexically otherwise.
func sortedKeys(counts map[string]*valueCount) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := counts[keys[i]].value, counts[keys[j]].value
		if a.IsNum && b.IsNum {
			return a.Num < b.Num
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ValueShares returns, per distinct present value of c within rows, the
// percentage of present observations equal to it, ascending by value. A nil
// rows slice means every row.
func ValueShares(c *dataset.Column, rows []int) []Share {
	if rows == nil {
		rows = allRows(len(c.Values))
	}
	counts, present := countValues(c, rows)
	keys := sortedKeys(counts)
	out := make([]Share, 0, len(keys))
	for _, k := range keys {
		out = append(out, Share{Value: k, Count: counts[k].count, Percent: percent(counts[k].count, present)})
	}
	return out
}

// valueSharesOver is ValueShares restricted to a fixed value axis; values of
// the axis absent from rows get a zero share.
func valueSharesOver(c *dataset.Column, rows []int, axis []string) ([]Share, int) {
	counts, present := countValues(c, rows)
	out := make([]Share, 0, len(axis))
	for _, k := range axis {
		n := 0
		if vc, ok := counts[k]; ok {
			n = vc.count
		}
		out = append(out, Share{Value: k, Count: n, Percent: percent(n, present)})
	}
	return out, present
}

// CheckboxShares returns, per member column, the percentage of rows in which
// the column is present, whatever its value. A nil rows slice means every row.
func CheckboxShares(ds *dataset.Dataset, columns []string, rows []int) ([]ColumnShare, error) {
	if rows == nil {
		rows = allRows(ds.Rows())
	}
	out := make([]ColumnShare, 0, len(columns))
	for _, name := range columns {
		c, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, survey.ErrUnknownColumn)
		}
		present := 0
		for _, i := range rows {
			if !c.Values[i].Missing {
				present++
			}
		}
		out = append(out, ColumnShare{Column: name, Present: present, Rows: len(rows), Percent: percent(present, len(rows))})
	}
	return out, nil
}

// MatrixMeans returns, per member column, the mean of present numeric values
// within rows. Missing and non-numeric cells are left out of both sums.
func MatrixMeans(ds *dataset.Dataset, columns []string, rows []int) ([]ColumnMean, error) {
	if rows == nil {
		rows = allRows(ds.Rows())
	}
	out := make([]ColumnMean, 0, len(columns))
	for _, name := range columns {
		c, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, survey.ErrUnknownColumn)
		}
		var sum float64
		n := 0
		for _, i := range rows {
			v := c.Values[i]
			if v.Missing || !v.IsNum {
				continue
			}
			sum += v.Num
			n++
		}
		m := ColumnMean{Column: name, N: n}
		if n > 0 {
			m.Mean = sum / float64(n)
		}
		out = append(out, m)
	}
	return out, nil
}

// Partition splits row indexes by exact value of c. Rows where c is missing
// belong to no segment. Segments are ordered ascending by value.
func Partition(c *dataset.Column) []Segment {
	byKey := map[string]*valueCount{}
	rowsByKey := map[string][]int{}
	for i, v := range c.Values {
		if v.Missing {
			continue
		}
		k := v.Key()
		if _, ok := byKey[k]; !ok {
			byKey[k] = &valueCount{value: v}
		}
		byKey[k].count++
		rowsByKey[k] = append(rowsByKey[k], i)
	}
	keys := sortedKeys(byKey)
	out := make([]Segment, 0, len(keys))
	for _, k := range keys {
		out = append(out, Segment{Value: k, Rows: rowsByKey[k]})
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
