package survey

import (
	"unicode/utf8"

	"github.com/Dekic648/segmentator/internal/dataset"
)

// ClassifierOptions holds the heuristic thresholds.
type ClassifierOptions struct {
	// CategoricalMaxDistinct is the largest distinct count still treated as categorical.
	CategoricalMaxDistinct int
	// OpenEndedMinLength is the mean length a textual column must exceed to be open-ended.
	OpenEndedMinLength float64
	// LikertMin and LikertMax bound the inclusive scale range.
	LikertMin float64
	LikertMax float64
}

// DefaultClassifierOptions returns the standard thresholds: 10 distinct values,
// mean length 20 and a 1-7 scale.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		CategoricalMaxDistinct: 10,
		OpenEndedMinLength:     20,
		LikertMin:              1,
		LikertMax:              7,
	}
}

// Classify assigns a type to every column using the default thresholds.
func Classify(ds *dataset.Dataset) TypeMap {
	return ClassifyWith(ds, DefaultClassifierOptions())
}

// ClassifyWith assigns a type to every column. It never fails: degenerate
// columns fall back to numeric, likert or text.
func ClassifyWith(ds *dataset.Dataset, opt ClassifierOptions) TypeMap {
	out := make(TypeMap, len(ds.Columns))
	for _, c := range ds.Columns {
		out[c.Name] = ClassifyColumn(c, opt)
	}
	return out
}

// ClassifyColumn applies the rules to one column.
//
// A numeric column with no present values passes the scale-range test
// vacuously and comes back as likert.
func ClassifyColumn(c *dataset.Column, opt ClassifierOptions) SemanticType {
	if !c.Numeric {
		return classifyText(c, opt)
	}
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		if v.Num < opt.LikertMin || v.Num > opt.LikertMax {
			return Numeric
		}
	}
	return Likert
}

func classifyText(c *dataset.Column, opt ClassifierOptions) SemanticType {
	distinct := make(map[string]struct{})
	total, n := 0, 0
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		distinct[v.Raw] = struct{}{}
		total += utf8.RuneCountInString(v.Raw)
		n++
	}
	if len(distinct) <= opt.CategoricalMaxDistinct {
		return Categorical
	}
	if float64(total)/float64(n) > opt.OpenEndedMinLength {
		return OpenEnded
	}
	return Text
}
