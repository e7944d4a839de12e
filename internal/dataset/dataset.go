package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMissingMarkers are the cell spellings treated as missing in addition to
// empty or whitespace-only cells.
var DefaultMissingMarkers = []string{"NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// Options controls how raw cells become a Dataset.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (tab for .tsv, comma otherwise).
	Delimiter rune
	// DecimalSeparator used when parsing numbers. If 0, '.' is assumed.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing numbers when set.
	ThousandsSeparator rune
	// MissingMarkers are compared against trimmed cells. Nil means DefaultMissingMarkers.
	MissingMarkers []string
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for survey exports.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Value is one observed cell of a column.
type Value struct {
	Raw     string
	Num     float64
	IsNum   bool
	Missing bool
}

// Key is the identity used for distinct counting, segmentation and chart labels.
// Numeric values are canonicalised so "1", "1.0" and "01" collapse together.
func (v Value) Key() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Raw
}

// Column is a named sequence of values sharing one underlying representation.
type Column struct {
	Name string
	// Numeric is true when every present value parses as a number. A column with
	// no present values is numeric.
	Numeric bool
	Values  []Value
}

// Present returns the number of non-missing values.
func (c *Column) Present() int {
	n := 0
	for _, v := range c.Values {
		if !v.Missing {
			n++
		}
	}
	return n
}

// Dataset is a rectangular table of named columns.
type Dataset struct {
	Columns []*Column
	index   map[string]int
}

// New assembles a dataset from already built columns. Column names must be unique
// and all columns must have the same length.
func New(cols []*Column) (*Dataset, error) {
	ds := &Dataset{Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i > 0 && len(c.Values) != len(cols[0].Values) {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), len(cols[0].Values))
		}
		ds.index[c.Name] = i
	}
	return ds, nil
}

// FromRecords builds a dataset from a header and raw rows. Short rows are padded
// with missing cells and extra cells are dropped.
func FromRecords(header []string, rows [][]string, opt Options) *Dataset {
	names := uniqueNames(header)
	markers := markerSet(opt.MissingMarkers)
	cols := make([]*Column, len(names))
	for j, name := range names {
		cols[j] = &Column{Name: name, Numeric: true, Values: make([]Value, 0, len(rows))}
	}
	for _, rec := range rows {
		for j, c := range cols {
			cell := ""
			if j < len(rec) {
				cell = rec[j]
			}
			v := parseCell(cell, markers, opt)
			if !v.Missing && !v.IsNum {
				c.Numeric = false
			}
			c.Values = append(c.Values, v)
		}
	}
	// A column is either numeric or textual as a whole.
	for _, c := range cols {
		if c.Numeric {
			continue
		}
		for i := range c.Values {
			c.Values[i].IsNum = false
			c.Values[i].Num = 0
		}
	}
	ds, _ := New(cols)
	return ds
}

// Rows returns the row count.
func (d *Dataset) Rows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Names returns the column names in dataset order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	if d.index == nil {
		d.reindex()
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.Columns[i], true
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		d.index[c.Name] = i
	}
}

type jsonColumn struct {
	Name    string     `json:"name"`
	Numeric bool       `json:"numeric"`
	Text    []*string  `json:"text,omitempty"`
	Nums    []*float64 `json:"nums,omitempty"`
}

// MarshalJSON stores present cells as strings (textual) or numbers (numeric), missing as null.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	out := struct {
		Columns []jsonColumn `json:"columns"`
	}{Columns: make([]jsonColumn, 0, len(d.Columns))}
	for _, c := range d.Columns {
		jc := jsonColumn{Name: c.Name, Numeric: c.Numeric}
		if c.Numeric {
			jc.Nums = make([]*float64, len(c.Values))
		} else {
			jc.Text = make([]*string, len(c.Values))
		}
		for i, v := range c.Values {
			if v.Missing {
				continue
			}
			if c.Numeric {
				n := v.Num
				jc.Nums[i] = &n
			} else {
				s := v.Raw
				jc.Text[i] = &s
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a dataset written by MarshalJSON.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var in struct {
		Columns []jsonColumn `json:"columns"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	cols := make([]*Column, 0, len(in.Columns))
	for _, jc := range in.Columns {
		c := &Column{Name: jc.Name, Numeric: jc.Numeric}
		if jc.Numeric {
			c.Values = make([]Value, len(jc.Nums))
			for i, n := range jc.Nums {
				if n == nil {
					c.Values[i] = Value{Missing: true}
					continue
				}
				c.Values[i] = Value{Raw: strconv.FormatFloat(*n, 'g', -1, 64), Num: *n, IsNum: true}
			}
		} else {
			c.Values = make([]Value, len(jc.Text))
			for i, s := range jc.Text {
				if s == nil {
					c.Values[i] = Value{Missing: true}
					continue
				}
				c.Values[i] = Value{Raw: *s}
			}
		}
		cols = append(cols, c)
	}
	ds, err := New(cols)
	if err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}
	*d = *ds
	return nil
}

func parseCell(cell string, markers map[string]struct{}, opt Options) Value {
	raw := strings.TrimSpace(strings.ReplaceAll(cell, "\u00A0", " "))
	if raw == "" {
		return Value{Missing: true}
	}
	if _, ok := markers[raw]; ok {
		return Value{Missing: true}
	}
	if x, ok := parseNumeric(raw, opt); ok {
		return Value{Raw: raw, Num: x, IsNum: true}
	}
	return Value{Raw: raw}
}

func markerSet(markers []string) map[string]struct{} {
	if markers == nil {
		markers = DefaultMissingMarkers
	}
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[strings.TrimSpace(m)] = struct{}{}
	}
	return set
}

// uniqueNames trims header cells, names blank ones by position and suffixes
// repeats with .1, .2 the way dataframe readers do.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base, n := name, seen[name]
			for {
				n++
				cand := fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[cand]; !taken {
					seen[base] = n
					name = cand
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
