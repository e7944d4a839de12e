package survey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SemanticType is the analytical role assigned to a column.
type SemanticType string

const (
	Numeric     SemanticType = "numeric"
	Likert      SemanticType = "likert"
	Categorical SemanticType = "categorical"
	Checkbox    SemanticType = "checkbox"
	Matrix      SemanticType = "matrix"
	OpenEnded   SemanticType = "open_ended"
	Text        SemanticType = "text"
)

// AllTypes lists every semantic type in display order.
var AllTypes = []SemanticType{Numeric, Likert, Categorical, Checkbox, Matrix, OpenEnded, Text}

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidType   = errors.New("invalid semantic type")
)

// Valid reports whether t is one of AllTypes.
func (t SemanticType) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseSemanticType accepts the canonical tags case-insensitively, plus
// "open-ended" as an alias.
func ParseSemanticType(s string) (SemanticType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "open-ended" {
		norm = string(OpenEnded)
	}
	t := SemanticType(norm)
	if !t.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidType)
	}
	return t, nil
}

// TypeMap assigns exactly one SemanticType to every column of a dataset.
type TypeMap map[string]SemanticType

// Override replaces the type of an existing column. It never adds entries.
func (m TypeMap) Override(column string, t SemanticType) error {
	if _, ok := m[column]; !ok {
		return fmt.Errorf("%q: %w", column, ErrUnknownColumn)
	}
	if !t.Valid() {
		return fmt.Errorf("%q: %w", t, ErrInvalidType)
	}
	m[column] = t
	return nil
}

// ColumnsOf returns the columns typed t, ordered by the given column order.
// Columns absent from order are appended in lexical order.
func (m TypeMap) ColumnsOf(t SemanticType, order []string) []string {
	var out []string
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
		if m[name] == t {
			out = append(out, name)
		}
	}
	var rest []string
	for name, typ := range m {
		if typ == t && !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Clone returns an independent copy.
func (m TypeMap) Clone() TypeMap {
	out := make(TypeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
