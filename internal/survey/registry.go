package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GroupKind selects one of the two group namespaces.
type GroupKind string

const (
	CheckboxGroup GroupKind = "checkbox"
	MatrixGroup   GroupKind = "matrix"
)

// Kinds lists the group kinds in chart order.
var Kinds = []GroupKind{CheckboxGroup, MatrixGroup}

// ParseGroupKind validates a kind tag.
func ParseGroupKind(s string) (GroupKind, error) {
	k := GroupKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidKind)
	}
	return k, nil
}

// Valid reports whether k is checkbox or matrix.
func (k GroupKind) Valid() bool { return k == CheckboxGroup || k == MatrixGroup }

// Type is the semantic type every member column must carry.
func (k GroupKind) Type() SemanticType { return SemanticType(k) }

// Group is a named set of columns of one kind.
type Group struct {
	Kind    GroupKind `json:"kind"`
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
}

var (
	ErrEmptyName     = errors.New("group name is empty")
	ErrDuplicateName = errors.New("group name already exists")
	ErrEmptyColumns  = errors.New("no columns selected")
	ErrWrongType     = errors.New("column type does not match group kind")
	ErrNotFound      = errors.New("group not found")
	ErrInvalidKind   = errors.New("invalid group kind")
)

// GroupError describes a rejected registry operation. It unwraps to one of the
// sentinel errors above.
type GroupError struct {
	Kind   GroupKind
	Name   string
	Column string
	Err    error
}

func (e *GroupError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s group %q: column %q: %v", e.Kind, e.Name, e.Column, e.Err)
	case e.Name != "":
		return fmt.Sprintf("%s group %q: %v", e.Kind, e.Name, e.Err)
	default:
		return fmt.Sprintf("%s group: %v", e.Kind, e.Err)
	}
}

func (e *GroupError) Unwrap() error { return e.Err }

type namespace struct {
	order  []string
	groups map[string]*Group
}

// Registry holds checkbox and matrix groups in independent namespaces.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	spaces map[GroupKind]*namespace
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{spaces: make(map[GroupKind]*namespace, len(Kinds))}
	for _, k := range Kinds {
		r.spaces[k] = &namespace{groups: map[string]*Group{}}
	}
	return r
}

func (r *Registry) space(k GroupKind) (*namespace, error) {
	ns, ok := r.spaces[k]
	if !ok {
		return nil, &GroupError{Kind: k, Err: ErrInvalidKind}
	}
	return ns, nil
}

// List returns copies of the groups of kind k in creation order.
func (r *Registry) List(k GroupKind) ([]Group, error) {
	ns, err := r.space(k)
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(ns.order))
	for _, name := range ns.order {
		g := ns.groups[name]
		out = append(out, Group{Kind: g.Kind, Name: g.Name, Columns: append([]string(nil), g.Columns...)})
	}
	return out, nil
}

// Get returns a copy of one group.
func (r *Registry) Get(k GroupKind, name string) (Group, bool) {
	ns, err := r.space(k)
	if err != nil {
		return Group{}, false
	}
	g, ok := ns.groups[strings.TrimSpace(name)]
	if !ok {
		return Group{}, false
	}
	return Group{Kind: g.Kind, Name: g.Name, Columns: append([]string(nil), g.Columns...)}, true
}

// Create validates and inserts a group. Checks run in a fixed order: empty
// name, duplicate name, empty columns, then column types. Nothing is inserted
// on failure. Repeated columns are kept once, in first-seen order.
func (r *Registry) Create(k GroupKind, name string, columns []string, types TypeMap) error {
	ns, err := r.space(k)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &GroupError{Kind: k, Err: ErrEmptyName}
	}
	if _, dup := ns.groups[name]; dup {
		return &GroupError{Kind: k, Name: name, Err: ErrDuplicateName}
	}
	if len(columns) == 0 {
		return &GroupError{Kind: k, Name: name, Err: ErrEmptyColumns}
	}
	members := make([]string, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		// Columns missing from the map have no type, so they cannot match.
		if t, ok := types[c]; !ok || t != k.Type() {
			return &GroupError{Kind: k, Name: name, Column: c, Err: ErrWrongType}
		}
		members = append(members, c)
	}
	ns.groups[name] = &Group{Kind: k, Name: name, Columns: members}
	ns.order = append(ns.order, name)
	return nil
}

// Delete removes the named group of kind k.
func (r *Registry) Delete(k GroupKind, name string) error {
	ns, err := r.space(k)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if _, ok := ns.groups[name]; !ok {
		return &GroupError{Kind: k, Name: name, Err: ErrNotFound}
	}
	delete(ns.groups, name)
	for i, n := range ns.order {
		if n == name {
			ns.order = append(ns.order[:i], ns.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the total number of groups across kinds.
func (r *Registry) Len() int {
	n := 0
	for _, ns := range r.spaces {
		n += len(ns.order)
	}
	return n
}

// MarshalJSON writes each namespace as an ordered array.
func (r *Registry) MarshalJSON() ([]byte, error) {
	out := make(map[GroupKind][]Group, len(Kinds))
	for _, k := range Kinds {
		gs, _ := r.List(k)
		out[k] = gs
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a registry written by MarshalJSON. Member types are
// not re-checked: they were valid at creation and later overrides do not
// invalidate existing groups.
func (r *Registry) UnmarshalJSON(b []byte) error {
	var in map[GroupKind][]Group
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	fresh := NewRegistry()
	for k, gs := range in {
		ns, err := fresh.space(k)
		if err != nil {
			return err
		}
		for _, g := range gs {
			if g.Name == "" || len(g.Columns) == 0 {
				return fmt.Errorf("decode %s group %q: empty name or columns", k, g.Name)
			}
			if _, dup := ns.groups[g.Name]; dup {
				return &GroupError{Kind: k, Name: g.Name, Err: ErrDuplicateName}
			}
			ns.groups[g.Name] = &Group{Kind: k, Name: g.Name, Columns: append([]string(nil), g.Columns...)}
			ns.order = append(ns.order, g.Name)
		}
	}
	*r = *fresh
	return nil
}
