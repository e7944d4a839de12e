package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dekic648/segmentator/internal/aggregate"
	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/survey"
)

// Session is one user's working state over a loaded dataset: the data, its
// type assignments and the groups defined on it.
type Session struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Source    string           `json:"source"`
	Data      *dataset.Dataset `json:"data"`
	Types     survey.TypeMap   `json:"types"`
	Groups    *survey.Registry `json:"groups"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// New classifies ds and returns a session with an empty group registry.
func New(name, source string, ds *dataset.Dataset, opt survey.ClassifierOptions) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Data:      ds,
		Types:     survey.ClassifyWith(ds, opt),
		Groups:    survey.NewRegistry(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Decode restores a session from its JSON document and checks that the type
// map still covers exactly the dataset's columns.
func Decode(b []byte) (*Session, error) {
	s := &Session{Groups: survey.NewRegistry()}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.Data == nil {
		return nil, errors.New("parse session: missing dataset")
	}
	if s.Groups == nil {
		s.Groups = survey.NewRegistry()
	}
	if len(s.Types) != len(s.Data.Columns) {
		return nil, fmt.Errorf("parse session: %d types for %d columns", len(s.Types), len(s.Data.Columns))
	}
	for _, c := range s.Data.Columns {
		if _, ok := s.Types[c.Name]; !ok {
			return nil, fmt.Errorf("parse session: column %q has no type", c.Name)
		}
	}
	return s, nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now() }

// OverrideType replaces the type of one column.
func (s *Session) OverrideType(column string, t survey.SemanticType) error {
	if err := s.Types.Override(column, t); err != nil {
		return err
	}
	s.touch()
	return nil
}

// CreateGroup adds a group checked against the current types.
func (s *Session) CreateGroup(kind survey.GroupKind, name string, columns []string) error {
	if err := s.Groups.Create(kind, name, columns, s.Types); err != nil {
		return err
	}
	s.touch()
	return nil
}

// DeleteGroup removes a group.
func (s *Session) DeleteGroup(kind survey.GroupKind, name string) error {
	if err := s.Groups.Delete(kind, name); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ListGroups returns the groups of one kind in creation order.
func (s *Session) ListGroups(kind survey.GroupKind) ([]survey.Group, error) {
	return s.Groups.List(kind)
}

// Columns returns the columns currently typed t, in dataset order. These are
// the candidates offered when building a group of the matching kind.
func (s *Session) Columns(t survey.SemanticType) []string {
	return s.Types.ColumnsOf(t, s.Data.Names())
}

// SegmentCandidates returns the categorical columns.
func (s *Session) SegmentCandidates() []string {
	return s.Columns(survey.Categorical)
}

// Charts aggregates the current state. An empty segment means unsegmented.
func (s *Session) Charts(segment string) (*aggregate.Report, error) {
	return aggregate.Build(s.Data, s.Types, s.Groups, segment)
}

// Summary is the listing view of a session.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Groups    int       `json:"groups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize returns the listing view.
func (s *Session) Summarize() Summary {
	return Summary{
		ID:        s.ID,
		Name:      s.Name,
		Source:    s.Source,
		Rows:      s.Data.Rows(),
		Columns:   len(s.Data.Columns),
		Groups:    s.Groups.Len(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
