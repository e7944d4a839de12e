package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/logging"
	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/survey"
	"github.com/Dekic648/segmentator/internal/utils"
)

// ColumnView describes one column of a session.
type ColumnView struct {
	Name    string              `json:"name"`
	Type    survey.SemanticType `json:"type"`
	Numeric bool                `json:"numeric"`
	Present int                 `json:"present"`
}

// SessionView is the API shape of a session; the raw data stays server-side.
type SessionView struct {
	session.Summary
	Columns           []ColumnView                      `json:"columns"`
	Groups            map[survey.GroupKind][]survey.Group `json:"groups"`
	SegmentCandidates []string                          `json:"segment_candidates"`
}

// GroupsView lists the groups of one kind and the columns eligible for new ones.
type GroupsView struct {
	Kind       survey.GroupKind `json:"kind"`
	Groups     []survey.Group   `json:"groups"`
	Candidates []string         `json:"candidates"`
}

type overrideRequest struct {
	Type string `json:"type"`
}

type groupRequest struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func newSessionView(s *session.Session) SessionView {
	v := SessionView{
		Summary:           s.Summarize(),
		Groups:            map[survey.GroupKind][]survey.Group{},
		SegmentCandidates: s.SegmentCandidates(),
	}
	for _, c := range s.Data.Columns {
		v.Columns = append(v.Columns, ColumnView{Name: c.Name, Type: s.Types[c.Name], Numeric: c.Numeric, Present: c.Present()})
	}
	for _, k := range survey.Kinds {
		gs, _ := s.ListGroups(k)
		v.Groups[k] = gs
	}
	return v
}

// param returns a decoded URL parameter so names with spaces round-trip.
func param(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	respondJSON(w, http.StatusOK, list)
}

// handleCreateSession accepts a multipart upload with a "file" part and
// optional "name" and "sheet" fields. A numeric sheet selects by 1-based index.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opt.MaxUploadBytes); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: missing file part: %v", errBadRequest, err))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: read upload: %v", errBadRequest, err))
		return
	}

	opt := s.opt.Dataset
	if sheet := strings.TrimSpace(r.FormValue("sheet")); sheet != "" {
		if i, err := strconv.Atoi(sheet); err == nil {
			opt.SheetIndex = i
		} else {
			opt.SheetName = sheet
		}
	}
	ds, err := dataset.Decode(header.Filename, content, opt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = utils.NameFromPath(header.Filename)
	}
	sess := session.New(name, header.Filename, ds, s.opt.Classifier)

	unlock := s.locks.lock(name)
	defer unlock()
	if err := s.store.Create(r.Context(), sess); err != nil {
		respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "session", name).Info("session created",
		"rows", ds.Rows(), "columns", len(ds.Columns))
	respondJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	unlock := s.locks.lock(name)
	defer unlock()
	sess, err := s.store.Get(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	unlock := s.locks.lock(name)
	defer unlock()
	if err := s.store.Delete(r.Context(), name); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate loads a session under its lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func (s *Server) mutate(r *http.Request, fn func(*session.Session) error) (*session.Session, error) {
	name := param(r, "name")
	unlock := s.locks.lock(name)
	defer unlock()
	sess, err := s.store.Get(r.Context(), name)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Server) handleOverrideType(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	column := param(r, "column")
	sess, err := s.mutate(r, func(sess *session.Session) error {
		t, err := survey.ParseSemanticType(req.Type)
		if err != nil {
			return err
		}
		return sess.OverrideType(column, t)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(sess))
}

func groupsView(sess *session.Session, kind survey.GroupKind) (GroupsView, error) {
	gs, err := sess.ListGroups(kind)
	if err != nil {
		return GroupsView{}, err
	}
	return GroupsView{Kind: kind, Groups: gs, Candidates: sess.Columns(kind.Type())}, nil
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	kind, err := survey.ParseGroupKind(param(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	name := param(r, "name")
	unlock := s.locks.lock(name)
	defer unlock()
	sess, err := s.store.Get(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, err := groupsView(sess, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	kind, err := survey.ParseGroupKind(param(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sess, err := s.mutate(r, func(sess *session.Session) error {
		return sess.CreateGroup(kind, req.Name, req.Columns)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	v, err := groupsView(sess, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	kind, err := survey.ParseGroupKind(param(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	group := param(r, "group")
	if _, err := s.mutate(r, func(sess *session.Session) error {
		return sess.DeleteGroup(kind, group)
	}); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCharts returns the chart report as JSON, or as text bar charts when
// format=markdown.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	unlock := s.locks.lock(name)
	defer unlock()
	sess, err := s.store.Get(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rep, err := sess.Charts(r.URL.Query().Get("segment"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, rep.Markdown())
		return
	}
	respondJSON(w, http.StatusOK, rep)
}
