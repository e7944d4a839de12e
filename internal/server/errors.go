package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dekic648/segmentator/internal/aggregate"
	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/logging"
	"github.com/Dekic648/segmentator/internal/store"
	"github.com/Dekic648/segmentator/internal/survey"
	"github.com/Dekic648/segmentator/internal/utils"
)

// ErrorResponse is the JSON body of every failed API call. Code is stable and
// machine-readable; Message is meant for display.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// errBadRequest marks malformed requests (bad JSON, missing upload).
var errBadRequest = errors.New("bad request")

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{store.ErrNotFound, http.StatusNotFound, "session_not_found"},
	{store.ErrExists, http.StatusConflict, "session_exists"},
	{survey.ErrNotFound, http.StatusNotFound, "group_not_found"},
	{survey.ErrDuplicateName, http.StatusConflict, "duplicate_name"},
	{survey.ErrEmptyName, http.StatusBadRequest, "empty_name"},
	{survey.ErrEmptyColumns, http.StatusBadRequest, "empty_columns"},
	{survey.ErrWrongType, http.StatusBadRequest, "wrong_type"},
	{survey.ErrInvalidKind, http.StatusBadRequest, "invalid_kind"},
	{survey.ErrUnknownColumn, http.StatusNotFound, "unknown_column"},
	{survey.ErrInvalidType, http.StatusBadRequest, "invalid_type"},
	{aggregate.ErrInvalidSegment, http.StatusBadRequest, "invalid_segment"},
	{dataset.ErrUnsupported, http.StatusBadRequest, "unsupported_format"},
	{utils.ErrInvalidName, http.StatusBadRequest, "invalid_name"},
	{errBadRequest, http.StatusBadRequest, "bad_request"},
}

// classify maps err to an HTTP status and code. Unknown errors are 500s.
func classify(err error) (int, string) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// respondError logs err and writes the JSON error body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error("request error", "path", r.URL.Path, "method", r.Method, "status", status, "error", msg)
		msg = "internal error"
	} else {
		log.Debug("request rejected", "path", r.URL.Path, "status", status, "code", code, "error", msg)
	}
	respondJSON(w, status, ErrorResponse{Error: code, Message: msg, Code: code})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
