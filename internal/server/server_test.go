package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dekic648/segmentator/internal/aggregate"
	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/server"
	"github.com/Dekic648/segmentator/internal/store"
	"github.com/Dekic648/segmentator/internal/survey"
)

const surveyCSV = "region,sat,web,app,grid 1,grid 2\n" +
	"North,5,Web,,4,5\n" +
	"South,3,,App,2,3\n" +
	"North,7,Web,App,,1\n" +
	",2,Web,,3,3\n"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	srv := server.New(st, server.Options{
		Classifier:  survey.DefaultClassifierOptions(),
		Dataset:     dataset.DefaultOptions(),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return srv.Handler()
}

func upload(t *testing.T, h http.Handler, filename, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	if name != "" {
		require.NoError(t, mw.WriteField("name", name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e.Code
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := upload(t, h, "wave1.csv", "", surveyCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view server.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "wave1", view.Name)
	assert.Equal(t, 4, view.Rows)
	require.Len(t, view.Columns, 6)
	assert.Equal(t, survey.Categorical, view.Columns[0].Type)
	assert.Equal(t, survey.Likert, view.Columns[1].Type)

	rec = upload(t, h, "other.csv", "wave1", surveyCSV)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "session_exists", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"wave1"`)

	rec = do(t, h, http.MethodDelete, "/api/sessions/wave1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/sessions/wave1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", errorCode(t, rec))
}

func TestGroupsAndCharts(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, upload(t, h, "wave1.csv", "", surveyCSV).Code)

	for _, col := range []string{"web", "app"} {
		rec := do(t, h, http.MethodPut, "/api/sessions/wave1/types/"+col, map[string]string{"type": "checkbox"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	for _, col := range []string{"grid%201", "grid%202"} {
		rec := do(t, h, http.MethodPut, "/api/sessions/wave1/types/"+col, map[string]string{"type": "matrix"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/api/sessions/wave1/groups/checkbox", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var gv server.GroupsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gv))
	assert.Equal(t, []string{"web", "app"}, gv.Candidates)

	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/checkbox", map[string]any{"name": "Channels", "columns": []string{"web", "app"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/checkbox", map[string]any{"name": "Channels", "columns": []string{"web"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_name", errorCode(t, rec))
	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/matrix", map[string]any{"name": "Bad", "columns": []string{"sat"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "wrong_type", errorCode(t, rec))
	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/matrix", map[string]any{"name": "Grid", "columns": []string{"grid 1", "grid 2"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/sessions/wave1/charts?segment=region", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep aggregate.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	var titles []string
	for _, c := range rep.Charts {
		titles = append(titles, c.Title)
	}
	assert.Contains(t, titles, "sat - region: North")
	assert.Contains(t, titles, "Channels - % Selected (region: South)")
	assert.Contains(t, titles, "Grid - Avg Scores (region: North)")

	rec = do(t, h, http.MethodGet, "/api/sessions/wave1/charts?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "[CHARTS]"))

	rec = do(t, h, http.MethodGet, "/api/sessions/wave1/charts?segment=sat", nil)
	assert.Equal(t, "invalid_segment", errorCode(t, rec))

	rec = do(t, h, http.MethodDelete, "/api/sessions/wave1/groups/checkbox/Channels", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/sessions/wave1/groups/checkbox/Channels", nil)
	assert.Equal(t, "group_not_found", errorCode(t, rec))
}

func TestRequestValidation(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, upload(t, h, "wave1.csv", "", surveyCSV).Code)

	rec := do(t, h, http.MethodPut, "/api/sessions/wave1/types/sat", map[string]string{"type": "ranking"})
	assert.Equal(t, "invalid_type", errorCode(t, rec))
	rec = do(t, h, http.MethodPut, "/api/sessions/wave1/types/nope", map[string]string{"type": "text"})
	assert.Equal(t, "unknown_column", errorCode(t, rec))
	rec = do(t, h, http.MethodGet, "/api/sessions/wave1/groups/radio", nil)
	assert.Equal(t, "invalid_kind", errorCode(t, rec))
	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/checkbox", map[string]any{"name": " ", "columns": []string{}})
	assert.Equal(t, "empty_name", errorCode(t, rec))
	rec = do(t, h, http.MethodPost, "/api/sessions/wave1/groups/checkbox", map[string]any{"name": "x", "bogus": 1})
	assert.Equal(t, "bad_request", errorCode(t, rec))

	rec = upload(t, h, "report.pdf", "", "%PDF")
	assert.Equal(t, "unsupported_format", errorCode(t, rec))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
