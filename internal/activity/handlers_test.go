package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo Repository) (chi.Router, *Service) {
	svc := newTestActivityService(repo, nil)

	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/api/logs/action/{action}", h.HandleListByAction)
	r.Get("/api/logs/user-delete", h.HandleUserDeletes)
	r.Get("/api/logs/user-download", h.HandleUserDownloads)
	r.Delete("/api/logs/{logId}", h.HandleDeleteLog)
	return r, svc
}

func doRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeItems(t *testing.T, rr *httptest.ResponseRecorder) []*LogEntry {
	t.Helper()
	var body struct {
		Items []*LogEntry `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Items
}

func TestHandleListByAction(t *testing.T) {
	repo := &memRepository{}
	router, svc := newTestRouter(repo)

	require.NoError(t, svc.Record(context.Background(), downloadEntry()))

	rr := doRequest(router, http.MethodGet, "/api/logs/action/DOWNLOAD")
	require.Equal(t, http.StatusOK, rr.Code)

	items := decodeItems(t, rr)
	require.Len(t, items, 1)
	assert.Equal(t, ActionDownload, items[0].Action)
}

func TestHandleListByActionInvalid(t *testing.T) {
	router, _ := newTestRouter(&memRepository{})

	rr := doRequest(router, http.MethodGet, "/api/logs/action/UPLOAD")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "action must be DOWNLOAD or DELETE", body["error"])
}

func TestHandleUserDeletes(t *testing.T) {
	repo := &memRepository{}
	router, svc := newTestRouter(repo)

	deleted := downloadEntry()
	deleted.Action = ActionDelete
	require.NoError(t, svc.Record(context.Background(), deleted))

	rr := doRequest(router, http.MethodGet, "/api/logs/user-delete?uploaderEmail=alice@example.com")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeItems(t, rr), 1)
}

func TestHandleUserDeletesMissingEmail(t *testing.T) {
	router, _ := newTestRouter(&memRepository{})

	rr := doRequest(router, http.MethodGet, "/api/logs/user-delete")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleUserDownloads(t *testing.T) {
	repo := &memRepository{}
	router, svc := newTestRouter(repo)

	require.NoError(t, svc.Record(context.Background(), downloadEntry()))

	rr := doRequest(router, http.MethodGet, "/api/logs/user-download?userEmail=bob@example.com")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeItems(t, rr), 1)
}

func TestHandleUserDownloadsMissingEmail(t *testing.T) {
	router, _ := newTestRouter(&memRepository{})

	rr := doRequest(router, http.MethodGet, "/api/logs/user-download")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDeleteLog(t *testing.T) {
	repo := &memRepository{}
	router, svc := newTestRouter(repo)

	require.NoError(t, svc.Record(context.Background(), downloadEntry()))
	logID := repo.entries[0].LogID

	rr := doRequest(router, http.MethodDelete, "/api/logs/"+logID)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "log entry deleted", body["message"])
	assert.Empty(t, repo.entries)
}
