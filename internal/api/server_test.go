package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetrias/techtrack/internal/store"
	"github.com/fetrias/techtrack/internal/tech"
	"github.com/fetrias/techtrack/internal/testutil"
	"github.com/fetrias/techtrack/internal/tracker"
)

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	t      *testing.T
	medium *testutil.FailingMedium
	repo   *tracker.Repository
	srv    *Server
}

// newFixture serves a repository seeded with the default technologies.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewSteppingClock(now, time.Millisecond)

	medium := testutil.NewFailingMedium()
	repo := tracker.New(store.NewAdapter(medium, store.DefaultCollectionKey),
		tracker.WithClock(clock), tracker.WithLogger(logger))
	_, err := repo.Load(context.Background())
	require.NoError(t, err)

	srv := New(repo,
		WithClock(clock),
		WithLogger(logger),
		WithTraceIDs(testutil.NewFixedTraceIDGenerator("trace-1")),
		WithCORSOrigins("http://localhost:5173"),
	)
	return &fixture{t: t, medium: medium, repo: repo, srv: srv}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"count":3}`, w.Body.String())
	assert.Equal(t, "trace-1", w.Header().Get(traceHeader))
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(traceHeader, "from-client")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "from-client", w.Header().Get(traceHeader))
}

func TestList(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/api/technologies", []string{"React", "Node.js", "TypeScript"}},
		{"/api/technologies?status=completed", []string{"TypeScript"}},
		{"/api/technologies?status=IN_PROGRESS", []string{"React"}},
		{"/api/technologies?q=script", []string{"Node.js", "TypeScript"}},
		{"/api/technologies?q=script&status=completed", []string{"TypeScript"}},
		{"/api/technologies?q=cobol", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Technologies []tech.Record `json:"technologies"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			got := make([]string, len(resp.Technologies))
			for i, r := range resp.Technologies {
				got[i] = r.Title
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_BadStatus(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/technologies?status=done", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E_VALIDATION", decode(t, w)["code"])
}

func TestGet(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/technologies/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "React", decode(t, w)["technology"].(map[string]any)["title"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/technologies/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/technologies/abc", "").Code)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/technologies", `{"title":"  Go  ","description":"Systems language","deadline":"2027-01-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rec := decode(t, w)["technology"].(map[string]any)
	assert.Equal(t, "Go", rec["title"])
	assert.Equal(t, "not-started", rec["status"])
	assert.Equal(t, "2027-01-01", rec["deadline"])
	assert.Equal(t, 4, f.repo.Len())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/technologies", `{"title":"G","description":"Systems language"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "E_VALIDATION", body["code"])
	assert.Equal(t, "title", body["field"])

	w = f.do(http.MethodPost, "/api/technologies", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 3, f.repo.Len())
}

func TestCreate_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.medium.FailWrites(true)

	w := f.do(http.MethodPost, "/api/technologies", `{"title":"Go","description":"Systems language"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "E_PERSISTENCE", body["code"])
	assert.NotContains(t, body["error"], "injected", "storage details are not exposed")
	assert.Equal(t, 3, f.repo.Len())
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	before, _ := f.repo.Get(2)

	w := f.do(http.MethodPatch, "/api/technologies/2", `{"status":"completed","notes":"done with the basics"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after, _ := f.repo.Get(2)
	assert.Equal(t, tech.StatusCompleted, after.Status)
	assert.Equal(t, "done with the basics", after.Notes)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPatch, "/api/technologies/99", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPatch, "/api/technologies/2", `{"status":"finished"}`).Code)
}

func TestBulkUpdate(t *testing.T) {
	f := newFixture(t)
	untouched, _ := f.repo.Get(2)

	w := f.do(http.MethodPost, "/api/technologies/bulk", `{"ids":[1,3],"updates":{"status":"on-hold"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true,"updated":2}`, w.Body.String())

	r1, _ := f.repo.Get(1)
	r2, _ := f.repo.Get(2)
	r3, _ := f.repo.Get(3)
	assert.Equal(t, tech.StatusOnHold, r1.Status)
	assert.Equal(t, untouched, r2)
	assert.Equal(t, tech.StatusOnHold, r3.Status)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/technologies/bulk", `{"ids":[]}`).Code)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/technologies/1", "").Code)
	assert.False(t, f.repo.Has(1))
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/technologies/1", "").Code)
}

func TestImportAndExport(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="technologies-backup-2026-10-15.json"`, w.Header().Get("Content-Disposition"))
	export := w.Body.String()
	assert.True(t, strings.HasPrefix(export, "[\n  {"))

	// Re-importing an export adds nothing.
	w = f.do(http.MethodPost, "/api/import", `{"technologies":`+export+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode(t, w)["report"].(map[string]any)
	assert.Equal(t, float64(3), report["skipped"])
	assert.Empty(t, report["added"])

	w = f.do(http.MethodPost, "/api/import", `{"technologies":[{"title":"Go","description":"Systems language"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, f.repo.Len())
}

func TestImport_Invalid(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/import", `{"technologies":[{"title":"Go"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "E_VALIDATION", body["code"])
	assert.Equal(t, "description", body["field"])

	w = f.do(http.MethodPost, "/api/import", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 3, f.repo.Len())
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	stats := decode(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(33), stats["percents"].(map[string]any)["completed"])
}

func TestUpcoming(t *testing.T) {
	f := newFixture(t)
	deadline := "2026-10-20"
	_, err := f.repo.Update(context.Background(), 1, tech.Patch{Deadline: &deadline})
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/api/upcoming?days=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["technologies"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "React", items[0].(map[string]any)["title"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/upcoming?days=soon", "").Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/technologies", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoRoute(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "E_NOT_FOUND", decode(t, w)["code"])
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
