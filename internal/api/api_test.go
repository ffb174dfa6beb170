package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notegen"
	"github.com/starford/laguz/internal/state"
	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/syncer"
)

type stubFetcher struct {
	cols  []models.Collection
	books []models.Bookmark
}

func (f *stubFetcher) Collections(ctx context.Context) ([]models.Collection, error) {
	return f.cols, nil
}

func (f *stubFetcher) Bookmarks(ctx context.Context, collectionID int64) ([]models.Bookmark, error) {
	return f.books, nil
}

type stubStore struct {
	rows   map[int64]state.Row
	cursor string
}

func (m *stubStore) Get(id int64) (state.Row, bool, error) {
	r, ok := m.rows[id]
	return r, ok, nil
}

func (m *stubStore) Upsert(r state.Row) error {
	r.SyncedAt = time.Now()
	m.rows[r.ID] = r
	return nil
}

func (m *stubStore) AllPaths() (map[int64]string, error) {
	out := make(map[int64]string, len(m.rows))
	for id, r := range m.rows {
		out[id] = r.Path
	}
	return out, nil
}

func (m *stubStore) LastSync() (string, error)      { return m.cursor, nil }
func (m *stubStore) SetLastSync(value string) error { m.cursor = value; return nil }
func (m *stubStore) Close() error                   { return nil }

func testService(t *testing.T) *syncer.Service {
	t.Helper()
	vault, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	f := &stubFetcher{
		cols: []models.Collection{{ID: 1, Title: "Inbox"}},
		books: []models.Bookmark{
			{ID: 10, Title: "One", Type: "link", Collection: &models.CollectionRef{ID: 1, Title: "Inbox"}},
		},
	}
	return syncer.New(f, vault, &stubStore{rows: make(map[int64]state.Row)}, notegen.DefaultTemplates(), 0, nil, nil)
}

func TestStatus(t *testing.T) {
	h := NewHandler(testService(t), func() {})
	r := NewRouter(h, false, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st syncer.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Running {
		t.Error("Running = true, want false")
	}
	if st.LastReport != nil {
		t.Errorf("LastReport = %+v, want nil", st.LastReport)
	}
}

func TestSync_Wait(t *testing.T) {
	h := NewHandler(testService(t), func() {})
	r := NewRouter(h, false, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/sync?wait=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report syncer.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Fetched != 1 || report.Created != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestSync_AsyncTriggers(t *testing.T) {
	triggered := false
	h := NewHandler(testService(t), func() { triggered = true })
	r := NewRouter(h, false, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/sync", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if !triggered {
		t.Error("trigger not called")
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := NewHandler(testService(t), func() {})
	r := NewRouter(h, true, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token: status = %d, want 200", w.Code)
	}
}
