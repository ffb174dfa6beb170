package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notegen"
	"github.com/starford/laguz/internal/state"
	"github.com/starford/laguz/internal/storage"
)

type fakeFetcher struct {
	cols    []models.Collection
	books   []models.Bookmark
	colsErr error
	started chan struct{} // closed when Bookmarks is entered, if set
	release chan struct{} // Bookmarks blocks until closed, if set
}

func (f *fakeFetcher) Collections(ctx context.Context) ([]models.Collection, error) {
	return f.cols, f.colsErr
}

func (f *fakeFetcher) Bookmarks(ctx context.Context, collectionID int64) ([]models.Bookmark, error) {
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.release != nil {
		<-f.release
	}
	return f.books, nil
}

type memStore struct {
	rows   map[int64]state.Row
	cursor string
}

func newMemStore() *memStore { return &memStore{rows: make(map[int64]state.Row)} }

func (m *memStore) Get(id int64) (state.Row, bool, error) {
	r, ok := m.rows[id]
	return r, ok, nil
}

func (m *memStore) Upsert(r state.Row) error {
	r.SyncedAt = time.Now()
	m.rows[r.ID] = r
	return nil
}

func (m *memStore) AllPaths() (map[int64]string, error) {
	out := make(map[int64]string, len(m.rows))
	for id, r := range m.rows {
		out[id] = r.Path
	}
	return out, nil
}

func (m *memStore) LastSync() (string, error)      { return m.cursor, nil }
func (m *memStore) SetLastSync(value string) error { m.cursor = value; return nil }
func (m *memStore) Close() error                   { return nil }

func testVault(t *testing.T) (*storage.FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func testBookmarks() ([]models.Collection, []models.Bookmark) {
	cols := []models.Collection{
		{ID: 1, Title: "Inbox"},
		{ID: 2, Title: "Reading", Parent: 1},
	}
	books := []models.Bookmark{
		{ID: 10, Title: "First", Link: "https://a.example", Type: "link",
			Created: "2024-03-05T10:00:00Z", Collection: &models.CollectionRef{ID: 2, Title: "Reading"}},
		{ID: 11, Title: "Second", Link: "https://b.example", Type: "article",
			Created: "2024-03-06T10:00:00Z", Collection: &models.CollectionRef{ID: 1, Title: "Inbox"}},
	}
	return cols, books
}

func newService(t *testing.T, f Fetcher, notify func(kind, path string)) (*Service, string, *memStore) {
	t.Helper()
	vault, dir := testVault(t)
	store := newMemStore()
	svc := New(f, vault, store, notegen.DefaultTemplates(), 0, nil, notify)
	return svc, dir, store
}

func TestRun_CreatesNotes(t *testing.T) {
	cols, books := testBookmarks()
	var events []string
	svc, dir, store := newService(t, &fakeFetcher{cols: cols, books: books}, func(kind, path string) {
		events = append(events, kind+":"+path)
	})

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Fetched != 2 || report.Created != 2 || report.Updated != 0 || report.Errors != 0 {
		t.Errorf("report = %+v", report)
	}

	want := filepath.Join(dir, "Inbox", "Reading", "First.md")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("note not written: %v", err)
	}
	if !strings.Contains(string(data), "title: \"First\"") {
		t.Errorf("note content missing title: %q", data)
	}

	if len(events) != 2 || !strings.HasPrefix(events[0], "created:") {
		t.Errorf("events = %v", events)
	}
	if store.cursor == "" {
		t.Error("sync cursor not persisted")
	}
}

func TestRun_SecondRunSkips(t *testing.T) {
	cols, books := testBookmarks()
	svc, _, _ := newService(t, &fakeFetcher{cols: cols, books: books}, nil)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Skipped != 2 || report.Created != 0 || report.Updated != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_UpdatesOnChange(t *testing.T) {
	cols, books := testBookmarks()
	f := &fakeFetcher{cols: cols, books: books}
	svc, _, _ := newService(t, f, nil)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	f.books[0].Excerpt = "now with an excerpt"
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Updated != 1 || report.Skipped != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_RewritesMissingFile(t *testing.T) {
	cols, books := testBookmarks()
	svc, dir, _ := newService(t, &fakeFetcher{cols: cols, books: books}, nil)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	target := filepath.Join(dir, "Inbox", "Reading", "First.md")
	if err := os.Remove(target); err != nil {
		t.Fatalf("remove: %v", err)
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Updated != 1 {
		t.Errorf("report = %+v, want one rewrite", report)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("note not rewritten: %v", err)
	}
}

func TestRun_RenderFailureWritesFallback(t *testing.T) {
	cols, books := testBookmarks()
	svc, dir, _ := newService(t, &fakeFetcher{cols: cols, books: books}, nil)

	tpl := notegen.DefaultTemplates()
	tpl.Default = "{{#if title}}unterminated"
	svc.SetTemplates(tpl)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Errors != 2 || report.Created != 0 {
		t.Errorf("report = %+v", report)
	}

	// Fallback layout must still be on disk.
	data, err := os.ReadFile(filepath.Join(dir, "Inbox", "Reading", "First.md"))
	if err != nil {
		t.Fatalf("fallback note missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "# First") {
		t.Errorf("fallback content = %q", data)
	}
}

func TestRun_FetchErrorAborts(t *testing.T) {
	svc, _, _ := newService(t, &fakeFetcher{colsErr: errors.New("boom")}, nil)
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestRun_SingleFlight(t *testing.T) {
	cols, books := testBookmarks()
	started := make(chan struct{})
	release := make(chan struct{})
	svc, _, _ := newService(t, &fakeFetcher{cols: cols, books: books, started: started, release: release}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()

	<-started
	if !svc.Status().Running {
		t.Error("Status.Running = false during run")
	}
	if _, err := svc.Run(context.Background()); !errors.Is(err, apperr.ErrSyncRunning) {
		t.Errorf("concurrent Run error = %v, want ErrSyncRunning", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := svc.Status()
	if st.Running {
		t.Error("Status.Running = true after run")
	}
	if st.LastReport == nil || st.LastReport.Created != 2 {
		t.Errorf("LastReport = %+v", st.LastReport)
	}
}
