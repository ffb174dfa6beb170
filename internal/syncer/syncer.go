// Package syncer drives one-shot and scheduled bookmark sync runs:
// fetch from the remote source, render notes, write them into the
// vault, and record what was written in the state store.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/hierarchy"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notegen"
	"github.com/starford/laguz/internal/state"
	"github.com/starford/laguz/internal/storage"
)

// Fetcher is the remote bookmark source.
type Fetcher interface {
	Collections(ctx context.Context) ([]models.Collection, error)
	Bookmarks(ctx context.Context, collectionID int64) ([]models.Bookmark, error)
}

// Report summarizes one sync run. A record counts in exactly one of
// Created, Updated, Skipped, or Errors.
type Report struct {
	Fetched    int       `json:"fetched"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Status is the externally visible sync state.
type Status struct {
	Running    bool    `json:"running"`
	LastReport *Report `json:"last_report,omitempty"`
}

// Service coordinates sync runs. At most one run executes at a time;
// a second Run while one is in flight fails fast with ErrSyncRunning.
type Service struct {
	fetcher      Fetcher
	vault        storage.Provider
	store        state.Store
	collectionID int64
	logger       *slog.Logger
	notify       func(kind, path string)

	runMu sync.Mutex // held for the duration of a run

	mu      sync.Mutex // guards builder, running, last
	builder *notegen.Builder
	running bool
	last    *Report
}

// New creates a sync service. notify may be nil; when set it receives a
// "created" or "updated" event for every note written.
func New(fetcher Fetcher, vault storage.Provider, store state.Store, tpl notegen.Templates, collectionID int64, logger *slog.Logger, notify func(kind, path string)) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:      fetcher,
		vault:        vault,
		store:        store,
		collectionID: collectionID,
		logger:       logger,
		notify:       notify,
		builder:      notegen.New(tpl, logger),
	}
}

// SetTemplates swaps the template snapshot. The next run picks it up;
// a run already in flight keeps its old builder.
func (s *Service) SetTemplates(tpl notegen.Templates) {
	s.mu.Lock()
	s.builder = notegen.New(tpl, s.logger)
	s.mu.Unlock()
}

// Status reports whether a run is in flight and the last finished report.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Running: s.running, LastReport: s.last}
}

// Run executes one full sync pass. Individual record failures are
// counted and logged but never abort the batch; only fetch failures
// return an error.
func (s *Service) Run(ctx context.Context) (Report, error) {
	if !s.runMu.TryLock() {
		return Report{}, apperr.ErrSyncRunning
	}
	defer s.runMu.Unlock()

	s.mu.Lock()
	s.running = true
	builder := s.builder
	s.mu.Unlock()

	report := Report{StartedAt: time.Now().UTC()}
	defer func() {
		report.FinishedAt = time.Now().UTC()
		s.mu.Lock()
		s.running = false
		r := report
		s.last = &r
		s.mu.Unlock()
	}()

	cols, err := s.fetcher.Collections(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch collections: %w", err)
	}
	tree := hierarchy.Build(cols)

	bms, err := s.fetcher.Bookmarks(ctx, s.collectionID)
	if err != nil {
		return report, fmt.Errorf("fetch bookmarks: %w", err)
	}
	report.Fetched = len(bms)

	for _, bm := range bms {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.syncOne(bm, tree, builder, &report)
	}

	if err := s.store.SetLastSync(report.StartedAt.Format(time.RFC3339)); err != nil {
		s.logger.Warn("persist sync cursor failed", slog.String("error", err.Error()))
	}

	s.logger.Info("sync finished",
		slog.Int("fetched", report.Fetched),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", report.Errors))
	return report, nil
}

// syncOne renders and writes a single bookmark, deciding between
// create, update, and skip by comparing checksums against the state
// store. A render failure still writes the fallback layout but counts
// the record as errored.
func (s *Service) syncOne(bm models.Bookmark, tree *hierarchy.Tree, builder *notegen.Builder, report *Report) {
	content, renderErr := builder.Render(bm, tree)

	var dir, colTitle string
	if bm.Collection != nil {
		dir = tree.Path(bm.Collection.ID)
		colTitle = tree.Title(bm.Collection.ID)
		if colTitle == "" {
			colTitle = bm.Collection.Title
		}
	}
	rel := path.Join(dir, builder.FileName(bm, colTitle)+".md")

	sum := checksum.Sum([]byte(content))
	prev, known, err := s.store.Get(bm.ID)
	if err != nil {
		s.logger.Error("state lookup failed", slog.Int64("bookmark", bm.ID), slog.String("error", err.Error()))
		report.Errors++
		return
	}

	if known && prev.Checksum == sum && prev.Path == rel {
		if ok, err := s.vault.Exists(rel); err == nil && ok {
			report.Skipped++
			return
		}
		// File vanished from the vault; rewrite it below.
	}

	if err := s.vault.Write(rel, []byte(content)); err != nil {
		s.logger.Error("write note failed", slog.Int64("bookmark", bm.ID), slog.String("path", rel), slog.String("error", err.Error()))
		report.Errors++
		return
	}

	row := state.Row{ID: bm.ID, Path: rel, Checksum: sum, LastUpdate: bm.LastUpdate}
	if err := s.store.Upsert(row); err != nil {
		s.logger.Error("state upsert failed", slog.Int64("bookmark", bm.ID), slog.String("error", err.Error()))
		report.Errors++
		return
	}

	if renderErr != nil {
		// The fallback layout is on disk; the record still counts as errored.
		report.Errors++
		return
	}

	kind := "updated"
	if !known {
		kind = "created"
	}
	if kind == "created" {
		report.Created++
	} else {
		report.Updated++
	}
	if s.notify != nil {
		s.notify(kind, rel)
	}
}
