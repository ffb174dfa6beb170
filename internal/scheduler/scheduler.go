// Package scheduler runs periodic sync passes and forwards manual
// trigger requests to the sync service.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/syncer"
)

// Scheduler drives the sync service on a fixed interval. A manual
// trigger channel lets the API request an immediate pass without
// waiting for the next tick.
type Scheduler struct {
	svc      *syncer.Service
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger
	onReport func(syncer.Report)
}

// New creates a scheduler. onReport may be nil; when set it receives
// the report of every completed pass (used to publish SSE events).
func New(svc *syncer.Service, interval time.Duration, logger *slog.Logger, onReport func(syncer.Report)) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		svc:      svc,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
		onReport: onReport,
	}
}

// Trigger requests an immediate sync pass. It never blocks; if a
// trigger is already pending the request is coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes an initial pass and then loops on the ticker and the
// manual trigger until ctx is canceled. It blocks; callers run it in
// an errgroup goroutine.
func (s *Scheduler) Run(ctx context.Context) error {
	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pass(ctx)
		case <-s.trigger:
			s.logger.Info("manual sync triggered")
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	report, err := s.svc.Run(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrSyncRunning) || errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("scheduled sync failed", slog.String("error", err.Error()))
		return
	}
	if s.onReport != nil {
		s.onReport(report)
	}
}
