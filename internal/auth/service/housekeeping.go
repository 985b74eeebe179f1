package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/metrics"
)

// SessionSweeper removes expired sessions. *session.Store satisfies it.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// HousekeepingService periodically deletes sessions whose expiry has passed.
// Expired sessions are already ignored on lookup; this only keeps the
// session table from growing without bound.
type HousekeepingService struct {
	Sessions SessionSweeper
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  metrics.Recorder

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	sessions SessionSweeper,
	logger *slog.Logger,
	interval time.Duration,
	rec metrics.Recorder,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		Metrics:  rec,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// RunOnce performs a single sweep and returns how many sessions it removed.
func (s *HousekeepingService) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.Sessions.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	s.Metrics.SessionsSwept(n)
	return n, nil
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	n, err := s.RunOnce(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "sessions_deleted", n)
}
