package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
)

// HousekeepingService periodically deletes expired session rows so the
// sessions table does not grow without bound. Expiry is enforced on read,
// this only reclaims space.
type HousekeepingService struct {
	Sessions store.Sessions
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sessions store.Sessions, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

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

	if err := s.Sessions.DeleteExpiredSessions(ctx); err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
		return
	}
	s.Logger.Debug("deleted expired sessions")
}
