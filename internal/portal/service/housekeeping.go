package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
)

// HousekeepingService periodically removes dead sessions and invitations
// whose email already has a profile (left behind when a post-claim delete
// failed).
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Interval time.Duration

	// SessionRetention keeps expired/revoked sessions around for audit
	// before they are purged.
	SessionRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults the interval to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, metrics *telemetry.Metrics, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:            st,
		Logger:           logger,
		Metrics:          metrics,
		Interval:         interval,
		SessionRetention: 24 * time.Hour,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start runs a cleanup immediately and then every Interval. Call Stop to
// shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// HousekeepingReport is what one cleanup pass removed.
type HousekeepingReport struct {
	Sessions    int64
	Invitations int64
}

// RunOnce performs a single pass. Each step is independent; a failure in
// one does not stop the other.
func (s *HousekeepingService) RunOnce(ctx context.Context) HousekeepingReport {
	var report HousekeepingReport

	cutoff := time.Now().UTC().Add(-s.SessionRetention)
	if n, err := s.Store.Sessions().DeleteExpiredSessions(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete expired sessions", slog.Any("error", err))
	} else {
		report.Sessions = n
		s.Metrics.ObserveHousekeeping("sessions", n)
	}

	if n, err := s.Store.Invitations().DeleteClaimedInvitations(ctx); err != nil {
		s.Logger.Error("failed to delete claimed invitations", slog.Any("error", err))
	} else {
		report.Invitations = n
		s.Metrics.ObserveHousekeeping("invitations", n)
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("sessions", report.Sessions),
		slog.Int64("invitations", report.Invitations),
	)
	return report
}
