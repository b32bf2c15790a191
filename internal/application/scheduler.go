package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"eventboard/internal/ports/input"
)

const (
	DefaultSweepInterval  = 60 * time.Second
	DefaultReloadInterval = 15 * time.Minute
)

// Scheduler owns the periodic reload and sweep loops. Stop cancels both and
// waits for them, so a restarted bot never runs two generations of loops.
type Scheduler struct {
	maintenance input.MaintenanceUseCase
	sweepEvery  time.Duration
	reloadEvery time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewScheduler(maintenance input.MaintenanceUseCase, sweepEvery, reloadEvery time.Duration) *Scheduler {
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepInterval
	}
	if reloadEvery <= 0 {
		reloadEvery = DefaultReloadInterval
	}
	return &Scheduler{maintenance: maintenance, sweepEvery: sweepEvery, reloadEvery: reloadEvery}
}

var errSchedulerRunning = errors.New("scheduler already running")

// Start launches the loops. They run until Stop or until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return errSchedulerRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = g

	g.Go(func() error {
		return every(ctx, s.reloadEvery, func(ctx context.Context) {
			drifted, err := s.maintenance.Reload(ctx)
			if err != nil {
				log.Printf("❌ Rechargement du cache: %v", err)
			}
			if drifted > 0 {
				log.Printf("⚠️ Cache rechargé, %d guilde(s) divergente(s)", drifted)
			}
		})
	})
	g.Go(func() error {
		return every(ctx, s.sweepEvery, func(ctx context.Context) {
			report, err := s.maintenance.SweepAll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("❌ Maintenance: %v", err)
			}
			if report.Recreated+report.Deleted+report.RemindersSent+report.MembersPruned+report.Failures > 0 {
				log.Printf("🧹 Maintenance: %d vérifié(s), %d recréé(s), %d supprimé(s), %d rappel(s), %d membre(s) retiré(s), %d échec(s)",
					report.Checked, report.Recreated, report.Deleted, report.RemindersSent, report.MembersPruned, report.Failures)
			}
		})
	})
	return nil
}

// Stop cancels the loops and waits for the current tick to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()
	if g == nil {
		return nil
	}
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func every(ctx context.Context, interval time.Duration, tick func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(ctx)
		}
	}
}
