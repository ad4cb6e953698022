// Package scheduler runs the counter housekeeping sweep.
package scheduler

import (
	"context"
	"sync"
	"time"

	"persona/backend/internal/metrics"
	"persona/backend/pkg/logger"
)

// Pruner removes counter records untouched since before.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Scheduler struct {
	pruner     Pruner
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
	stopCh     chan struct{}
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current sweep
	mu         sync.Mutex         // protects cancelFunc
}

// New sweeps every interval, dropping records idle for longer than retention.
func New(pruner Pruner, interval, retention time.Duration) *Scheduler {
	return &Scheduler{
		pruner:    pruner,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "interval", s.interval, "retention", s.retention)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	before := s.now().Add(-s.retention)
	removed, err := s.pruner.Prune(ctx, before)
	metrics.AddPruned(removed)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("counter sweep cancelled")
			return
		}
		logger.Error("counter sweep", "error", err, "removed", removed)
		return
	}
	logger.Debug("counter sweep completed", "removed", removed, "before", before)
}
