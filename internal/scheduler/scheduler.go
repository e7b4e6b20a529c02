// Package scheduler runs refresh cycles in the background at a fixed
// interval until stopped.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"valutahub/internal/updater"
	"valutahub/logger"
)

var (
	ErrAlreadyRunning = errors.New("scheduler is already running")
	ErrNotRunning     = errors.New("scheduler is not running")
	ErrStopTimeout    = errors.New("scheduler did not stop within the timeout")
)

// Coordinator is the refresh cycle the scheduler drives.
type Coordinator interface {
	Run(ctx context.Context) (*updater.Stats, error)
}

// Scheduler owns at most one background goroutine. A cycle in flight always
// runs to completion; only the inter-cycle wait is interruptible.
type Scheduler struct {
	coordinator Coordinator
	interval    time.Duration
	log         *logger.Entry

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func New(coordinator Coordinator, interval time.Duration, log *logger.Log) *Scheduler {
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		log:         log.WithComponent("scheduler"),
	}
}

// Start launches the background loop. A second Start while running is
// rejected.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	s.log.WithFields(logger.Fields{"interval": s.interval.String()}).Info("scheduler started")
	go s.loop(s.stop, s.done)
	return nil
}

func (s *Scheduler) loop(stop, done chan struct{}) {
	defer close(done)
	for {
		s.runCycle()
		select {
		case <-stop:
			return
		case <-time.After(s.interval):
		}
	}
}

// runCycle never lets a bad cycle kill the loop.
func (s *Scheduler) runCycle() {
	stats, err := s.coordinator.Run(context.Background())
	if err != nil {
		s.log.WithError(err).Error("refresh cycle failed")
		return
	}
	s.log.WithFields(logger.Fields{
		"cycle_id": stats.CycleID,
		"total":    stats.TotalCount,
		"success":  stats.Success,
		"failed":   stats.Failed,
	}).Info("refresh cycle complete")
}

// Stop signals the loop to end and waits up to timeout for it to exit. On
// timeout the goroutine is left to finish its in-flight cycle and the error
// is reported rather than crashing anything.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-time.After(timeout):
		s.log.Warn("scheduler loop still busy after stop timeout")
		return ErrStopTimeout
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
