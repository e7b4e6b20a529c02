package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"valutahub/internal/updater"
	"valutahub/logger"
)

type fakeCoordinator struct {
	cycles int64
	err    error
	block  chan struct{}
}

func (f *fakeCoordinator) Run(ctx context.Context) (*updater.Stats, error) {
	atomic.AddInt64(&f.cycles, 1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &updater.Stats{CycleID: "test", TotalCount: 1, Success: 1}, nil
}

func (f *fakeCoordinator) count() int64 {
	return atomic.LoadInt64(&f.cycles)
}

func TestStartStop(t *testing.T) {
	coordinator := &fakeCoordinator{}
	s := New(coordinator, time.Hour, logger.Logger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("expected running state after start")
	}

	// The first cycle fires immediately; give it time to complete
	deadline := time.Now().Add(2 * time.Second)
	for coordinator.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if coordinator.count() != 1 {
		t.Errorf("expected 1 cycle, got %d", coordinator.count())
	}

	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("expected stopped state after stop")
	}
}

func TestDoubleStartRejected(t *testing.T) {
	s := New(&fakeCoordinator{}, time.Hour, logger.Logger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(time.Second)

	if err := s.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New(&fakeCoordinator{}, time.Hour, logger.Logger())
	if err := s.Stop(time.Second); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestStopInterruptsWait(t *testing.T) {
	coordinator := &fakeCoordinator{}
	s := New(coordinator, time.Hour, logger.Logger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait for the first cycle so the loop is parked in its interval wait
	deadline := time.Now().Add(2 * time.Second)
	for coordinator.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	start := time.Now()
	if err := s.Stop(5 * time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("stop should short-circuit the hour-long wait, took %v", elapsed)
	}
}

func TestBadCycleDoesNotKillLoop(t *testing.T) {
	coordinator := &fakeCoordinator{err: errors.New("cycle exploded")}
	s := New(coordinator, 20*time.Millisecond, logger.Logger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for coordinator.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if coordinator.count() < 2 {
		t.Errorf("loop died after a failing cycle, only %d cycles ran", coordinator.count())
	}
}

func TestStopTimeoutOnBusyCycle(t *testing.T) {
	block := make(chan struct{})
	coordinator := &fakeCoordinator{block: block}
	s := New(coordinator, time.Hour, logger.Logger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The first cycle is blocked; Stop must give up after its timeout
	if err := s.Stop(50 * time.Millisecond); !errors.Is(err, ErrStopTimeout) {
		t.Errorf("expected ErrStopTimeout, got %v", err)
	}
	close(block)
}

func TestRestartAfterStop(t *testing.T) {
	s := New(&fakeCoordinator{}, time.Hour, logger.Logger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
