// Package schedule owns the background timers of the process.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// Scheduler runs named tasks on fixed intervals. Panics inside a task are
// recovered so one failing run never stops later runs.
type Scheduler struct {
	mu       sync.Mutex
	cron     *rcron.Cron
	entryMap map[string]rcron.EntryID // task name -> cron entry ID
	started  bool
}

// New creates a stopped scheduler.
func New() *Scheduler {
	return &Scheduler{
		cron:     rcron.New(rcron.WithChain(rcron.Recover(rcron.DefaultLogger))),
		entryMap: make(map[string]rcron.EntryID),
	}
}

// Every registers fn to run every interval under name. Registering a name
// twice is an error. Intervals below one second are rejected.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) error {
	if interval < time.Second {
		return fmt.Errorf("interval for %s must be at least 1s (received %s)", name, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entryMap[name]; ok {
		return fmt.Errorf("task %s is already scheduled", name)
	}
	id := s.cron.Schedule(rcron.Every(interval), rcron.FuncJob(fn))
	s.entryMap[name] = id
	return nil
}

// Remove unregisters the task under name. It reports whether it existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entryMap[name]
	if !ok {
		return false
	}
	s.cron.Remove(id)
	delete(s.entryMap, name)
	return true
}

// Scheduled reports whether a task is registered under name.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entryMap[name]
	return ok
}

// Next returns the next activation time of name.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entryMap[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start begins firing tasks in the background. It is a no-op when already started.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop halts the timers and waits for running tasks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for running tasks: %w", ctx.Err())
	}
}
