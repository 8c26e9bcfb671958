// Package dedup guards tasks against duplicate execution.
//
// Latch lets only the first caller for an id proceed. Debouncer lets a task
// run at most once per interval. Both are keyed by arbitrary string ids and
// own their state; there are no package-level maps.
package dedup

import (
	"sync"
	"time"
)

// Latch marks task ids as running. By default the mark is sticky: once a task
// has run under an id, later calls with that id are no-ops until Reset.
// WithResetOnCompletion clears the mark when the task returns instead.
type Latch struct {
	mu          sync.Mutex
	running     map[string]struct{}
	resetOnDone bool
}

// LatchOption configures a Latch.
type LatchOption func(*Latch)

// WithResetOnCompletion clears an id's mark once its task returns, so the
// latch only rejects calls that overlap an in-flight run.
func WithResetOnCompletion() LatchOption {
	return func(l *Latch) {
		l.resetOnDone = true
	}
}

// NewLatch creates an empty latch.
func NewLatch(opts ...LatchOption) *Latch {
	l := &Latch{running: make(map[string]struct{})}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOnce executes fn unless a task is already marked under id.
// It reports whether fn was executed.
func (l *Latch) RunOnce(id string, fn func()) bool {
	l.mu.Lock()
	if _, ok := l.running[id]; ok {
		l.mu.Unlock()
		return false
	}
	l.running[id] = struct{}{}
	l.mu.Unlock()

	if l.resetOnDone {
		defer l.Reset(id)
	}
	fn()
	return true
}

// Running reports whether id is currently marked.
func (l *Latch) Running(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.running[id]
	return ok
}

// Reset clears the mark for id.
func (l *Latch) Reset(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.running, id)
}

// ResetAll clears every mark.
func (l *Latch) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.running)
}

// Debouncer skips calls that arrive sooner than a minimum interval after the
// last run under the same id.
type Debouncer struct {
	mu      sync.Mutex
	lastRun map[string]time.Time
	now     func() time.Time
}

// NewDebouncer creates a debouncer using the wall clock.
func NewDebouncer() *Debouncer {
	return NewDebouncerWithClock(time.Now)
}

// NewDebouncerWithClock creates a debouncer reading time from now.
func NewDebouncerWithClock(now func() time.Time) *Debouncer {
	return &Debouncer{
		lastRun: make(map[string]time.Time),
		now:     now,
	}
}

// Debounce runs fn if at least minInterval has passed since the last run under
// id. The timestamp is recorded before fn executes. It reports whether fn ran.
func (d *Debouncer) Debounce(id string, minInterval time.Duration, fn func()) bool {
	d.mu.Lock()
	now := d.now()
	if last, ok := d.lastRun[id]; ok && now.Sub(last) < minInterval {
		d.mu.Unlock()
		return false
	}
	d.lastRun[id] = now
	d.mu.Unlock()

	fn()
	return true
}

// LastRun returns when id last ran and whether it has run at all.
func (d *Debouncer) LastRun(id string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.lastRun[id]
	return t, ok
}

// Reset forgets the last run of id.
func (d *Debouncer) Reset(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.lastRun, id)
}
