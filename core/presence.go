package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/dedup"
	"github.com/huangsam/flowstate/internal/schedule"
	"github.com/huangsam/flowstate/schema"
)

// PresenceMonitorName is the scheduler entry and latch key of the presence monitor.
const PresenceMonitorName = "presence-poll"

// ErrPollInProgress is returned when a poll is requested while another one is still running.
var ErrPollInProgress = errors.New("presence poll already in progress")

// PresenceMonitor polls the classifier and reports status transitions.
// Repeated transitions into the same status are debounced.
type PresenceMonitor struct {
	classifier *StatusClassifier
	scheduler  *schedule.Scheduler
	interval   time.Duration
	debounce   time.Duration
	debouncer  *dedup.Debouncer
	latch      *dedup.Latch
	now        Clock
	notifier   contract.Notifier

	mu      sync.Mutex
	current schema.PresenceStatus
}

// PresenceOption configures a PresenceMonitor.
type PresenceOption func(*PresenceMonitor)

// WithPollInterval sets the polling cadence.
func WithPollInterval(d time.Duration) PresenceOption {
	return func(m *PresenceMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithStatusDebounce sets the minimum gap between notifications for the same status.
func WithStatusDebounce(d time.Duration) PresenceOption {
	return func(m *PresenceMonitor) { m.debounce = d }
}

// WithPresenceClock overrides the clock used for debouncing and event times.
func WithPresenceClock(now Clock) PresenceOption {
	return func(m *PresenceMonitor) { m.now = now }
}

// WithPresenceNotifier receives a PresenceChanged event for every reported transition.
func WithPresenceNotifier(n contract.Notifier) PresenceOption {
	return func(m *PresenceMonitor) { m.notifier = n }
}

// NewPresenceMonitor creates a monitor that registers itself on scheduler when started.
func NewPresenceMonitor(classifier *StatusClassifier, scheduler *schedule.Scheduler, opts ...PresenceOption) *PresenceMonitor {
	m := &PresenceMonitor{
		classifier: classifier,
		scheduler:  scheduler,
		interval:   contract.DefaultPollInterval,
		debounce:   contract.DefaultStatusDebounce,
		latch:      dedup.NewLatch(dedup.WithResetOnCompletion()),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.debouncer = dedup.NewDebouncerWithClock(m.now)
	return m
}

// Current returns the last reported status, or an empty status before the first report.
func (m *PresenceMonitor) Current() schema.PresenceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Poll classifies once and reports a transition when the status changed.
// It returns the classified status and whether a transition was reported.
// Overlapping calls return the current status with ErrPollInProgress.
func (m *PresenceMonitor) Poll(ctx context.Context) (schema.PresenceStatus, bool, error) {
	var (
		status  schema.PresenceStatus
		changed bool
		err     error
	)
	ran := m.latch.RunOnce(PresenceMonitorName, func() {
		status, err = m.classifier.Classify(ctx)
		if err != nil {
			// A degraded answer must not flip the reported status.
			return
		}

		previous := m.Current()
		if status == previous {
			return
		}
		changed = m.debouncer.Debounce(string(status), m.debounce, func() {
			m.mu.Lock()
			m.current = status
			m.mu.Unlock()
			notify(m.notifier, schema.Event{
				Kind:     schema.PresenceChanged,
				At:       m.now(),
				Status:   status,
				Previous: previous,
			})
		})
	})
	if !ran {
		return m.Current(), false, ErrPollInProgress
	}
	return status, changed, err
}

// Start schedules polling. It polls once immediately so Current is populated.
func (m *PresenceMonitor) Start(ctx context.Context) error {
	if _, _, err := m.Poll(ctx); err != nil {
		contract.LogWarn("presence poll failed", err)
	}

	err := m.scheduler.Every(PresenceMonitorName, m.interval, func() {
		if _, _, err := m.Poll(ctx); err != nil {
			if errors.Is(err, ErrPollInProgress) {
				contract.LogInfo("skipping presence poll: %v", err)
				return
			}
			contract.LogWarn("presence poll failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule presence monitor: %w", err)
	}
	m.scheduler.Start()
	return nil
}

// Stop unschedules polling.
func (m *PresenceMonitor) Stop() {
	m.scheduler.Remove(PresenceMonitorName)
}
