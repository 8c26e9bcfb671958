package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/dedup"
	"github.com/huangsam/flowstate/internal/schedule"
	"github.com/huangsam/flowstate/schema"
)

// ScoringJobName is the scheduler entry and latch key of the scoring job.
const ScoringJobName = "flow-scoring"

// ErrTickInProgress is returned when a tick is requested while another one is still running.
var ErrTickInProgress = errors.New("scoring tick already in progress")

// ScoringJob periodically scores activity windows and persists them as flow periods.
//
// Each window is resolved ahead of time and scored on the first tick after it
// closes, so a period always covers telemetry that has already been collected.
type ScoringJob struct {
	store          ScoringStore
	scheduler      *schedule.Scheduler
	interval       time.Duration
	streakLookback time.Duration
	now            Clock
	notifier       contract.Notifier
	latch          *dedup.Latch
	started        atomic.Bool

	mu      sync.Mutex
	pending *schema.Window
	gen     uint64
}

// JobOption configures a ScoringJob.
type JobOption func(*ScoringJob)

// WithInterval sets the period length and tick cadence.
func WithInterval(d time.Duration) JobOption {
	return func(j *ScoringJob) {
		if d > 0 {
			j.interval = d
		}
	}
}

// WithStreakLookback sets how far before a window prior periods count toward its streak.
func WithStreakLookback(d time.Duration) JobOption {
	return func(j *ScoringJob) {
		if d > 0 {
			j.streakLookback = d
		}
	}
}

// WithJobClock overrides the job clock.
func WithJobClock(now Clock) JobOption {
	return func(j *ScoringJob) { j.now = now }
}

// WithJobNotifier receives a PeriodScored event for every persisted period.
func WithJobNotifier(n contract.Notifier) JobOption {
	return func(j *ScoringJob) { j.notifier = n }
}

// NewScoringJob creates a job that registers itself on scheduler when started.
func NewScoringJob(store ScoringStore, scheduler *schedule.Scheduler, opts ...JobOption) *ScoringJob {
	j := &ScoringJob{
		store:          store,
		scheduler:      scheduler,
		interval:       schema.DefaultScoringInterval,
		streakLookback: contract.DefaultStreakLookback,
		now:            time.Now,
		latch:          dedup.NewLatch(dedup.WithResetOnCompletion()),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Interval returns the configured period length.
func (j *ScoringJob) Interval() time.Duration {
	return j.interval
}

// Start primes the first window and schedules the recurring tick.
// Calling Start on a running job is a no-op.
func (j *ScoringJob) Start(ctx context.Context) error {
	if !j.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := j.prime(ctx); err != nil {
		// The first tick resolves the window instead.
		contract.LogWarn("failed to resolve first scoring window", err)
	}

	err := j.scheduler.Every(ScoringJobName, j.interval, func() {
		if err := j.Tick(ctx); err != nil {
			if errors.Is(err, ErrTickInProgress) {
				contract.LogInfo("skipping scoring tick: %v", err)
				return
			}
			contract.LogWarn("scoring tick failed", err)
		}
	})
	if err != nil {
		j.started.Store(false)
		return fmt.Errorf("failed to schedule scoring job: %w", err)
	}
	j.scheduler.Start()
	return nil
}

// Stop unschedules the job and forgets the pending window. The job may be started again.
// A tick still in flight finishes, but its next window is discarded.
func (j *ScoringJob) Stop() {
	j.scheduler.Remove(ScoringJobName)
	j.mu.Lock()
	j.pending = nil
	j.gen++
	j.mu.Unlock()
	j.started.Store(false)
}

// Running reports whether Start has been called without a matching Stop.
func (j *ScoringJob) Running() bool {
	return j.started.Load()
}

// Pending returns the window awaiting evaluation, if any.
func (j *ScoringJob) Pending() (schema.Window, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.pending == nil {
		return schema.Window{}, false
	}
	return *j.pending, true
}

// Tick runs one scoring step. Overlapping calls return ErrTickInProgress.
func (j *ScoringJob) Tick(ctx context.Context) error {
	var err error
	if !j.latch.RunOnce(ScoringJobName, func() { err = j.tick(ctx) }) {
		return ErrTickInProgress
	}
	return err
}

func (j *ScoringJob) tick(ctx context.Context) error {
	now := j.now()
	gen := j.generation()

	w, ok := j.Pending()
	if !ok {
		next, err := j.resolve(ctx)
		if err != nil {
			return err
		}
		if !j.setPending(gen, next) {
			return nil
		}
		w = next
	}
	if !Due(w, now) {
		return nil
	}

	period, err := j.Evaluate(ctx, w)
	if err != nil {
		return err
	}

	id, err := j.store.CreateFlowPeriod(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to persist flow period %s - %s: %w",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), err)
	}
	period.ID = id

	j.setPending(gen, ResolveNextWindow(&period, j.interval, now))

	notify(j.notifier, schema.Event{Kind: schema.PeriodScored, At: now, Period: &period})
	return nil
}

// ScoreClosed scores and persists the latest closed window that continues the
// stored history, without waiting for a scheduled tick. It returns false when
// the window after the last stored period is still open.
func (j *ScoringJob) ScoreClosed(ctx context.Context) (schema.FlowPeriod, bool, error) {
	var (
		period schema.FlowPeriod
		stored bool
		err    error
	)
	ran := j.latch.RunOnce(ScoringJobName, func() {
		period, stored, err = j.scoreClosed(ctx)
	})
	if !ran {
		return schema.FlowPeriod{}, false, ErrTickInProgress
	}
	return period, stored, err
}

func (j *ScoringJob) scoreClosed(ctx context.Context) (schema.FlowPeriod, bool, error) {
	now := j.now()
	gen := j.generation()

	last, err := j.store.GetLastFlowPeriod(ctx)
	if err != nil {
		return schema.FlowPeriod{}, false, fmt.Errorf("failed to fetch last flow period: %w", err)
	}
	w, closed := ResolveClosedWindow(last, j.interval, now)
	if !closed {
		return schema.FlowPeriod{}, false, nil
	}

	period, err := j.Evaluate(ctx, w)
	if err != nil {
		return schema.FlowPeriod{}, false, err
	}
	id, err := j.store.CreateFlowPeriod(ctx, period)
	if err != nil {
		return schema.FlowPeriod{}, false, fmt.Errorf("failed to persist flow period %s - %s: %w",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), err)
	}
	period.ID = id

	if _, ok := j.Pending(); ok {
		j.setPending(gen, ResolveNextWindow(&period, j.interval, now))
	}

	notify(j.notifier, schema.Event{Kind: schema.PeriodScored, At: now, Period: &period})
	return period, true, nil
}

// prime resolves the pending window from the last stored period.
func (j *ScoringJob) prime(ctx context.Context) error {
	gen := j.generation()
	w, err := j.resolve(ctx)
	if err != nil {
		return err
	}
	j.setPending(gen, w)
	return nil
}

func (j *ScoringJob) resolve(ctx context.Context) (schema.Window, error) {
	last, err := j.store.GetLastFlowPeriod(ctx)
	if err != nil {
		return schema.Window{}, fmt.Errorf("failed to fetch last flow period: %w", err)
	}
	return ResolveNextWindow(last, j.interval, j.now()), nil
}

func (j *ScoringJob) generation() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.gen
}

// setPending stores w unless Stop ran since gen was read.
func (j *ScoringJob) setPending(gen uint64, w schema.Window) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != gen {
		return false
	}
	j.pending = &w
	return true
}

// Evaluate scores a window without persisting it. Prior periods ending at or
// before the window start, within the streak lookback, feed the flow streak.
func (j *ScoringJob) Evaluate(ctx context.Context, w schema.Window) (schema.FlowPeriod, error) {
	if !w.Valid() {
		return schema.FlowPeriod{}, fmt.Errorf("invalid scoring window %s - %s", w.Start, w.End)
	}

	states, err := j.store.GetActivityStatesBetween(ctx, w.Start, w.End)
	if err != nil {
		return schema.FlowPeriod{}, fmt.Errorf("failed to fetch activity states: %w", err)
	}

	prior, err := j.store.GetFlowPeriodsBetween(ctx, w.Start.Add(-j.streakLookback), w.Start)
	if err != nil {
		return schema.FlowPeriod{}, fmt.Errorf("failed to fetch prior flow periods: %w", err)
	}

	score := algo.AggregateFlowScore(states, algo.MostRecentFirst(prior))
	return schema.NewFlowPeriod(w, score, j.now()), nil
}
