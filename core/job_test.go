package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/schedule"
	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testInterval = 10 * time.Minute

type eventLog struct {
	mu     sync.Mutex
	events []schema.Event
}

func (l *eventLog) notify(e schema.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []schema.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]schema.Event(nil), l.events...)
}

func newTestJob(t *testing.T, store ScoringStore, clock *fakeClock, log *eventLog) *ScoringJob {
	t.Helper()
	sched := schedule.New()
	t.Cleanup(func() { _ = sched.Stop(context.Background()) })
	opts := []JobOption{WithInterval(testInterval), WithJobClock(clock.Now)}
	if log != nil {
		opts = append(opts, WithJobNotifier(log.notify))
	}
	return NewScoringJob(store, sched, opts...)
}

func TestScoringJob_DefersUntilWindowCloses(t *testing.T) {
	store := &memStore{}
	clock := &fakeClock{t: now}
	log := &eventLog{}
	job := newTestJob(t, store, clock, log)
	ctx := context.Background()

	require.NoError(t, job.Tick(ctx))
	w, ok := job.Pending()
	require.True(t, ok)
	assert.True(t, w.Start.Equal(now))
	assert.True(t, w.End.Equal(now.Add(testInterval)))
	assert.Empty(t, store.periods)

	store.fill(now, now.Add(testInterval), schema.Active, 1)

	clock.Advance(testInterval / 2)
	require.NoError(t, job.Tick(ctx))
	assert.Empty(t, store.periods, "window is still open")

	clock.Set(now.Add(testInterval))
	require.NoError(t, job.Tick(ctx))
	require.Len(t, store.periods, 1)

	period := store.periods[0]
	assert.Equal(t, int64(1), period.ID)
	assert.Equal(t, 6.0, period.Score)
	assert.Equal(t, 5.0, period.Details.Activity.Score)
	assert.Equal(t, 20.0, period.Details.Activity.Detail)
	assert.Equal(t, 1.0, period.Details.AppSwitch.Score)
	assert.Equal(t, 0.0, period.Details.FlowStreak.Score)
	assert.True(t, period.CreatedAt.Equal(now.Add(testInterval)))

	next, ok := job.Pending()
	require.True(t, ok)
	assert.True(t, next.Start.Equal(period.EndTime), "windows stay contiguous")

	events := log.all()
	require.Len(t, events, 1)
	assert.Equal(t, schema.PeriodScored, events[0].Kind)
	require.NotNil(t, events[0].Period)
	assert.Equal(t, period.ID, events[0].Period.ID)
}

func TestScoringJob_StreakFromPriorPeriods(t *testing.T) {
	store := &memStore{}
	for i := range 5 {
		start := now.Add(time.Duration(i-5) * testInterval)
		_, _ = store.CreateFlowPeriod(context.Background(), schema.FlowPeriod{
			StartTime: start,
			EndTime:   start.Add(testInterval),
			Score:     6,
			CreatedAt: start.Add(testInterval),
		})
	}
	clock := &fakeClock{t: now}
	job := newTestJob(t, store, clock, nil)
	ctx := context.Background()

	require.NoError(t, job.Tick(ctx))
	w, _ := job.Pending()
	assert.True(t, w.Start.Equal(now), "continues from the last stored period")

	store.fill(now, now.Add(testInterval), schema.Active, 1)
	clock.Advance(testInterval)
	require.NoError(t, job.Tick(ctx))

	require.Len(t, store.periods, 6)
	latest := store.periods[5]
	assert.Equal(t, 10.0, latest.Score)
	assert.Equal(t, 4.0, latest.Details.FlowStreak.Score)
	assert.Equal(t, 5.0, latest.Details.FlowStreak.Detail)
}

func TestScoringJob_StreakBrokenByLowPeriod(t *testing.T) {
	store := &memStore{}
	scores := []float64{9, 9, 4, 7}
	for i, score := range scores {
		start := now.Add(time.Duration(i-len(scores)) * testInterval)
		_, _ = store.CreateFlowPeriod(context.Background(), schema.FlowPeriod{
			StartTime: start, EndTime: start.Add(testInterval), Score: score,
		})
	}
	clock := &fakeClock{t: now}
	job := newTestJob(t, store, clock, nil)

	period, err := job.Evaluate(context.Background(), schema.Window{Start: now, End: now.Add(testInterval)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, period.Details.FlowStreak.Score)
}

func TestScoringJob_GapRestartsAtNow(t *testing.T) {
	store := &memStore{}
	_, _ = store.CreateFlowPeriod(context.Background(), schema.FlowPeriod{
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour - 50*time.Minute), Score: 9,
	})
	clock := &fakeClock{t: now}
	job := newTestJob(t, store, clock, nil)

	require.NoError(t, job.Tick(context.Background()))
	w, ok := job.Pending()
	require.True(t, ok)
	assert.True(t, w.Start.Equal(now))
}

func TestScoringJob_MissedTicksScorePendingThenJump(t *testing.T) {
	store := &memStore{}
	clock := &fakeClock{t: now}
	job := newTestJob(t, store, clock, nil)
	ctx := context.Background()

	require.NoError(t, job.Tick(ctx))
	store.fill(now, now.Add(3*time.Minute), schema.Active, 2)

	wake := now.Add(2 * time.Hour)
	clock.Set(wake)
	require.NoError(t, job.Tick(ctx))

	require.Len(t, store.periods, 1)
	assert.True(t, store.periods[0].StartTime.Equal(now))
	assert.Equal(t, 6.0, store.periods[0].Details.Activity.Detail)

	w, ok := job.Pending()
	require.True(t, ok)
	assert.True(t, w.Start.Equal(wake), "time away is not back-filled")
}

func TestScoringJob_PersistFailureKeepsWindow(t *testing.T) {
	store := &contract.MockStore{}
	store.On("GetLastFlowPeriod", mock.Anything).Return(nil, nil)
	store.On("GetActivityStatesBetween", mock.Anything, mock.Anything, mock.Anything).Return([]schema.ActivityState{}, nil)
	store.On("GetFlowPeriodsBetween", mock.Anything, mock.Anything, mock.Anything).Return([]schema.FlowPeriod{}, nil)
	store.On("CreateFlowPeriod", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full")).Once()
	store.On("CreateFlowPeriod", mock.Anything, mock.Anything).Return(int64(7), nil).Once()

	clock := &fakeClock{t: now}
	job := newTestJob(t, store, clock, nil)
	ctx := context.Background()

	require.NoError(t, job.Tick(ctx))
	clock.Advance(testInterval)

	err := job.Tick(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	w, ok := job.Pending()
	require.True(t, ok)
	assert.True(t, w.Start.Equal(now), "failed window is retried on the next tick")

	clock.Advance(testInterval)
	require.NoError(t, job.Tick(ctx))
	w, _ = job.Pending()
	assert.True(t, w.Start.Equal(now.Add(2*testInterval)), "gap after the retry")
	store.AssertNumberOfCalls(t, "CreateFlowPeriod", 2)
}

func TestScoringJob_FetchFailure(t *testing.T) {
	store := &contract.MockStore{}
	store.On("GetLastFlowPeriod", mock.Anything).Return(nil, errors.New("connection refused"))

	job := newTestJob(t, store, &fakeClock{t: now}, nil)
	err := job.Tick(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch last flow period")

	_, ok := job.Pending()
	assert.False(t, ok)
}

func TestScoringJob_EvaluateRejectsInvalidWindow(t *testing.T) {
	job := newTestJob(t, &memStore{}, &fakeClock{t: now}, nil)
	_, err := job.Evaluate(context.Background(), schema.Window{Start: now, End: now})
	assert.Error(t, err)
}

func TestScoringJob_OverlappingTick(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	store := &contract.MockStore{}
	store.On("GetLastFlowPeriod", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil, nil).Once()

	job := newTestJob(t, store, &fakeClock{t: now}, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- job.Tick(ctx) }()

	<-entered
	assert.ErrorIs(t, job.Tick(ctx), ErrTickInProgress)
	close(release)
	assert.NoError(t, <-done)
}

func TestScoringJob_StartIsIdempotent(t *testing.T) {
	store := &memStore{}
	sched := schedule.New()
	t.Cleanup(func() { _ = sched.Stop(context.Background()) })
	job := NewScoringJob(store, sched, WithInterval(testInterval))
	ctx := context.Background()

	require.NoError(t, job.Start(ctx))
	require.NoError(t, job.Start(ctx))
	assert.True(t, job.Running())
	assert.True(t, sched.Scheduled(ScoringJobName))
	_, ok := job.Pending()
	assert.True(t, ok, "start primes the first window")

	job.Stop()
	assert.False(t, job.Running())
	assert.False(t, sched.Scheduled(ScoringJobName))
	_, ok = job.Pending()
	assert.False(t, ok)

	require.NoError(t, job.Start(ctx))
	assert.True(t, sched.Scheduled(ScoringJobName))
}

func TestScoringJob_Defaults(t *testing.T) {
	job := NewScoringJob(&memStore{}, schedule.New(), WithInterval(-time.Second), WithStreakLookback(0))
	assert.Equal(t, schema.DefaultScoringInterval, job.Interval())
	assert.Equal(t, contract.DefaultStreakLookback, job.streakLookback)
}

func TestScoringJob_ScoreClosed(t *testing.T) {
	testCases := []struct {
		name      string
		lastEnd   *time.Time
		stored    bool
		wantStart time.Time
	}{
		{name: "no history", stored: true, wantStart: now.Add(-testInterval)},
		{name: "contiguous", lastEnd: ptr(now.Add(-testInterval)), stored: true, wantStart: now.Add(-testInterval)},
		{name: "late tick continues", lastEnd: ptr(now.Add(-testInterval - 3*time.Second)), stored: true, wantStart: now.Add(-testInterval - 3*time.Second)},
		{name: "gap restarts", lastEnd: ptr(now.Add(-time.Hour)), stored: true, wantStart: now.Add(-testInterval)},
		{name: "just stored", lastEnd: ptr(now), stored: false},
		{name: "next window open", lastEnd: ptr(now.Add(-time.Minute)), stored: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			if tc.lastEnd != nil {
				_, _ = store.CreateFlowPeriod(context.Background(), schema.FlowPeriod{
					StartTime: tc.lastEnd.Add(-testInterval), EndTime: *tc.lastEnd, Score: 3,
				})
			}
			store.fill(now.Add(-20*time.Minute), now, schema.Active, 1)
			before := len(store.periods)
			log := &eventLog{}
			job := newTestJob(t, store, &fakeClock{t: now}, log)

			period, stored, err := job.ScoreClosed(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.stored, stored)
			if !tc.stored {
				assert.Len(t, store.periods, before)
				assert.Empty(t, log.all())
				return
			}

			assert.True(t, period.StartTime.Equal(tc.wantStart))
			assert.True(t, period.EndTime.Equal(tc.wantStart.Add(testInterval)))
			assert.NotZero(t, period.ID)
			assert.Equal(t, period, store.periods[len(store.periods)-1])
			events := log.all()
			require.Len(t, events, 1)
			assert.Equal(t, schema.PeriodScored, events[0].Kind)
		})
	}
}

func TestScoringJob_ScoreClosedMatchesTick(t *testing.T) {
	last := schema.FlowPeriod{StartTime: now.Add(-2 * testInterval), EndTime: now.Add(-testInterval), Score: 6}

	oneShot := &memStore{periods: []schema.FlowPeriod{last}}
	oneShot.fill(now.Add(-testInterval), now, schema.Active, 1)
	period, stored, err := newTestJob(t, oneShot, &fakeClock{t: now}, nil).ScoreClosed(context.Background())
	require.NoError(t, err)
	require.True(t, stored)

	looped := &memStore{periods: []schema.FlowPeriod{last}}
	looped.fill(now.Add(-testInterval), now, schema.Active, 1)
	clock := &fakeClock{t: now.Add(-testInterval)}
	job := newTestJob(t, looped, clock, nil)
	require.NoError(t, job.Tick(context.Background()))
	clock.Set(now)
	require.NoError(t, job.Tick(context.Background()))
	require.Len(t, looped.periods, 2)

	ticked := looped.periods[1]
	assert.True(t, ticked.StartTime.Equal(period.StartTime))
	assert.True(t, ticked.EndTime.Equal(period.EndTime))
	assert.Equal(t, ticked.Score, period.Score)
	assert.Equal(t, ticked.Details, period.Details)
}

func TestScoringJob_StopDuringTick(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	store := &contract.MockStore{}
	store.On("GetLastFlowPeriod", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil, nil).Once()

	job := newTestJob(t, store, &fakeClock{t: now}, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- job.Tick(ctx) }()

	<-entered
	job.Stop()
	assert.ErrorIs(t, job.Tick(ctx), ErrTickInProgress, "stop does not release a running tick")

	close(release)
	require.NoError(t, <-done)
	_, ok := job.Pending()
	assert.False(t, ok, "a tick finishing after stop leaves no window behind")
}

func ptr[T any](v T) *T { return &v }
