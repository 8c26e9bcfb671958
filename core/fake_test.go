package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// memStore is an in-memory ScoringStore used to drive the job end to end.
type memStore struct {
	mu      sync.Mutex
	states  []schema.ActivityState
	periods []schema.FlowPeriod
}

var _ ScoringStore = &memStore{} // Compile-time check

func (m *memStore) GetActivityStatesBetween(_ context.Context, start, end time.Time) ([]schema.ActivityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.ActivityState
	for _, s := range m.states {
		if !s.StartTime.Before(start) && !s.EndTime.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetLatestActivityState(_ context.Context) (*schema.ActivityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.states) == 0 {
		return nil, nil
	}
	latest := m.states[0]
	for _, s := range m.states[1:] {
		if s.EndTime.After(latest.EndTime) {
			latest = s
		}
	}
	return &latest, nil
}

func (m *memStore) RecordActivityState(_ context.Context, state schema.ActivityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
	return nil
}

func (m *memStore) GetFlowPeriodsBetween(_ context.Context, start, end time.Time) ([]schema.FlowPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.FlowPeriod
	for _, p := range m.periods {
		if !p.StartTime.Before(start) && !p.EndTime.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetLastFlowPeriod(_ context.Context) (*schema.FlowPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.periods) == 0 {
		return nil, nil
	}
	last := m.periods[len(m.periods)-1]
	return &last, nil
}

func (m *memStore) CreateFlowPeriod(_ context.Context, period schema.FlowPeriod) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	period.ID = int64(len(m.periods) + 1)
	m.periods = append(m.periods, period)
	return period.ID, nil
}

// fill records 30 second buckets covering [start, end).
func (m *memStore) fill(start, end time.Time, kind schema.ActivityKind, switches int) {
	for t := start; t.Before(end); t = t.Add(schema.ActivityStateLength) {
		_ = m.RecordActivityState(context.Background(), schema.ActivityState{
			State:       kind,
			AppSwitches: switches,
			StartTime:   t,
			EndTime:     t.Add(schema.ActivityStateLength),
		})
	}
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
