package contract

import (
	"context"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

var _ Store = &MockStore{} // Compile-time check

// GetActivityStatesBetween implements the ActivityStore interface.
func (m *MockStore) GetActivityStatesBetween(ctx context.Context, start, end time.Time) ([]schema.ActivityState, error) {
	args := m.Called(ctx, start, end)
	states, _ := args.Get(0).([]schema.ActivityState)
	return states, args.Error(1)
}

// GetLatestActivityState implements the ActivityStore interface.
func (m *MockStore) GetLatestActivityState(ctx context.Context) (*schema.ActivityState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*schema.ActivityState)
	return state, args.Error(1)
}

// RecordActivityState implements the ActivityStore interface.
func (m *MockStore) RecordActivityState(ctx context.Context, state schema.ActivityState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// GetFlowPeriodsBetween implements the FlowPeriodStore interface.
func (m *MockStore) GetFlowPeriodsBetween(ctx context.Context, start, end time.Time) ([]schema.FlowPeriod, error) {
	args := m.Called(ctx, start, end)
	periods, _ := args.Get(0).([]schema.FlowPeriod)
	return periods, args.Error(1)
}

// GetLastFlowPeriod implements the FlowPeriodStore interface.
func (m *MockStore) GetLastFlowPeriod(ctx context.Context) (*schema.FlowPeriod, error) {
	args := m.Called(ctx)
	period, _ := args.Get(0).(*schema.FlowPeriod)
	return period, args.Error(1)
}

// CreateFlowPeriod implements the FlowPeriodStore interface.
func (m *MockStore) CreateFlowPeriod(ctx context.Context, period schema.FlowPeriod) (int64, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(int64), args.Error(1)
}

// GetInProgressFlowSession implements the FlowSessionStore interface.
func (m *MockStore) GetInProgressFlowSession(ctx context.Context) (*schema.FlowSession, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(*schema.FlowSession)
	return session, args.Error(1)
}

// StartFlowSession implements the FlowSessionStore interface.
func (m *MockStore) StartFlowSession(ctx context.Context, kind schema.SessionKind, start time.Time) (schema.FlowSession, error) {
	args := m.Called(ctx, kind, start)
	return args.Get(0).(schema.FlowSession), args.Error(1)
}

// EndFlowSession implements the FlowSessionStore interface.
func (m *MockStore) EndFlowSession(ctx context.Context, id string, end time.Time) error {
	args := m.Called(ctx, id, end)
	return args.Error(0)
}

// ListFlowSessions implements the FlowSessionStore interface.
func (m *MockStore) ListFlowSessions(ctx context.Context, since time.Time) ([]schema.FlowSession, error) {
	args := m.Called(ctx, since)
	sessions, _ := args.Get(0).([]schema.FlowSession)
	return sessions, args.Error(1)
}

// GetStatus implements the Store interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
