// Package contract provides interfaces and shared utilities for the internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// ActivityStore reads the telemetry written by the activity collector.
type ActivityStore interface {
	// GetActivityStatesBetween returns states lying fully inside [start, end], oldest first.
	GetActivityStatesBetween(ctx context.Context, start, end time.Time) ([]schema.ActivityState, error)

	// GetLatestActivityState returns the state with the latest end time, or nil when there is none.
	GetLatestActivityState(ctx context.Context) (*schema.ActivityState, error)

	// RecordActivityState stores one bucket. Only the collector and imports write here.
	RecordActivityState(ctx context.Context, state schema.ActivityState) error
}

// FlowPeriodStore persists scored windows.
type FlowPeriodStore interface {
	// GetFlowPeriodsBetween returns periods lying fully inside [start, end] in creation order.
	GetFlowPeriodsBetween(ctx context.Context, start, end time.Time) ([]schema.FlowPeriod, error)

	// GetLastFlowPeriod returns the most recently created period, or nil when there is none.
	GetLastFlowPeriod(ctx context.Context) (*schema.FlowPeriod, error)

	// CreateFlowPeriod stores a new period and returns its ID.
	CreateFlowPeriod(ctx context.Context, period schema.FlowPeriod) (int64, error)
}

// FlowSessionStore manages explicit user-initiated sessions.
type FlowSessionStore interface {
	// GetInProgressFlowSession returns the open session, or nil when there is none.
	GetInProgressFlowSession(ctx context.Context) (*schema.FlowSession, error)

	// StartFlowSession opens a new session.
	StartFlowSession(ctx context.Context, kind schema.SessionKind, start time.Time) (schema.FlowSession, error)

	// EndFlowSession closes the session with the given ID.
	EndFlowSession(ctx context.Context, id string, end time.Time) error

	// ListFlowSessions returns sessions started at or after since, newest first.
	ListFlowSessions(ctx context.Context, since time.Time) ([]schema.FlowSession, error)
}

// Store is the full persistence surface used by the CLI.
type Store interface {
	ActivityStore
	FlowPeriodStore
	FlowSessionStore

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// Notifier receives events from the background loops.
type Notifier func(schema.Event)
