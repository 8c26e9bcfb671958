package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// StatusClassifier derives the presence status from the open session and the latest activity.
type StatusClassifier struct {
	store        StatusStore
	now          Clock
	activeWindow time.Duration
}

// StatusOption configures a StatusClassifier.
type StatusOption func(*StatusClassifier)

// WithStatusClock overrides the classifier clock.
func WithStatusClock(now Clock) StatusOption {
	return func(c *StatusClassifier) { c.now = now }
}

// WithActiveWindow sets how recent the latest activity must be to count as active.
func WithActiveWindow(d time.Duration) StatusOption {
	return func(c *StatusClassifier) {
		if d > 0 {
			c.activeWindow = d
		}
	}
}

// NewStatusClassifier creates a classifier reading from store.
func NewStatusClassifier(store StatusStore, opts ...StatusOption) *StatusClassifier {
	c := &StatusClassifier{store: store, now: time.Now, activeWindow: schema.ActiveRecency}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the first matching status in priority order:
// flowing while a session is in progress, active when the latest activity
// state ended within the active window, online otherwise.
//
// Storage failures degrade the answer instead of aborting it. The returned
// status reflects whatever could be read, and the error joins every failure.
func (c *StatusClassifier) Classify(ctx context.Context) (schema.PresenceStatus, error) {
	var errs []error

	session, err := c.store.GetInProgressFlowSession(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to fetch in-progress session: %w", err))
	} else if session != nil {
		return schema.StatusFlowing, nil
	}

	latest, err := c.store.GetLatestActivityState(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to fetch latest activity: %w", err))
	} else if latest != nil && c.now().Sub(latest.EndTime) <= c.activeWindow {
		return schema.StatusActive, errors.Join(errs...)
	}

	return schema.StatusOnline, errors.Join(errs...)
}
