// Package core has the scoring loop, window resolution and presence classification.
package core

import (
	"context"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// ScoringStore is the storage surface the scoring job reads and writes.
type ScoringStore interface {
	contract.ActivityStore
	contract.FlowPeriodStore
}

// StatusStore is the storage surface the status classifier reads.
type StatusStore interface {
	GetInProgressFlowSession(ctx context.Context) (*schema.FlowSession, error)
	GetLatestActivityState(ctx context.Context) (*schema.ActivityState, error)
}

// notify delivers an event when a notifier is configured.
func notify(n contract.Notifier, event schema.Event) {
	if n != nil {
		n(event)
	}
}

// Clock returns the current time. Tests replace it with a fixed clock.
type Clock func() time.Time
