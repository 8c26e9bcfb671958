package schema

import (
	"fmt"
	"strings"
	"time"
)

// PresenceStatus is the coarse state reported to presence consumers.
type PresenceStatus string

// All presence states, lowest priority first.
const (
	StatusOnline  PresenceStatus = "online"
	StatusActive  PresenceStatus = "active"
	StatusFlowing PresenceStatus = "flowing"
)

// ParsePresenceStatus converts a string into a PresenceStatus.
func ParsePresenceStatus(s string) (PresenceStatus, error) {
	switch PresenceStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOnline:
		return StatusOnline, nil
	case StatusActive:
		return StatusActive, nil
	case StatusFlowing:
		return StatusFlowing, nil
	default:
		return "", fmt.Errorf("invalid presence status %q", s)
	}
}

func (p PresenceStatus) String() string {
	return string(p)
}

// EventKind is the closed set of events emitted by the background loops.
type EventKind int

// All event kinds.
const (
	PeriodScored EventKind = iota + 1
	PresenceChanged
)

func (k EventKind) String() string {
	switch k {
	case PeriodScored:
		return "period_scored"
	case PresenceChanged:
		return "presence_changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to notifiers. Period is set for PeriodScored,
// Status and Previous for PresenceChanged.
type Event struct {
	Kind     EventKind      `json:"kind"`
	At       time.Time      `json:"at"`
	Period   *FlowPeriod    `json:"period,omitempty"`
	Status   PresenceStatus `json:"status,omitempty"`
	Previous PresenceStatus `json:"previous,omitempty"`
}
