package schema

import (
	"fmt"
	"strings"
	"time"
)

// SessionKind is the closed set of user-initiated session types.
type SessionKind string

// All session kinds supported.
const (
	FocusSession SessionKind = "focus" // default
	BreakSession SessionKind = "break"
)

// ParseSessionKind converts a stored or user-provided value into a SessionKind.
// An empty value defaults to a focus session.
func ParseSessionKind(s string) (SessionKind, error) {
	switch SessionKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", FocusSession:
		return FocusSession, nil
	case BreakSession:
		return BreakSession, nil
	default:
		return "", fmt.Errorf("invalid session kind %q (expected focus or break)", s)
	}
}

// FlowSession is an explicit focus session started by the user.
// EndTime is nil while the session is in progress.
type FlowSession struct {
	ID        string      `json:"id"`
	Kind      SessionKind `json:"kind"`
	StartTime time.Time   `json:"start_time"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
}

// InProgress reports whether the session has not ended yet.
func (s FlowSession) InProgress() bool {
	return s.EndTime == nil
}
