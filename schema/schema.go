// Package schema has the models and constants shared by all parts of flowstate.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// ActivityKind is the state of a single activity bucket.
type ActivityKind string

// Activity kinds written by the collector.
const (
	Active   ActivityKind = "active"
	Inactive ActivityKind = "inactive"
)

// ParseActivityKind converts a stored or user-provided value into an ActivityKind.
func ParseActivityKind(s string) (ActivityKind, error) {
	switch ActivityKind(strings.ToLower(strings.TrimSpace(s))) {
	case Active:
		return Active, nil
	case Inactive:
		return Inactive, nil
	default:
		return "", fmt.Errorf("invalid activity state %q (expected active or inactive)", s)
	}
}

// ActivityState is a fixed-length bucket of telemetry produced by the collector.
// It is immutable once written.
type ActivityState struct {
	State       ActivityKind `json:"state"`
	AppSwitches int          `json:"app_switches"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
}

// IsActive reports whether the bucket recorded user activity.
func (a ActivityState) IsActive() bool {
	return a.State == Active
}

// Window is a transient time range under evaluation.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Valid reports whether the window ends strictly after it starts.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// SubScore is one component of a flow score with the raw number it was derived from.
type SubScore struct {
	Score  float64 `json:"score"`
	Detail float64 `json:"detail"`
}

// FlowPeriodDetails holds the three sub-scores of a flow score.
// Activity.Detail is the active state count, AppSwitch.Detail the mean
// switches per state and FlowStreak.Detail the raw streak length.
type FlowPeriodDetails struct {
	Activity   SubScore `json:"activity"`
	AppSwitch  SubScore `json:"app_switch"`
	FlowStreak SubScore `json:"flow_streak"`
}

// Breakdown returns the sub-scores keyed for explain output.
func (d FlowPeriodDetails) Breakdown() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownActivity:   d.Activity.Score,
		BreakdownAppSwitch:  d.AppSwitch.Score,
		BreakdownFlowStreak: d.FlowStreak.Score,
	}
}

// FlowPeriodScore is the result of aggregating the sub-scores.
type FlowPeriodScore struct {
	Total   float64           `json:"total"`
	Details FlowPeriodDetails `json:"details"`
}

// FlowPeriod is the persisted evaluation of one window. It is never mutated after creation.
type FlowPeriod struct {
	ID        int64             `json:"id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Score     float64           `json:"score"`
	Details   FlowPeriodDetails `json:"details"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewFlowPeriod packages a scored window for persistence.
func NewFlowPeriod(w Window, score FlowPeriodScore, createdAt time.Time) FlowPeriod {
	return FlowPeriod{
		StartTime: w.Start,
		EndTime:   w.End,
		Score:     score.Total,
		Details:   score.Details,
		CreatedAt: createdAt,
	}
}

// Window returns the time range the period covers.
func (p FlowPeriod) Window() Window {
	return Window{Start: p.StartTime, End: p.EndTime}
}
