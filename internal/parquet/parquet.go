// Package parquet provides data structures and functions for exporting flow
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/parquet-go/parquet-go"
)

// FlowPeriod is one scored window. It maps to the flow_periods table.
type FlowPeriod struct {
	PeriodID int64     `parquet:"period_id,snappy"`
	Start    time.Time `parquet:"start_time,snappy"`
	End      time.Time `parquet:"end_time,snappy"`
	Score    float64   `parquet:"score,snappy"`
	Label    string    `parquet:"label,snappy"`

	ActivityScore   float64 `parquet:"activity_score,snappy"`
	ActiveStates    int32   `parquet:"active_states,snappy"`
	AppSwitchScore  float64 `parquet:"app_switch_score,snappy"`
	MeanAppSwitches float64 `parquet:"mean_app_switches,snappy"`
	FlowStreakScore float64 `parquet:"flow_streak_score,snappy"`
	StreakCount     int32   `parquet:"streak_count,snappy"`

	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// ActivityState is one 30 second telemetry bucket. It maps to the activity_states table.
type ActivityState struct {
	State       string    `parquet:"state,dict,snappy"`
	AppSwitches int32     `parquet:"app_switches,snappy"`
	Start       time.Time `parquet:"start_time,snappy"`
	End         time.Time `parquet:"end_time,snappy"`
}

// FlowSession is one user-initiated session. It maps to the flow_sessions table.
type FlowSession struct {
	SessionID string    `parquet:"session_id,snappy"`
	Kind      string    `parquet:"kind,dict,snappy"`
	Start     time.Time `parquet:"start_time,snappy"`

	// End is nil while the session is in progress
	End *time.Time `parquet:"end_time,optional,snappy"`
}

// writeParquet writes rows to outputPath with the schema inferred from T.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFlowPeriodsParquet writes flow periods to a Parquet file.
func WriteFlowPeriodsParquet(periods []schema.FlowPeriod, outputPath string) error {
	return writeParquet(ConvertFlowPeriods(periods), outputPath)
}

// WriteActivityStatesParquet writes activity states to a Parquet file.
func WriteActivityStatesParquet(states []schema.ActivityState, outputPath string) error {
	return writeParquet(ConvertActivityStates(states), outputPath)
}

// WriteFlowSessionsParquet writes sessions to a Parquet file.
func WriteFlowSessionsParquet(sessions []schema.FlowSession, outputPath string) error {
	return writeParquet(ConvertFlowSessions(sessions), outputPath)
}

// ConvertFlowPeriods converts schema periods to Parquet rows.
func ConvertFlowPeriods(periods []schema.FlowPeriod) []FlowPeriod {
	rows := make([]FlowPeriod, len(periods))
	for i, p := range periods {
		rows[i] = FlowPeriod{
			PeriodID:        p.ID,
			Start:           p.StartTime,
			End:             p.EndTime,
			Score:           p.Score,
			Label:           schema.GetPlainLabel(p.Score),
			ActivityScore:   p.Details.Activity.Score,
			ActiveStates:    int32(p.Details.Activity.Detail),
			AppSwitchScore:  p.Details.AppSwitch.Score,
			MeanAppSwitches: p.Details.AppSwitch.Detail,
			FlowStreakScore: p.Details.FlowStreak.Score,
			StreakCount:     int32(p.Details.FlowStreak.Detail),
			CreatedAt:       p.CreatedAt,
		}
	}
	return rows
}

// ConvertActivityStates converts schema states to Parquet rows.
func ConvertActivityStates(states []schema.ActivityState) []ActivityState {
	rows := make([]ActivityState, len(states))
	for i, s := range states {
		rows[i] = ActivityState{
			State:       string(s.State),
			AppSwitches: int32(s.AppSwitches),
			Start:       s.StartTime,
			End:         s.EndTime,
		}
	}
	return rows
}

// ConvertFlowSessions converts schema sessions to Parquet rows.
func ConvertFlowSessions(sessions []schema.FlowSession) []FlowSession {
	rows := make([]FlowSession, len(sessions))
	for i, s := range sessions {
		rows[i] = FlowSession{
			SessionID: s.ID,
			Kind:      string(s.Kind),
			Start:     s.StartTime,
			End:       s.EndTime,
		}
	}
	return rows
}
