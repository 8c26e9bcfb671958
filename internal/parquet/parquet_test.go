package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"FlowPeriod", new(FlowPeriod), []string{
			"period_id", "start_time", "end_time", "score", "label", "activity_score", "active_states",
			"app_switch_score", "mean_app_switches", "flow_streak_score", "streak_count", "created_at",
		}},
		{"ActivityState", new(ActivityState), []string{"state", "app_switches", "start_time", "end_time"}},
		{"FlowSession", new(FlowSession), []string{"session_id", "kind", "start_time", "end_time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteFlowPeriodsParquet(t *testing.T) {
	periods := []schema.FlowPeriod{
		{
			ID: 1, StartTime: base, EndTime: base.Add(10 * time.Minute), Score: 10, CreatedAt: base.Add(10 * time.Minute),
			Details: schema.FlowPeriodDetails{
				Activity:   schema.SubScore{Score: 5, Detail: 20},
				AppSwitch:  schema.SubScore{Score: 1, Detail: 1.5},
				FlowStreak: schema.SubScore{Score: 4, Detail: 6},
			},
		},
		{ID: 2, StartTime: base.Add(10 * time.Minute), EndTime: base.Add(20 * time.Minute), Score: 2},
	}

	path := filepath.Join(t.TempDir(), "periods.parquet")
	require.NoError(t, WriteFlowPeriodsParquet(periods, path))

	rows := readAll[FlowPeriod](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].PeriodID)
	assert.Equal(t, schema.PeakLabel, rows[0].Label)
	assert.Equal(t, int32(20), rows[0].ActiveStates)
	assert.Equal(t, int32(6), rows[0].StreakCount)
	assert.InDelta(t, 1.5, rows[0].MeanAppSwitches, 0.001)
	assert.WithinDuration(t, base, rows[0].Start, time.Millisecond)
	assert.Equal(t, schema.LowLabel, rows[1].Label)
}

func TestWriteActivityStatesParquet(t *testing.T) {
	states := []schema.ActivityState{
		{State: schema.Active, AppSwitches: 3, StartTime: base, EndTime: base.Add(30 * time.Second)},
		{State: schema.Inactive, StartTime: base.Add(30 * time.Second), EndTime: base.Add(time.Minute)},
	}

	path := filepath.Join(t.TempDir(), "states.parquet")
	require.NoError(t, WriteActivityStatesParquet(states, path))

	rows := readAll[ActivityState](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "active", rows[0].State)
	assert.Equal(t, int32(3), rows[0].AppSwitches)
	assert.Equal(t, "inactive", rows[1].State)
}

func TestWriteFlowSessionsParquet(t *testing.T) {
	end := base.Add(25 * time.Minute)
	sessions := []schema.FlowSession{
		{ID: "a", Kind: schema.FocusSession, StartTime: base, EndTime: &end},
		{ID: "b", Kind: schema.BreakSession, StartTime: base.Add(30 * time.Minute)},
	}

	path := filepath.Join(t.TempDir(), "sessions.parquet")
	require.NoError(t, WriteFlowSessionsParquet(sessions, path))

	rows := readAll[FlowSession](t, path)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].End)
	assert.WithinDuration(t, end, *rows[0].End, time.Millisecond)
	assert.Nil(t, rows[1].End)
	assert.Equal(t, "break", rows[1].Kind)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFlowPeriodsParquet(nil, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readAll[FlowPeriod](t, path))
}

func TestWriteParquet_BadPath(t *testing.T) {
	err := WriteFlowPeriodsParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}
