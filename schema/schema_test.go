package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityKind(t *testing.T) {
	kind, err := ParseActivityKind(" Active ")
	require.NoError(t, err)
	assert.Equal(t, Active, kind)

	kind, err = ParseActivityKind("inactive")
	require.NoError(t, err)
	assert.Equal(t, Inactive, kind)

	_, err = ParseActivityKind("idle")
	assert.Error(t, err)
}

func TestParseSessionKind(t *testing.T) {
	tests := []struct {
		input    string
		expected SessionKind
		wantErr  bool
	}{
		{"", FocusSession, false},
		{"focus", FocusSession, false},
		{"BREAK", BreakSession, false},
		{"meeting", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseSessionKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestParsePresenceStatus(t *testing.T) {
	for _, s := range []PresenceStatus{StatusOnline, StatusActive, StatusFlowing} {
		parsed, err := ParsePresenceStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParsePresenceStatus("away")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(10 * time.Minute)}
	assert.True(t, w.Valid())
	assert.Equal(t, 10*time.Minute, w.Duration())

	assert.False(t, Window{Start: start, End: start}.Valid())
}

func TestNewFlowPeriod(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(10 * time.Minute)}
	score := FlowPeriodScore{
		Total: 6,
		Details: FlowPeriodDetails{
			Activity:  SubScore{Score: 5, Detail: 20},
			AppSwitch: SubScore{Score: 1, Detail: 1},
		},
	}

	p := NewFlowPeriod(w, score, w.End)

	assert.Equal(t, w, p.Window())
	assert.Equal(t, 6.0, p.Score)
	assert.Equal(t, 5.0, p.Details.Breakdown()[BreakdownActivity])
	assert.Equal(t, 0.0, p.Details.Breakdown()[BreakdownFlowStreak])
	assert.True(t, FlowSession{}.InProgress())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "period_scored", PeriodScored.String())
	assert.Equal(t, "presence_changed", PresenceChanged.String())
	assert.Equal(t, "event(9)", EventKind(9).String())
}
