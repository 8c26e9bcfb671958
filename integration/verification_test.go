//go:build integration

// Package integration contains integration tests for flowstate.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScoreVerification imports synthetic telemetry through the CLI and checks
// every reported score against the in-process scoring algorithm.
func TestScoreVerification(t *testing.T) {
	env := []string{
		"FLOWSTATE_BACKEND=sqlite",
		"FLOWSTATE_DB_CONNECT=" + filepath.Join(t.TempDir(), "flowstate.db"),
	}

	base := time.Now().Add(-3 * time.Hour).Truncate(time.Hour).UTC()
	patterns := []struct {
		name     string
		active   int
		switches int
	}{
		{"idle", 0, 0},
		{"warming up", 4, 1},
		{"moderate", 10, 6},
		{"scattered", 20, 12},
		{"deep work", 20, 1},
	}

	for i, p := range patterns {
		start := base.Add(time.Duration(i) * 10 * time.Minute)
		states := syntheticStates(start, p.active, p.switches)
		path := writeStatesFile(t, states)
		_, err := runFlowstate(t, env, "activity", "import", path)
		require.NoError(t, err)

		t.Run(p.name, func(t *testing.T) {
			out, err := runFlowstate(t, env, "score", "--start", start.Format(time.RFC3339), "--output", "json")
			require.NoError(t, err)

			var got schema.FlowPeriod
			require.NoError(t, json.Unmarshal([]byte(out), &got))

			want := algo.AggregateFlowScore(states, nil)
			assert.InDelta(t, want.Total, got.Score, 1e-9)
			assert.InDelta(t, want.Details.Activity.Score, got.Details.Activity.Score, 1e-9)
			assert.InDelta(t, want.Details.AppSwitch.Score, got.Details.AppSwitch.Score, 1e-9)
		})
	}

	out, err := runFlowstate(t, env, "periods", "--since", base.Format(time.RFC3339), "--output", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out, "previews must not persist periods")
}

// syntheticStates builds 20 buckets, the first active of them active.
func syntheticStates(start time.Time, active, switches int) []schema.ActivityState {
	states := make([]schema.ActivityState, 20)
	for i := range states {
		s := start.Add(time.Duration(i) * schema.ActivityStateLength)
		kind := schema.Inactive
		if i < active {
			kind = schema.Active
		}
		states[i] = schema.ActivityState{State: kind, AppSwitches: switches, StartTime: s, EndTime: s.Add(schema.ActivityStateLength)}
	}
	return states
}

func writeStatesFile(t *testing.T, states []schema.ActivityState) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	for _, s := range states {
		line, err := json.Marshal(s)
		require.NoError(t, err)
		_, err = fmt.Fprintln(f, string(line))
		require.NoError(t, err)
	}
	return path
}
