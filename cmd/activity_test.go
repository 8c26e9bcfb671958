package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withStore(t *testing.T, s contract.Store) {
	t.Helper()
	prev := flowStore
	flowStore = s
	t.Cleanup(func() { flowStore = prev })
}

func writeLines(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportActivity(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("records every line", func(t *testing.T) {
		m := &contract.MockStore{}
		withStore(t, m)
		m.On("RecordActivityState", mock.Anything, schema.ActivityState{
			State: schema.Active, AppSwitches: 2, StartTime: start, EndTime: start.Add(30 * time.Second),
		}).Return(nil).Once()
		m.On("RecordActivityState", mock.Anything, schema.ActivityState{
			State: schema.Inactive, StartTime: start.Add(30 * time.Second), EndTime: start.Add(time.Minute),
		}).Return(nil).Once()

		path := writeLines(t, `{"state":"active","app_switches":2,"start_time":"2025-03-10T09:00:00Z","end_time":"2025-03-10T09:00:30Z"}

{"state":"INACTIVE","start_time":"2025-03-10T09:00:30Z","end_time":"2025-03-10T09:01:00Z"}
`)
		n, err := importActivity(path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		m.AssertExpectations(t)
	})

	t.Run("stops at invalid state", func(t *testing.T) {
		m := &contract.MockStore{}
		withStore(t, m)

		path := writeLines(t, `{"state":"sleeping","start_time":"2025-03-10T09:00:00Z","end_time":"2025-03-10T09:00:30Z"}`)
		n, err := importActivity(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
		assert.Zero(t, n)
		m.AssertNotCalled(t, "RecordActivityState", mock.Anything, mock.Anything)
	})

	t.Run("reports the failing line", func(t *testing.T) {
		m := &contract.MockStore{}
		withStore(t, m)
		m.On("RecordActivityState", mock.Anything, mock.Anything).Return(nil).Once()
		m.On("RecordActivityState", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		path := writeLines(t, `{"state":"active","start_time":"2025-03-10T09:00:00Z","end_time":"2025-03-10T09:00:30Z"}
{"state":"active","start_time":"2025-03-10T09:00:30Z","end_time":"2025-03-10T09:01:00Z"}
`)
		n, err := importActivity(path)
		require.ErrorContains(t, err, "line 2: disk full")
		assert.Equal(t, 1, n)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := importActivity(filepath.Join(t.TempDir(), "missing.jsonl"))
		assert.Error(t, err)
	})
}
