package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRegistersAndRemoves(t *testing.T) {
	s := New()

	require.NoError(t, s.Every("score", time.Minute, func() {}))
	assert.True(t, s.Scheduled("score"))

	err := s.Every("score", time.Minute, func() {})
	assert.Error(t, err)

	assert.True(t, s.Remove("score"))
	assert.False(t, s.Scheduled("score"))
	assert.False(t, s.Remove("score"))
}

func TestEveryRejectsShortInterval(t *testing.T) {
	s := New()
	err := s.Every("fast", 100*time.Millisecond, func() {})
	assert.ErrorContains(t, err, "at least 1s")
}

func TestSchedulerFiresAndStops(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("tick", time.Second, func() { runs.Add(1) }))

	s.Start()
	s.Start() // idempotent

	next, ok := s.Next("tick")
	require.True(t, ok)
	assert.False(t, next.IsZero())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Every("panicky", time.Second, func() {
		runs.Add(1)
		panic("tick failed")
	}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}
