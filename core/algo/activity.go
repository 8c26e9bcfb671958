// Package algo has the pure scoring algorithms behind the flow score.
// Nothing in this package performs I/O; every function is safe for concurrent use.
package algo

import "github.com/huangsam/flowstate/schema"

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ActivityScore scores sustained activity in a window.
// The first four active states earn nothing; every further two states earn
// one point, capped at schema.MaxActivityScore. The active count is returned
// as the detail value.
func ActivityScore(states []schema.ActivityState) (float64, int) {
	active := 0
	for _, s := range states {
		if s.IsActive() {
			active++
		}
	}
	if active == 0 {
		return 0, 0
	}
	raw := float64(active-schema.ActivityBaselineStates) / schema.ActivityStatesPerPoint
	return clamp(raw, 0, schema.MaxActivityScore), active
}
