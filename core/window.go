package core

import (
	"time"

	"github.com/huangsam/flowstate/schema"
)

// ResolveNextWindow computes the window following last.
//
// Without a prior period the window is [now, now+interval]. When the prior
// period ended within schema.GapTolerance of now the new window starts at its
// end so windows stay contiguous. A larger gap means the loop missed ticks,
// and the window restarts at now instead of back-filling.
//
// A non-positive interval falls back to schema.DefaultScoringInterval, so the
// result always ends strictly after it starts.
func ResolveNextWindow(last *schema.FlowPeriod, interval time.Duration, now time.Time) schema.Window {
	if interval <= 0 {
		interval = schema.DefaultScoringInterval
	}

	start := now
	if last != nil && !last.EndTime.Add(schema.GapTolerance).Before(now) {
		start = last.EndTime
	}
	return schema.Window{Start: start, End: start.Add(interval)}
}

// Due reports whether a window has closed, allowing for tick jitter.
func Due(w schema.Window, now time.Time) bool {
	return !w.End.After(now.Add(schema.GapTolerance))
}

// ResolveClosedWindow computes the most recent window of interval length that
// has already closed at now and does not overlap last.
//
// When last ended within schema.GapTolerance of now-interval the window
// continues from it, like ResolveNextWindow. Otherwise it is the interval
// ending at now. The boolean is false when the window continuing from last is
// still open, so nothing can be scored without overlapping it.
func ResolveClosedWindow(last *schema.FlowPeriod, interval time.Duration, now time.Time) (schema.Window, bool) {
	if interval <= 0 {
		interval = schema.DefaultScoringInterval
	}

	start := now.Add(-interval)
	if last != nil && !last.EndTime.Add(schema.GapTolerance).Before(start) {
		start = last.EndTime
	}
	w := schema.Window{Start: start, End: start.Add(interval)}
	return w, Due(w, now)
}
