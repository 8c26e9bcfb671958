package cmd

import (
	"time"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scoreCmd scores a single window on demand.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the current window and show the breakdown.",
	Long: `Compute the flow score of one window and print its sub-scores.

Without flags, the latest closed window that continues the stored periods is
scored. When the window after the last stored period is still open, the interval
ending now is scored instead.

With --persist, the latest closed window is stored the same way the background
job stores it. Nothing is stored while the window after the last stored period
is still open.

Examples:
  # Preview the score of the running window
  flowstate score

  # Score a specific 10 minute window
  flowstate score --start "2025-03-10T09:00:00Z"

  # Store the latest closed window
  flowstate score --persist`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ow := outwriter.NewOutWriter()
		now := time.Now()

		job := core.NewScoringJob(flowStore, nil,
			core.WithInterval(cfg.Interval),
			core.WithStreakLookback(cfg.StreakLookback))

		if viper.GetBool("persist") {
			period, stored, err := job.ScoreClosed(rootCtx)
			if err != nil {
				fatal("Cannot persist flow period", err)
			}
			if !stored {
				contract.LogInfo("The window after the last stored period has not closed yet. Nothing persisted")
				return
			}
			if err := ow.WriteScore(period, true, cfg); err != nil {
				fatal("Cannot write score", err)
			}
			return
		}

		w, err := scoreWindow(now)
		if err != nil {
			fatal("Cannot resolve window", err)
		}
		period, err := job.Evaluate(rootCtx, w)
		if err != nil {
			fatal("Cannot score window", err)
		}
		if err := ow.WriteScore(period, false, cfg); err != nil {
			fatal("Cannot write score", err)
		}
	},
}

// scoreWindow picks the window to preview: an explicit start, the latest
// closed window, or the interval ending now.
func scoreWindow(now time.Time) (schema.Window, error) {
	if s := viper.GetString("start"); s != "" {
		start, err := contract.ParseSince(s, now)
		if err != nil {
			return schema.Window{}, err
		}
		return schema.Window{Start: start, End: start.Add(cfg.Interval)}, nil
	}

	last, err := flowStore.GetLastFlowPeriod(rootCtx)
	if err != nil {
		return schema.Window{}, err
	}
	if w, closed := core.ResolveClosedWindow(last, cfg.Interval, now); closed {
		return w, nil
	}
	return schema.Window{Start: now.Add(-cfg.Interval), End: now}, nil
}
