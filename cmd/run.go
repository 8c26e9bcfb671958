package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/internal/schedule"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long running callbacks may take to finish on exit.
const shutdownTimeout = 10 * time.Second

// runCmd runs the periodic scoring job and the presence monitor until interrupted.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score flow periods and track presence in the foreground.",
	Long: `Start the periodic scoring job and the presence monitor.

Every --interval the job scores the last closed window of activity and stores it
as a flow period. Windows are contiguous: each one starts where the previous one
ended, unless the gap since the last period is longer than one interval.

The presence monitor re-evaluates the status every --poll-interval and prints a
line whenever it changes between flowing, active and online.

Examples:
  # Score 10 minute periods against the default SQLite store
  flowstate run

  # Use 15 minute periods and print events as JSON lines
  flowstate run --interval 15m --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		ow := outwriter.NewOutWriter()
		var mu sync.Mutex
		notifier := func(event schema.Event) {
			mu.Lock()
			defer mu.Unlock()
			if err := ow.WriteEvent(os.Stdout, event, cfg); err != nil {
				contract.LogWarn("Failed to write event", err)
			}
		}

		scheduler := schedule.New()
		job := core.NewScoringJob(flowStore, scheduler,
			core.WithInterval(cfg.Interval),
			core.WithStreakLookback(cfg.StreakLookback),
			core.WithJobNotifier(notifier))
		classifier := core.NewStatusClassifier(flowStore, core.WithActiveWindow(cfg.ActiveWindow))
		monitor := core.NewPresenceMonitor(classifier, scheduler,
			core.WithPollInterval(cfg.PollInterval),
			core.WithStatusDebounce(cfg.StatusDebounce),
			core.WithPresenceNotifier(notifier))

		if err := job.Start(ctx); err != nil {
			fatal("Cannot start scoring job", err)
		}
		if err := monitor.Start(ctx); err != nil {
			fatal("Cannot start presence monitor", err)
		}
		if w, ok := job.Pending(); ok {
			contract.LogInfo("Scoring every %s. Next window %s - %s",
				contract.FormatDuration(cfg.Interval),
				w.Start.Local().Format(time.TimeOnly), w.End.Local().Format(time.TimeOnly))
		}

		<-ctx.Done()
		contract.LogInfo("Shutting down")

		job.Stop()
		monitor.Stop()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			contract.LogWarn("Scheduler did not stop cleanly", err)
		}
	},
}
