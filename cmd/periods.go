package cmd

import (
	"time"

	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// periodsCmd lists stored flow periods.
var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List stored flow periods with their scores.",
	Long: `List flow periods created since --since, newest first.

Use --top to rank by score instead. Wide terminals also show the
activity, app switch and flow streak sub-scores.

Examples:
  # Periods from the last 24 hours
  flowstate periods

  # Best 10 periods of the week
  flowstate periods --since "7 days ago" --top --limit 10

  # Export to Parquet
  flowstate periods --output parquet --output-file periods.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		periods, err := flowStore.GetFlowPeriodsBetween(rootCtx, cfg.Since, time.Now())
		if err != nil {
			fatal("Cannot list flow periods", err)
		}

		if viper.GetBool("top") {
			periods = algo.RankPeriods(periods, cfg.ResultLimit)
		} else {
			periods = algo.MostRecentFirst(periods)
			if len(periods) > cfg.ResultLimit {
				periods = periods[:cfg.ResultLimit]
			}
		}

		if err := outwriter.NewOutWriter().WritePeriods(periods, cfg); err != nil {
			fatal("Cannot write flow periods", err)
		}
	},
}
