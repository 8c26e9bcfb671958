package cmd

import (
	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/spf13/cobra"
)

// statusCmd prints the current presence status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether you are flowing, active or online.",
	Long: `Classify the current presence status.

- flowing: a focus or break session is in progress
- active:  the latest activity state ended within --active-window
- online:  anything else

Storage errors degrade the answer instead of failing the command.

Examples:
  flowstate status
  flowstate status --active-window 2m --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		classifier := core.NewStatusClassifier(flowStore, core.WithActiveWindow(cfg.ActiveWindow))
		status, err := classifier.Classify(rootCtx)
		if err != nil {
			contract.LogWarn("Status is degraded", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(status, cfg); err != nil {
			fatal("Cannot write status", err)
		}
	},
}
