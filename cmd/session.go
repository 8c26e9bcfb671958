package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
)

// sessionCmd groups the explicit focus session commands.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start, end and list focus sessions",
	Long: `Manage explicit focus sessions.

While a session is in progress the presence status is flowing, regardless
of recorded activity. Only one session can be open at a time.

Subcommands:
  start - Open a focus or break session
  end   - Close the open session
  list  - Show sessions started since --since

Examples:
  flowstate session start
  flowstate session start break
  flowstate session end`,
}

// sessionStartCmd opens a session.
var sessionStartCmd = &cobra.Command{
	Use:     "start [focus|break]",
	Short:   "Open a new session",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		kindStr := ""
		if len(args) == 1 {
			kindStr = args[0]
		}
		kind, err := schema.ParseSessionKind(kindStr)
		if err != nil {
			fatal("Invalid session kind", err)
		}

		session, err := flowStore.StartFlowSession(rootCtx, kind, time.Now())
		if err != nil {
			fatal("Cannot start session", err)
		}
		fmt.Printf("Started %s session %s at %s\n", session.Kind, session.ID,
			session.StartTime.Local().Format(time.DateTime))
	},
}

// sessionEndCmd closes the open session.
var sessionEndCmd = &cobra.Command{
	Use:     "end",
	Short:   "End the session in progress",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		session, err := flowStore.GetInProgressFlowSession(rootCtx)
		if err != nil {
			fatal("Cannot look up session", err)
		}
		if session == nil {
			fatal("Cannot end session", errors.New("no session in progress"))
		}

		end := time.Now()
		if err := flowStore.EndFlowSession(rootCtx, session.ID, end); err != nil {
			fatal("Cannot end session", err)
		}
		fmt.Printf("Ended %s session %s after %s\n", session.Kind, session.ID,
			end.Sub(session.StartTime).Round(time.Second))
	},
}

// sessionListCmd lists sessions.
var sessionListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List sessions started since --since",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sessions, err := flowStore.ListFlowSessions(rootCtx, cfg.Since)
		if err != nil {
			fatal("Cannot list sessions", err)
		}
		if len(sessions) > cfg.ResultLimit {
			sessions = sessions[:cfg.ResultLimit]
		}
		if err := outwriter.NewOutWriter().WriteSessions(sessions, cfg); err != nil {
			fatal("Cannot write sessions", err)
		}
	},
}
