package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// activityCmd groups the telemetry ingestion commands.
var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Record activity telemetry",
	Long: `Write activity states into the store.

An activity state is a 30 second bucket that is either active or inactive
and counts the app switches seen during the bucket. A collector normally
writes these; the commands here are for scripting and backfills.

Subcommands:
  record - Store one bucket
  import - Store buckets from a JSON lines file

Examples:
  flowstate activity record --state active --app-switches 2
  flowstate activity import states.jsonl`,
}

// activityRecordCmd stores one bucket ending at --at.
var activityRecordCmd = &cobra.Command{
	Use:     "record",
	Short:   "Record one activity state",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		now := time.Now()
		kind, err := schema.ParseActivityKind(viper.GetString("state"))
		if err != nil {
			fatal("Invalid state", err)
		}

		end := now
		if at := viper.GetString("at"); at != "" {
			if end, err = contract.ParseSince(at, now); err != nil {
				fatal("Invalid --at", err)
			}
		}

		state := schema.ActivityState{
			State:       kind,
			AppSwitches: viper.GetInt("app-switches"),
			StartTime:   end.Add(-schema.ActivityStateLength),
			EndTime:     end,
		}
		if err := flowStore.RecordActivityState(rootCtx, state); err != nil {
			fatal("Cannot record activity", err)
		}
	},
}

// activityImportCmd stores one bucket per line of a JSON lines file.
var activityImportCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import activity states from a JSON lines file",
	Long: `Import activity states, one JSON object per line:

  {"state":"active","app_switches":2,"start_time":"2025-03-10T09:00:00Z","end_time":"2025-03-10T09:00:30Z"}

Blank lines are skipped. The import stops at the first invalid line.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		n, err := importActivity(args[0])
		if err != nil {
			fatal("Cannot import activity", err)
		}
		contract.LogInfo("Imported %d activity states from %s", n, args[0])
	},
}

// importActivity reads path line by line and records each state.
func importActivity(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	var (
		count  int
		lineNo int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var state schema.ActivityState
		if err := json.Unmarshal([]byte(line), &state); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if state.State, err = schema.ParseActivityKind(string(state.State)); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := flowStore.RecordActivityState(rootCtx, state); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
