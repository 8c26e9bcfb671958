// Package cmd defines the command-line interface for flowstate.
package cmd

import (
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the session subcommands to the parent session command
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionListCmd)

	// Add the activity subcommands to the parent activity command
	activityCmd.AddCommand(activityRecordCmd)
	activityCmd.AddCommand(activityImportCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Storage backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (SQLite file path, or e.g. user:pass@tcp(host:port)/dbname for MySQL)")
	rootCmd.PersistentFlags().String("interval", schema.DefaultScoringInterval.String(), "Length of each scored flow period")
	rootCmd.PersistentFlags().String("poll-interval", contract.DefaultPollInterval.String(), "How often the presence status is re-evaluated")
	rootCmd.PersistentFlags().String("active-window", schema.ActiveRecency.String(), "How recent activity must be to count as active")
	rootCmd.PersistentFlags().String("streak-lookback", contract.DefaultStreakLookback.String(), "How far back prior periods count toward the flow streak")
	rootCmd.PersistentFlags().String("status-debounce", contract.DefaultStatusDebounce.String(), "Minimum gap between repeated presence notifications")
	rootCmd.PersistentFlags().String("since", "", "Lower time bound in RFC3339 or time ago (default 24 hours ago)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Bool("persist", false, "Persist the next window when it has closed")
	scoreCmd.Flags().String("start", "", "Score the interval starting at this time instead of the next window")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of periodsCmd to Viper
	periodsCmd.Flags().Bool("top", false, "Rank periods by score instead of recency")
	if err := viper.BindPFlags(periodsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding periods flags", err)
	}

	// Bind all flags of activityRecordCmd to Viper
	activityRecordCmd.Flags().String("state", string(schema.Active), "Activity state: active or inactive")
	activityRecordCmd.Flags().Int("app-switches", 0, "Number of app switches in the bucket")
	activityRecordCmd.Flags().String("at", "", "Bucket end time in RFC3339 or time ago (default now)")
	if err := viper.BindPFlags(activityRecordCmd.Flags()); err != nil {
		contract.LogFatal("Error binding activity record flags", err)
	}

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
