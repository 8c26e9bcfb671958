package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/outwriter"
	"github.com/huangsam/flowstate/internal/parquet"
	"github.com/huangsam/flowstate/internal/store"
	"github.com/huangsam/flowstate/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbConfigSetup loads the backend settings without the full shared setup.
func dbConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// dbSetupWrapper loads the backend settings and opens the store.
func dbSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := dbConfigSetup(); err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Backend, cfg.DBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	flowStore = s
	return nil
}

// dbConfigSetupWrapper loads the backend settings only. It does NOT open the
// store or create tables, allowing migrations to run on a fresh database.
func dbConfigSetupWrapper(_ *cobra.Command, _ []string) error {
	return dbConfigSetup()
}

// dbCmd focused on store management.
//
// Note: db subcommands use minimal initialization instead of the full
// sharedSetup. This skips output and duration validation for simple
// maintenance operations.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the flow store (status, migrations, exports)",
	Long: `Manage the database holding activity states, flow periods and sessions.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export all data to Parquet
  clear   - Remove all data
  migrate - Run database schema migrations

Examples:
  # Check store status
  flowstate db status

  # Export for analysis in pandas/DuckDB
  flowstate db export --output-file flow-data`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the flow store.

Displays:
- Backend type and connection status
- Schema version
- Total number of flow periods
- Last period and last activity timestamps
- Row counts per table

Examples:
  flowstate db status
  FLOWSTATE_BACKEND=mysql FLOWSTATE_DB_CONNECT="..." flowstate db status`,
	PreRunE: dbSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := flowStore.GetStatus(rootCtx)
		if err != nil {
			fatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStoreStatus(status, cfg); err != nil {
			fatal("Cannot write store status", err)
		}
	},
}

// dbClearCmd clears the store.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored activity, periods and sessions",
	Long: `Delete all flow data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables and the migration history

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  flowstate db export --output-file backup
  flowstate db clear`,
	PreRunE: dbConfigSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.Clear(cfg.Backend, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Flow data cleared successfully.")
	},
}

// dbMigrateCmd runs database migrations.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the flow store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  flowstate db migrate

  # Migrate to specific version
  flowstate db migrate --target-version 2

  # Rollback everything
  flowstate db migrate --target-version 0`,
	PreRunE: dbConfigSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := store.Migrate(cfg.Backend, cfg.DBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !result.Changed {
			fmt.Printf("Schema already at version %d.\n", result.To)
			return
		}
		fmt.Printf("Migrated schema from version %d to %d.\n", result.From, result.To)
	},
}

// dbExportCmd exports the store to Parquet files.
var dbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored data to Parquet for BI tools and analytics",
	Long: `Export the store to a directory of Parquet files:

- flow_periods.parquet    - scored periods with sub-scores
- activity_states.parquet - raw telemetry buckets
- flow_sessions.parquet   - focus and break sessions

Requires: --output-file parameter (used as the directory)

Examples:
  flowstate db export --output-file flow-data
  duckdb -c "SELECT avg(score) FROM read_parquet('flow-data/flow_periods.parquet')"`,
	PreRunE: dbSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := exportStore(cfg.OutputFile); err != nil {
			fatal("Failed to export flow data", err)
		}
	},
}

// exportStore writes every table of the store into dir.
func exportStore(dir string) error {
	if dir == "" {
		return errors.New("export requires --output-file")
	}
	if cfg.Backend == schema.NoneBackend {
		return fmt.Errorf("nothing to export from %s backend", cfg.Backend)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	epoch, now := time.Unix(0, 0), time.Now()

	periods, err := flowStore.GetFlowPeriodsBetween(rootCtx, epoch, now)
	if err != nil {
		return err
	}
	if err := parquet.WriteFlowPeriodsParquet(periods, filepath.Join(dir, "flow_periods.parquet")); err != nil {
		return fmt.Errorf("failed to write flow periods: %w", err)
	}

	states, err := flowStore.GetActivityStatesBetween(rootCtx, epoch, now)
	if err != nil {
		return err
	}
	if err := parquet.WriteActivityStatesParquet(states, filepath.Join(dir, "activity_states.parquet")); err != nil {
		return fmt.Errorf("failed to write activity states: %w", err)
	}

	sessions, err := flowStore.ListFlowSessions(rootCtx, epoch)
	if err != nil {
		return err
	}
	if err := parquet.WriteFlowSessionsParquet(sessions, filepath.Join(dir, "flow_sessions.parquet")); err != nil {
		return fmt.Errorf("failed to write flow sessions: %w", err)
	}

	contract.LogInfo("Exported %d periods, %d activity states and %d sessions to %s",
		len(periods), len(states), len(sessions), dir)
	return nil
}
