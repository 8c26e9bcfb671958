package schema

import "time"

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// Breakdown keys used in the scoring logic.
const (
	BreakdownActivity   BreakdownKey = "activity"    // sustained active states
	BreakdownAppSwitch  BreakdownKey = "app_switch"  // context switching
	BreakdownFlowStreak BreakdownKey = "flow_streak" // consecutive high-scoring periods
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Scoring constants. Activity states are 30 second buckets.
const (
	ActivityStateLength = 30 * time.Second

	ActivityBaselineStates = 4   // first two minutes earn nothing
	ActivityStatesPerPoint = 2   // one point per additional minute
	MaxActivityScore       = 5.0 // activity cap

	FocusedSwitchMean   = 4.0 // mean switches at or below this is focused
	ModerateSwitchMean  = 8.0 // mean switches at or below this is moderate
	FocusedSwitchScore  = 1.0
	ModerateSwitchScore = 0.5

	FlowStreakThreshold = 5.0 // a period must score above this to extend a streak
	MaxFlowStreak       = 4

	MaxFlowScore = MaxActivityScore + FocusedSwitchScore + MaxFlowStreak
)

// Window and presence constants.
const (
	DefaultScoringInterval = 10 * time.Minute
	GapTolerance           = 5 * time.Second
	ActiveRecency          = 5 * time.Minute
)

// BreakdownKeys lists the sub-scores in display order.
var BreakdownKeys = []BreakdownKey{BreakdownActivity, BreakdownAppSwitch, BreakdownFlowStreak}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
