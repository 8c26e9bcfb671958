package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// Default values for configuration.
const (
	DefaultPollInterval   = 30 * time.Second
	DefaultStreakLookback = 50 * time.Minute
	DefaultStatusDebounce = time.Minute
	DefaultSince          = 24 * time.Hour
	DefaultResultLimit    = 50
	MaxResultLimit        = 1000
	DefaultPrecision      = 1
)

// Config holds the validated runtime configuration.
type Config struct {
	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Interval       time.Duration // scoring period length
	PollInterval   time.Duration // presence monitor cadence
	ActiveWindow   time.Duration // recency bound for the status classifier
	StreakLookback time.Duration // how far back prior periods feed the streak
	StatusDebounce time.Duration // minimum gap between repeated status notifications

	Since       time.Time
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Backend        string `mapstructure:"backend"`
	DBConnect      string `mapstructure:"db-connect"`
	Interval       string `mapstructure:"interval"`
	PollInterval   string `mapstructure:"poll-interval"`
	ActiveWindow   string `mapstructure:"active-window"`
	StreakLookback string `mapstructure:"streak-lookback"`
	StatusDebounce string `mapstructure:"status-debounce"`
	Since          string `mapstructure:"since"`
	Limit          int    `mapstructure:"limit"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := processSince(cfg, input, now); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the storage backend and its connection string.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if cfg.Backend == "" {
		cfg.Backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processDurations parses every duration key, falling back to the defaults when unset.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	fields := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"interval", input.Interval, schema.DefaultScoringInterval, &cfg.Interval},
		{"poll-interval", input.PollInterval, DefaultPollInterval, &cfg.PollInterval},
		{"active-window", input.ActiveWindow, schema.ActiveRecency, &cfg.ActiveWindow},
		{"streak-lookback", input.StreakLookback, DefaultStreakLookback, &cfg.StreakLookback},
		{"status-debounce", input.StatusDebounce, DefaultStatusDebounce, &cfg.StatusDebounce},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.raw) == "" {
			*f.dest = f.def
			continue
		}
		d, err := ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dest = d
	}

	if cfg.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m (received %s)", cfg.Interval)
	}
	if cfg.PollInterval < time.Second {
		return fmt.Errorf("poll-interval must be at least 1s (received %s)", cfg.PollInterval)
	}
	return nil
}

// processSince resolves the lower bound used by listing commands.
func processSince(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if strings.TrimSpace(input.Since) == "" {
		cfg.Since = now.Add(-DefaultSince)
		return nil
	}
	t, err := ParseSince(input.Since, now)
	if err != nil {
		return err
	}
	if t.After(now) {
		return fmt.Errorf("since (%s) cannot be in the future", t.Format(DateTimeFormat))
	}
	cfg.Since = t
	return nil
}
