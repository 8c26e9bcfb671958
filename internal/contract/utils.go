package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/flowstate/schema"
)

// Color variables for console output.
var (
	PeakColor     = color.New(color.FgGreen, color.Bold) // sustained deep focus
	HighColor     = color.New(color.FgCyan, color.Bold)  // streak-worthy period
	ModerateColor = color.New(color.FgYellow)            // some focus, not streak-worthy
	LowColor      = color.New(color.FgWhite)             // idle or scattered

	FlowingColor = color.New(color.FgGreen, color.Bold)
	ActiveColor  = color.New(color.FgCyan)
	OnlineColor  = color.New(color.FgWhite)
)

// GetColorLabel returns a colored score label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := schema.GetPlainLabel(score)

	switch text {
	case schema.PeakLabel:
		return PeakColor.Sprint(text)
	case schema.HighLabel:
		return HighColor.Sprint(text)
	case schema.ModerateLabel:
		return ModerateColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetColorStatus returns a colored presence status for console output.
func GetColorStatus(status schema.PresenceStatus) string {
	switch status {
	case schema.StatusFlowing:
		return FlowingColor.Sprint(status)
	case schema.StatusActive:
		return ActiveColor.Sprint(status)
	default:
		return OnlineColor.Sprint(status)
	}
}

// SelectOutputFile returns the file handle for output. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Info "+format+"\n", args...)
}

// GetDBFilePath returns the path to the default SQLite database.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flowstate.db"
	}
	return filepath.Join(homeDir, ".flowstate.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// FormatDuration renders a duration compactly for tables, e.g. "10m" or "1h30m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
