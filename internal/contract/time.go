package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// relativeTimeRe captures "N [units] ago", e.g. "2 days ago" or "90 minutes ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute|second)s?\s+ago$`)

// humanDurationRe captures "N [units]", e.g. "3 hours" or "1 week".
var humanDurationRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute|second)s?$`)

func unitDuration(unit string) time.Duration {
	switch unit {
	case "week":
		return 7 * 24 * time.Hour
	case "day":
		return 24 * time.Hour
	case "hour":
		return time.Hour
	case "minute":
		return time.Minute
	default:
		return time.Second
	}
}

// ParseDuration converts strings like "10m" or "2 hours" into a positive time.Duration.
// It first tries time.ParseDuration, then falls back to the human-readable form.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return d, nil
	}

	matches := humanDurationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %q (expected e.g. 10m, 1h30m, 2 hours)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	d := time.Duration(value) * unitDuration(matches[2])
	if d == 0 {
		return 0, errors.New("zero duration is not useful")
	}
	return d, nil
}

// ParseSince resolves a lower time bound relative to now. It accepts an absolute
// RFC3339 timestamp, "N [units] ago", or a plain duration that is subtracted from now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time bound")
	}

	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}

	if matches := relativeTimeRe.FindStringSubmatch(strings.ToLower(s)); len(matches) > 0 {
		value, _ := strconv.Atoi(matches[1])
		return now.Add(-time.Duration(value) * unitDuration(matches[2])), nil
	}

	d, err := ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time bound %q. Expected RFC3339, 'N [units] ago' or a duration", s)
	}
	return now.Add(-d), nil
}
