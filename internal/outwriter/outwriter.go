// Package outwriter has output and writer logic.
package outwriter

import (
	"io"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WritePeriods prints flow periods using the configured output format.
func (ow *OutWriter) WritePeriods(periods []schema.FlowPeriod, cfg *contract.Config) error {
	return WritePeriodResults(periods, cfg)
}

// WriteScore prints a single evaluated window using the configured output format.
func (ow *OutWriter) WriteScore(period schema.FlowPeriod, persisted bool, cfg *contract.Config) error {
	return WriteScoreResult(period, persisted, cfg)
}

// WriteStatus prints the presence status using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.PresenceStatus, cfg *contract.Config) error {
	return WritePresenceStatus(status, cfg)
}

// WriteSessions prints flow sessions using the configured output format.
func (ow *OutWriter) WriteSessions(sessions []schema.FlowSession, cfg *contract.Config) error {
	return WriteSessionResults(sessions, cfg)
}

// WriteStoreStatus prints store status information using the configured output format.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatusResult(status, cfg)
}

// WriteEvent prints one background event as a single line.
func (ow *OutWriter) WriteEvent(w io.Writer, event schema.Event, cfg *contract.Config) error {
	return writeEventLine(w, event, cfg)
}
