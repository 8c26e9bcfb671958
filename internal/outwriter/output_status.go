package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/parquet"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
)

// WritePresenceStatus outputs the presence status.
func WritePresenceStatus(status schema.PresenceStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writePresenceStatus(w, status, cfg)
	}, "Wrote status")
}

func writePresenceStatus(w io.Writer, status schema.PresenceStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, map[string]string{"status": status.String()})
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"status"}, func(cw *csv.Writer) error {
			return cw.Write([]string{status.String()})
		})
	default:
		label := status.String()
		if cfg.UseColors {
			label = contract.GetColorStatus(status)
		}
		_, err := fmt.Fprintln(w, label)
		return err
	}
}

// WriteSessionResults outputs flow sessions.
func WriteSessionResults(sessions []schema.FlowSession, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		if err := parquet.WriteFlowSessionsParquet(sessions, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo("Wrote Parquet to %s", cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeSessions(w, sessions, cfg, time.Now())
	}, "Wrote sessions")
}

func writeSessions(w io.Writer, sessions []schema.FlowSession, cfg *contract.Config, now time.Time) error {
	switch cfg.Output {
	case schema.JSONOut:
		if sessions == nil {
			sessions = []schema.FlowSession{}
		}
		return writeJSON(w, sessions)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"id", "kind", "start_time", "end_time"}, func(cw *csv.Writer) error {
			for _, s := range sessions {
				end := ""
				if s.EndTime != nil {
					end = s.EndTime.Format(contract.DateTimeFormat)
				}
				if err := cw.Write([]string{s.ID, string(s.Kind), s.StartTime.Format(contract.DateTimeFormat), end}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Kind", "Start", "Length", "State"})

	var data [][]string
	for _, s := range sessions {
		end, state := now, "in progress"
		if s.EndTime != nil {
			end, state = *s.EndTime, "ended"
		}
		data = append(data, []string{
			s.ID,
			string(s.Kind),
			s.StartTime.Local().Format(timeLayout),
			contract.FormatDuration(end.Sub(s.StartTime)),
			state,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d sessions\n", len(sessions))
	return err
}

// WriteStoreStatusResult outputs store status information.
func WriteStoreStatusResult(status schema.StoreStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeStoreStatus(w, status, cfg)
	}, "Wrote store status")
}

func writeStoreStatus(w io.Writer, status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, status)
	}

	lines := []string{
		fmt.Sprintf("Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines,
			fmt.Sprintf("Schema Version: %d", status.SchemaVersion),
			fmt.Sprintf("Total Periods: %d", status.TotalPeriods),
		)
		if !status.LastPeriodTime.IsZero() {
			lines = append(lines, fmt.Sprintf("Last Period: %s", status.LastPeriodTime.Local().Format(time.DateTime)))
		}
		if !status.LastActivityTime.IsZero() {
			lines = append(lines, fmt.Sprintf("Last Activity: %s", status.LastActivityTime.Local().Format(time.DateTime)))
		}
		lines = append(lines, "Table Sizes:")
		for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
			lines = append(lines, "  "+table+": "+strconv.FormatInt(status.TableSizes[table], 10)+" rows")
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeEventLine prints one background event.
func writeEventLine(w io.Writer, event schema.Event, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, struct {
			Kind string `json:"kind"`
			schema.Event
		}{event.Kind.String(), event})
	}

	fmtFloat, _ := createFormatters(cfg.Precision)
	at := event.At.Local().Format(time.TimeOnly)

	switch event.Kind {
	case schema.PeriodScored:
		if event.Period == nil {
			return nil
		}
		p := event.Period
		_, err := fmt.Fprintf(w, "%s scored %s - %s: %s (%s)\n", at,
			p.StartTime.Local().Format(time.TimeOnly), p.EndTime.Local().Format(time.TimeOnly),
			fmtFloat(p.Score), scoreLabel(p.Score, cfg))
		return err
	case schema.PresenceChanged:
		status := event.Status.String()
		if cfg.UseColors {
			status = contract.GetColorStatus(event.Status)
		}
		previous := event.Previous.String()
		if previous == "" {
			previous = "unknown"
		}
		_, err := fmt.Fprintf(w, "%s presence %s -> %s\n", at, previous, status)
		return err
	default:
		_, err := fmt.Fprintf(w, "%s %s\n", at, event.Kind)
		return err
	}
}
