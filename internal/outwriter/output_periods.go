package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/parquet"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePeriodResults outputs flow periods, dispatching based on the output format configured.
func WritePeriodResults(periods []schema.FlowPeriod, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeriodsJSON(w, periods)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeriodsCSV(w, periods, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteFlowPeriodsParquet(periods, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo("Wrote Parquet to %s", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeriodsTable(w, periods, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
	return nil
}

// WriteScoreResult outputs a single evaluated window.
func WriteScoreResult(period schema.FlowPeriod, persisted bool, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Label     string `json:"label"`
				Persisted bool   `json:"persisted"`
				schema.FlowPeriod
			}{schema.GetPlainLabel(period.Score), persisted, period})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeriodsCSV(w, []schema.FlowPeriod{period}, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return WritePeriodResults([]schema.FlowPeriod{period}, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreBreakdown(w, period, persisted, cfg, fmtFloat, intFmt)
		}, "Wrote summary")
	}
}

// scoreLabel returns a colored or plain label depending on cfg.
func scoreLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return schema.GetPlainLabel(score)
}

// writePeriodsTable generates and writes the human-readable table.
func writePeriodsTable(w io.Writer, periods []schema.FlowPeriod, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	breakdown := showBreakdown(cfg)
	headers := []string{"#", "Start", "Length", "Score", "Label"}
	if breakdown {
		headers = append(headers, "Activity", "Active", "Switch", "Mean", "Streak", "Run")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	total := 0.0
	for _, p := range periods {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.StartTime.Local().Format(timeLayout),
			contract.FormatDuration(p.Window().Duration()),
			fmtFloat(p.Score),
			scoreLabel(p.Score, cfg),
		}
		if breakdown {
			d := p.Details
			row = append(row,
				fmtFloat(d.Activity.Score),
				fmt.Sprintf(intFmt, int(d.Activity.Detail)),
				fmtFloat(d.AppSwitch.Score),
				fmtFloat(d.AppSwitch.Detail),
				fmtFloat(d.FlowStreak.Score),
				fmt.Sprintf(intFmt, int(d.FlowStreak.Detail)),
			)
		}
		data = append(data, row)
		total += p.Score
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	mean := 0.0
	if len(periods) > 0 {
		mean = total / float64(len(periods))
	}
	_, err := fmt.Fprintf(w, "Showing %d periods (mean score: %s). Backend: %s\n", len(periods), fmtFloat(mean), cfg.Backend)
	return err
}

// writeScoreBreakdown writes the sub-scores of a single window as a two column table.
func writeScoreBreakdown(w io.Writer, p schema.FlowPeriod, persisted bool, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Component", "Score", "Detail"})

	d := p.Details
	data := [][]string{
		{string(schema.BreakdownActivity), fmtFloat(d.Activity.Score), fmt.Sprintf(intFmt+" active", int(d.Activity.Detail))},
		{string(schema.BreakdownAppSwitch), fmtFloat(d.AppSwitch.Score), fmtFloat(d.AppSwitch.Detail) + " mean"},
		{string(schema.BreakdownFlowStreak), fmtFloat(d.FlowStreak.Score), fmt.Sprintf(intFmt+" periods", int(d.FlowStreak.Detail))},
		{"total", fmtFloat(p.Score), scoreLabel(p.Score, cfg)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	state := "not persisted"
	if persisted {
		state = fmt.Sprintf("persisted as period %d", p.ID)
	}
	_, err := fmt.Fprintf(w, "Window %s - %s (%s)\n",
		p.StartTime.Local().Format(timeLayout), p.EndTime.Local().Format(timeLayout), state)
	return err
}

// writePeriodsCSV writes the periods in CSV format.
func writePeriodsCSV(w io.Writer, periods []schema.FlowPeriod, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"id", "start_time", "end_time", "score", "label",
		"activity_score", "active_states",
		"app_switch_score", "mean_app_switches",
		"flow_streak_score", "streak_count",
		"created_at",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range periods {
			d := p.Details
			rec := []string{
				strconv.FormatInt(p.ID, 10),
				p.StartTime.Format(contract.DateTimeFormat),
				p.EndTime.Format(contract.DateTimeFormat),
				fmtFloat(p.Score),
				schema.GetPlainLabel(p.Score),
				fmtFloat(d.Activity.Score),
				fmt.Sprintf(intFmt, int(d.Activity.Detail)),
				fmtFloat(d.AppSwitch.Score),
				fmtFloat(d.AppSwitch.Detail),
				fmtFloat(d.FlowStreak.Score),
				fmt.Sprintf(intFmt, int(d.FlowStreak.Detail)),
				p.CreatedAt.Format(contract.DateTimeFormat),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePeriodsJSON writes the periods in JSON format with labels added.
func writePeriodsJSON(w io.Writer, periods []schema.FlowPeriod) error {
	return writeJSON(w, schema.EnrichPeriods(periods))
}
