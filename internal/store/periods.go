package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/schema"
)

const periodColumns = `start_time, end_time, score, activity_score, active_states,
	app_switch_score, mean_app_switches, flow_streak_score, streak_count, created_at`

// GetFlowPeriodsBetween returns periods lying fully inside [start, end] in creation order.
func (s *SQLStore) GetFlowPeriodsBetween(ctx context.Context, start, end time.Time) ([]schema.FlowPeriod, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.rebind(fmt.Sprintf(
		"SELECT period_id, %s FROM %s WHERE start_time >= ? AND end_time <= ? ORDER BY period_id",
		periodColumns, flowPeriodsTable))

	rows, err := s.db.QueryContext(ctx, query, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query flow periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var periods []schema.FlowPeriod
	for rows.Next() {
		period, err := scanFlowPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flow periods: %w", err)
	}
	return periods, nil
}

// GetLastFlowPeriod returns the most recently created period, or nil when there is none.
func (s *SQLStore) GetLastFlowPeriod(ctx context.Context) (*schema.FlowPeriod, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT period_id, %s FROM %s ORDER BY period_id DESC LIMIT 1",
		periodColumns, flowPeriodsTable)

	period, err := scanFlowPeriod(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// CreateFlowPeriod stores a new period and returns its ID.
// A zero CreatedAt is filled from the store clock.
func (s *SQLStore) CreateFlowPeriod(ctx context.Context, period schema.FlowPeriod) (int64, error) {
	if s.disabled() {
		return 0, nil
	}
	if !period.Window().Valid() {
		return 0, fmt.Errorf("flow period must end after it starts (%s - %s)", period.StartTime, period.EndTime)
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = s.now()
	}

	d := period.Details
	args := []any{
		toMillis(period.StartTime), toMillis(period.EndTime), period.Score,
		d.Activity.Score, int64(d.Activity.Detail),
		d.AppSwitch.Score, d.AppSwitch.Detail,
		d.FlowStreak.Score, int64(d.FlowStreak.Detail),
		toMillis(period.CreatedAt),
	}
	placeholders := "?, ?, ?, ?, ?, ?, ?, ?, ?, ?"

	if s.backend == schema.PostgreSQLBackend {
		query := s.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING period_id",
			flowPeriodsTable, periodColumns, placeholders))
		var id int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert flow period: %w", err)
		}
		return id, nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", flowPeriodsTable, periodColumns, placeholders)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert flow period: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read flow period id: %w", err)
	}
	return id, nil
}

func scanFlowPeriod(row rowScanner) (schema.FlowPeriod, error) {
	var (
		p                         schema.FlowPeriod
		start, end, created       int64
		activeStates, streakCount int64
	)
	err := row.Scan(&p.ID, &start, &end, &p.Score,
		&p.Details.Activity.Score, &activeStates,
		&p.Details.AppSwitch.Score, &p.Details.AppSwitch.Detail,
		&p.Details.FlowStreak.Score, &streakCount,
		&created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan flow period: %w", err)
	}
	p.StartTime = fromMillis(start)
	p.EndTime = fromMillis(end)
	p.CreatedAt = fromMillis(created)
	p.Details.Activity.Detail = float64(activeStates)
	p.Details.FlowStreak.Detail = float64(streakCount)
	return p, nil
}
