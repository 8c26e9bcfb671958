package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/schema"
)

const activityColumns = "state, app_switches, start_time, end_time"

// GetActivityStatesBetween returns states lying fully inside [start, end], oldest first.
func (s *SQLStore) GetActivityStatesBetween(ctx context.Context, start, end time.Time) ([]schema.ActivityState, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.rebind(fmt.Sprintf(
		"SELECT %s FROM %s WHERE start_time >= ? AND end_time <= ? ORDER BY start_time, state_id",
		activityColumns, activityStatesTable))

	rows, err := s.db.QueryContext(ctx, query, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []schema.ActivityState
	for rows.Next() {
		state, err := scanActivityState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity states: %w", err)
	}
	return states, nil
}

// GetLatestActivityState returns the state with the latest end time, or nil when there is none.
func (s *SQLStore) GetLatestActivityState(ctx context.Context) (*schema.ActivityState, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY end_time DESC, state_id DESC LIMIT 1",
		activityColumns, activityStatesTable)

	state, err := scanActivityState(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// RecordActivityState stores one bucket.
func (s *SQLStore) RecordActivityState(ctx context.Context, state schema.ActivityState) error {
	if s.disabled() {
		return nil
	}
	if _, err := schema.ParseActivityKind(string(state.State)); err != nil {
		return err
	}
	if state.EndTime.Before(state.StartTime) {
		return fmt.Errorf("activity state ends (%s) before it starts (%s)", state.EndTime, state.StartTime)
	}

	query := s.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?)", activityStatesTable, activityColumns))
	_, err := s.db.ExecContext(ctx, query,
		string(state.State), state.AppSwitches, toMillis(state.StartTime), toMillis(state.EndTime))
	if err != nil {
		return fmt.Errorf("failed to insert activity state: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivityState(row rowScanner) (schema.ActivityState, error) {
	var (
		state      schema.ActivityState
		kind       string
		start, end int64
	)
	if err := row.Scan(&kind, &state.AppSwitches, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state, err
		}
		return state, fmt.Errorf("failed to scan activity state: %w", err)
	}
	state.State = schema.ActivityKind(kind)
	state.StartTime = fromMillis(start)
	state.EndTime = fromMillis(end)
	return state, nil
}
