package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/flowstate/schema"
)

const sessionColumns = "session_id, kind, start_time, end_time"

func newSessionID() string {
	return uuid.NewString()
}

// GetInProgressFlowSession returns the open session, or nil when there is none.
func (s *SQLStore) GetInProgressFlowSession(ctx context.Context) (*schema.FlowSession, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1",
		sessionColumns, flowSessionsTable)

	session, err := scanFlowSession(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// StartFlowSession opens a new session. Only one session may be in progress.
func (s *SQLStore) StartFlowSession(ctx context.Context, kind schema.SessionKind, start time.Time) (schema.FlowSession, error) {
	session := schema.FlowSession{ID: s.newID(), Kind: kind, StartTime: start}
	if s.disabled() {
		return session, nil
	}

	current, err := s.GetInProgressFlowSession(ctx)
	if err != nil {
		return session, err
	}
	if current != nil {
		return session, fmt.Errorf("%w: %s started at %s", ErrSessionInProgress, current.ID, current.StartTime.Format(time.RFC3339))
	}

	query := s.rebind(fmt.Sprintf("INSERT INTO %s (session_id, kind, start_time) VALUES (?, ?, ?)", flowSessionsTable))
	if _, err := s.db.ExecContext(ctx, query, session.ID, string(kind), toMillis(start)); err != nil {
		return session, fmt.Errorf("failed to insert flow session: %w", err)
	}
	return session, nil
}

// EndFlowSession closes the in-progress session with the given ID.
func (s *SQLStore) EndFlowSession(ctx context.Context, id string, end time.Time) error {
	if s.disabled() {
		return nil
	}

	query := s.rebind(fmt.Sprintf(
		"UPDATE %s SET end_time = ? WHERE session_id = ? AND end_time IS NULL AND start_time <= ?",
		flowSessionsTable))
	result, err := s.db.ExecContext(ctx, query, toMillis(end), id, toMillis(end))
	if err != nil {
		return fmt.Errorf("failed to end flow session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end flow session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("in-progress session %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListFlowSessions returns sessions started at or after since, newest first.
func (s *SQLStore) ListFlowSessions(ctx context.Context, since time.Time) ([]schema.FlowSession, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE start_time >= ? ORDER BY start_time DESC",
		sessionColumns, flowSessionsTable))

	rows, err := s.db.QueryContext(ctx, query, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query flow sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []schema.FlowSession
	for rows.Next() {
		session, err := scanFlowSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flow sessions: %w", err)
	}
	return sessions, nil
}

func scanFlowSession(row rowScanner) (schema.FlowSession, error) {
	var (
		session schema.FlowSession
		kind    string
		start   int64
		end     sql.NullInt64
	)
	if err := row.Scan(&session.ID, &kind, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session, err
		}
		return session, fmt.Errorf("failed to scan flow session: %w", err)
	}
	session.Kind = schema.SessionKind(kind)
	session.StartTime = fromMillis(start)
	if end.Valid {
		t := fromMillis(end.Int64)
		session.EndTime = &t
	}
	return session, nil
}
