package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// GetStatus returns status information about the flow store.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	var version sql.NullInt64
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT version FROM %s LIMIT 1", migrationsTable))
	if err := row.Scan(&version); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return status, fmt.Errorf("failed to get schema version: %w", err)
	}
	if version.Valid {
		status.SchemaVersion = uint(version.Int64)
	}

	for _, table := range Tables {
		var count int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalPeriods = status.TableSizes[flowPeriodsTable]

	last, err := s.GetLastFlowPeriod(ctx)
	if err != nil {
		return status, err
	}
	if last != nil {
		status.LastPeriodTime = last.EndTime
	}

	latest, err := s.GetLatestActivityState(ctx)
	if err != nil {
		return status, err
	}
	if latest != nil {
		status.LastActivityTime = latest.EndTime
	}

	return status, nil
}

// Clear removes all flow data for the specified backend.
// For SQLite, it deletes the database file and its WAL companions.
// For SQL backends (MySQL/PostgreSQL), it drops the tables including the migration bookkeeping.
// For NoneBackend, it does nothing.
func Clear(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove SQLite database file %s: %w", p, err)
			}
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := openDB(backend, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		for _, table := range append([]string{migrationsTable}, Tables...) {
			if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}
