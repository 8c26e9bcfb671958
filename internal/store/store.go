// Package store persists activity states, flow periods and sessions in SQL databases.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for the flow store.
const (
	activityStatesTable = "activity_states"
	flowPeriodsTable    = "flow_periods"
	flowSessionsTable   = "flow_sessions"
)

// Tables lists every table owned by the store.
var Tables = []string{activityStatesTable, flowPeriodsTable, flowSessionsTable}

// Sentinel errors returned by the store.
var (
	ErrNotFound          = errors.New("not found")
	ErrSessionInProgress = errors.New("a flow session is already in progress")
)

// SQLStore implements contract.Store on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
	newID   func() string
}

var _ contract.Store = &SQLStore{} // Compile-time check

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithClock overrides the clock used for created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) { s.now = now }
}

// WithIDGenerator overrides the session ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLStore) { s.newID = newID }
}

// NewStore migrates the backend to the latest schema and opens a store on it.
func NewStore(backend schema.DatabaseBackend, connStr string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{backend: backend, now: time.Now, newID: newSessionID}
	for _, opt := range opts {
		opt(s)
	}

	switch backend {
	case schema.NoneBackend:
		return s, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// An in-memory database lives only as long as its connection, so it is
	// migrated on the store's own handle.
	inMemory := isInMemory(backend, connStr)
	if !inMemory {
		if _, err := Migrate(backend, connStr, -1); err != nil {
			return nil, fmt.Errorf("failed to prepare %s schema: %w", backend, err)
		}
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connectionHint(backend))
	}
	if inMemory {
		if _, err := migrateDB(backend, db, -1); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare %s schema: %w", backend, err)
		}
	}

	s.db = db
	return s, nil
}

// openDB opens a handle for the backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err := sql.Open("sqlite", sqliteDSN(dbPath))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// sqliteDSN enables WAL and a busy timeout so the collector and the CLI can share the file.
func sqliteDSN(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") || dbPath == ":memory:" {
		return dbPath
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
}

// isInMemory reports whether connStr names a SQLite database without a backing file.
func isInMemory(backend schema.DatabaseBackend, connStr string) bool {
	return backend == schema.SQLiteBackend &&
		(connStr == ":memory:" || strings.Contains(connStr, "mode=memory"))
}

func connectionHint(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
	case schema.PostgreSQLBackend:
		return "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
	default:
		return "Verify the database file is accessible."
	}
}

// Backend returns the configured backend.
func (s *SQLStore) Backend() schema.DatabaseBackend {
	return s.backend
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// disabled reports whether the store discards writes and returns empty reads.
func (s *SQLStore) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// rebind rewrites ? placeholders into $N for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toMillis converts a time into the stored epoch milliseconds.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts stored epoch milliseconds into a UTC time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
