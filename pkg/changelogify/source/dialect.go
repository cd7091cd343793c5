package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

// TimeLayout is the textual timestamp format used by SQLite-backed tables.
const TimeLayout = "2006-01-02 15:04:05"

// Dialect isolates the SQL differences between supported databases.
type Dialect interface {
	// Name returns the database/sql driver name.
	Name() string

	// Rebind rewrites ?-style placeholders into the dialect's style.
	Rebind(query string) string

	// TableExists probes for a table by exact name.
	TableExists(ctx context.Context, db *sql.DB, table string) (bool, error)

	// TimeArg converts a bound time value to the form the dialect compares
	// against stored timestamps.
	TimeArg(t time.Time) any

	// NativeSchema returns the DDL statements for the native event table.
	NativeSchema(table string) []string
}

var (
	// SQLite is the dialect for modernc.org/sqlite.
	SQLite Dialect = sqliteDialect{}
	// Postgres is the dialect for github.com/jackc/pgx/v5/stdlib.
	Postgres Dialect = postgresDialect{}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return n > 0, nil
}

func (sqliteDialect) TimeArg(t time.Time) any {
	return t.UTC().Format(TimeLayout)
}

func (sqliteDialect) NativeSchema(table string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_date TEXT NOT NULL,
			event_type TEXT NOT NULL,
			action TEXT NOT NULL,
			message TEXT NOT NULL,
			user_id INTEGER DEFAULT 0,
			object_id INTEGER DEFAULT 0,
			object_type TEXT DEFAULT '',
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + table + `_event_date ON ` + table + `(event_date)`,
		`CREATE INDEX IF NOT EXISTS idx_` + table + `_event_type ON ` + table + `(event_type)`,
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "pgx" }

// Rebind replaces each ? with $1, $2, ... Queries in this package never
// contain literal question marks.
func (postgresDialect) Rebind(query string) string {
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (postgresDialect) TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return exists, nil
}

func (postgresDialect) TimeArg(t time.Time) any {
	return t.UTC()
}

func (postgresDialect) NativeSchema(table string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id BIGSERIAL PRIMARY KEY,
			event_date TIMESTAMP NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			action VARCHAR(100) NOT NULL,
			message TEXT NOT NULL,
			user_id BIGINT DEFAULT 0,
			object_id BIGINT DEFAULT 0,
			object_type VARCHAR(50) DEFAULT '',
			metadata JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + table + `_event_date ON ` + table + `(event_date)`,
		`CREATE INDEX IF NOT EXISTS idx_` + table + `_event_type ON ` + table + `(event_type)`,
	}
}
