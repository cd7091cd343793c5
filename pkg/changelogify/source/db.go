package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

// DefaultPrefix is the host site's default table prefix.
const DefaultPrefix = "wp_"

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Handle is a database connection plus the dialect and table prefix every
// adapter needs. The prefix is the only value ever interpolated into SQL.
type Handle struct {
	db      *sql.DB
	dialect Dialect
	prefix  string
}

// NewHandle validates prefix and bundles it with db and dialect.
func NewHandle(db *sql.DB, dialect Dialect, prefix string) (*Handle, error) {
	if db == nil {
		return nil, errors.New("nil database")
	}
	if dialect == nil {
		return nil, errors.New("nil dialect")
	}
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return &Handle{db: db, dialect: dialect, prefix: prefix}, nil
}

// Open opens a database with the named driver and wraps it in a Handle.
// SQLite databases are switched to WAL mode.
func Open(driver, dsn, prefix string) (*Handle, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Name(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialect == SQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	h, err := NewHandle(db, dialect, prefix)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// DB returns the underlying connection pool.
func (h *Handle) DB() *sql.DB { return h.db }

// Dialect returns the handle's dialect.
func (h *Handle) Dialect() Dialect { return h.dialect }

// Table returns the prefixed table name.
func (h *Handle) Table(name string) string {
	return h.prefix + name
}

// Close closes the underlying database.
func (h *Handle) Close() error {
	return h.db.Close()
}

func (h *Handle) tableExists(ctx context.Context, table string) (bool, error) {
	return h.dialect.TableExists(ctx, h.db, table)
}

// dayBounds returns query arguments for the half-open range
// [day(w.Start), day(w.End)+24h). Stored text timestamps come in several
// layouts that do not sort uniformly against a single bound, so the SQL
// range covers whole calendar days and clip applies the exact window.
func (h *Handle) dayBounds(w event.Window) (lower, upper any) {
	start := event.Day(w.Start)
	end := event.Day(w.End).Add(24 * time.Hour)
	return h.dialect.TimeArg(start), h.dialect.TimeArg(end)
}

func (h *Handle) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.db.QueryContext(ctx, h.dialect.Rebind(query), args...)
}

func (h *Handle) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.db.ExecContext(ctx, h.dialect.Rebind(query), args...)
}

// scanTime converts a driver timestamp value to UTC. Stored values may be
// time.Time, text in TimeLayout or RFC 3339, or unix seconds.
func scanTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), true
	case []byte:
		return parseTimeText(string(val))
	case string:
		return parseTimeText(val)
	case int64:
		return time.Unix(val, 0).UTC(), true
	case float64:
		return time.Unix(int64(val), 0).UTC(), true
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

func parseTimeText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
