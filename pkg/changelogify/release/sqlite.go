package release

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists releases to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite release store at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS releases (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			version TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			date_from TEXT NOT NULL,
			date_to TEXT NOT NULL,
			sections TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_releases_created_at
		ON releases(created_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const releaseColumns = `id, version, title, status, date_from, date_to, sections, content, created_at`

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, r *Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	sections, err := json.Marshal(sectionsOrEmpty(r))
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO releases (`+releaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Version, r.Title, string(r.Status),
		formatDate(r.WindowStart), formatDate(r.WindowEnd),
		string(sections), r.RenderedContent, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("save release: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = ?`, id)
	r, err := scanRelease(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load release: %w", err)
	}
	return r, nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest(ctx context.Context) (*Release, error) {
	list, err := s.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, f ListFilter) ([]*Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `SELECT ` + releaseColumns + ` FROM releases WHERE 1 = 1`
	var args []any
	if f.Version != "" {
		query += ` AND version = ?`
		args = append(args, f.Version)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	out := []*Release{}
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var (
		r                Release
		status           string
		dateFrom, dateTo string
		sections         string
		createdAt        int64
	)
	if err := row.Scan(&r.ID, &r.Version, &r.Title, &status, &dateFrom, &dateTo,
		&sections, &r.RenderedContent, &createdAt); err != nil {
		return nil, err
	}

	var err error
	r.Status = Status(status)
	if r.WindowStart, err = parseDate(dateFrom); err != nil {
		return nil, err
	}
	if r.WindowEnd, err = parseDate(dateTo); err != nil {
		return nil, err
	}
	r.Sections = section.NewBucket()
	if err := json.Unmarshal([]byte(sections), r.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

func sectionsOrEmpty(r *Release) *section.Bucket {
	if r.Sections == nil {
		return section.NewBucket()
	}
	return r.Sections
}
