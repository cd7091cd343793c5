package source_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   source.Dialect
	}{
		{"sqlite", source.SQLite},
		{"sqlite3", source.SQLite},
		{"pgx", source.Postgres},
		{"postgres", source.Postgres},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := source.DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}

	_, err := source.DialectFor("mysql")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x >= ? AND x <= ?"

	assert.Equal(t, q, source.SQLite.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE x >= $1 AND x <= $2", source.Postgres.Rebind(q))
}

func TestTimeArg(t *testing.T) {
	ts := time.Date(2024, 1, 10, 8, 30, 0, 0, time.FixedZone("X", 2*3600))

	assert.Equal(t, "2024-01-10 06:30:00", source.SQLite.TimeArg(ts))
	assert.Equal(t, ts.UTC(), source.Postgres.TimeArg(ts))
}

func TestNativeSchema_UsesTableName(t *testing.T) {
	for _, d := range []source.Dialect{source.SQLite, source.Postgres} {
		stmts := d.NativeSchema("wp_changelogify_native_events")
		require.NotEmpty(t, stmts)
		for _, stmt := range stmts {
			assert.Contains(t, stmt, "wp_changelogify_native_events")
		}
	}
}

func TestSQLiteTableExists(t *testing.T) {
	h := openHandle(t)
	ctx := context.Background()

	ok, err := source.SQLite.TableExists(ctx, h.DB(), "wp_simple_history")
	require.NoError(t, err)
	assert.False(t, ok)

	createHistoryTable(t, h)

	ok, err = source.SQLite.TableExists(ctx, h.DB(), "wp_simple_history")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewHandle_Prefix(t *testing.T) {
	h := openHandle(t)

	tests := []struct {
		prefix string
		valid  bool
	}{
		{"wp_", true},
		{"", true},
		{"site2_", true},
		{"wp-", false},
		{"wp_; DROP TABLE x", false},
		{"wp.", false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := source.NewHandle(h.DB(), source.SQLite, tt.prefix)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.prefix+"simple_history", got.Table("simple_history"))
			} else {
				assert.True(t, errors.Is(err, source.ErrInvalidPrefix))
			}
		})
	}
}

func TestNewHandle_NilArguments(t *testing.T) {
	_, err := source.NewHandle(nil, source.SQLite, "wp_")
	assert.Error(t, err)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = source.NewHandle(db, nil, "wp_")
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := source.Open("oracle", "dsn", "wp_")
	assert.Error(t, err)
}
