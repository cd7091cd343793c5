package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.NotNil(t, config.New(nil).Raw())
	assert.False(t, config.New(nil).Has("x"))
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"key exists", map[string]any{"name": "alice"}, "alice"},
		{"key missing", map[string]any{"other": "value"}, "default"},
		{"empty string", map[string]any{"name": ""}, ""},
		{"wrong type", map[string]any{"name": 123}, "default"},
		{"nil map", nil, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).String("name", "default"))
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want time.Duration
	}{
		{"string", "30s", 30 * time.Second},
		{"int seconds", 60, time.Minute},
		{"int64 seconds", int64(45), 45 * time.Second},
		{"float seconds", 1.5, 1500 * time.Millisecond},
		{"duration", 5 * time.Minute, 5 * time.Minute},
		{"invalid string", "soon", 10 * time.Second},
		{"wrong type", true, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"timeout": tt.val})
			assert.Equal(t, tt.want, cfg.Duration("timeout", 10*time.Second))
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"string 1", "1", true},
		{"string 0", "0", false},
		{"int 1", 1, true},
		{"int64 0", int64(0), false},
		{"garbage string", "maybe", true},
		{"wrong type", []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"flag": tt.val})
			assert.Equal(t, tt.want, cfg.Bool("flag", true))
		})
	}
}

func TestInt(t *testing.T) {
	cfg := config.New(map[string]any{
		"a": 3,
		"b": int64(4),
		"c": 5.0,
		"d": 5.5,
		"e": "6",
	})

	assert.Equal(t, 3, cfg.Int("a", -1))
	assert.Equal(t, 4, cfg.Int("b", -1))
	assert.Equal(t, 5, cfg.Int("c", -1))
	assert.Equal(t, -1, cfg.Int("d", -1))
	assert.Equal(t, -1, cfg.Int("e", -1))
	assert.Equal(t, -1, cfg.Int("missing", -1))
}

func TestStringSlice(t *testing.T) {
	cfg := config.New(map[string]any{
		"typed":  []string{"a", "b"},
		"any":    []any{"x", "y"},
		"mixed":  []any{"x", 1},
		"scalar": "a",
	})

	assert.Equal(t, []string{"a", "b"}, cfg.StringSlice("typed", nil))
	assert.Equal(t, []string{"x", "y"}, cfg.StringSlice("any", nil))
	assert.Equal(t, []string{"d"}, cfg.StringSlice("mixed", []string{"d"}))
	assert.Equal(t, []string{"d"}, cfg.StringSlice("scalar", []string{"d"}))
	assert.Equal(t, []string{"d"}, cfg.StringSlice("missing", []string{"d"}))
}

func TestStringMap(t *testing.T) {
	cfg := config.New(map[string]any{
		"typed": map[string]string{"a": "b"},
		"any":   map[string]any{"post_publish": "changed", "bad": 3},
		"list":  []any{"x"},
	})

	assert.Equal(t, map[string]string{"a": "b"}, cfg.StringMap("typed", nil))
	assert.Equal(t, map[string]string{"post_publish": "changed"}, cfg.StringMap("any", nil))
	assert.Nil(t, cfg.StringMap("list", nil))
	assert.Nil(t, cfg.StringMap("missing", nil))
}

func TestSub(t *testing.T) {
	cfg := config.New(map[string]any{
		"database": map[string]any{"driver": "sqlite", "dsn": "x.db"},
		"flat":     "value",
	})

	db := cfg.Sub("database")
	assert.Equal(t, "sqlite", db.String("driver", ""))
	assert.Equal(t, "x.db", db.String("dsn", ""))

	assert.False(t, cfg.Sub("flat").Has("anything"))
	assert.NotNil(t, cfg.Sub("missing").Raw())
}

func TestAnyAndHas(t *testing.T) {
	cfg := config.New(map[string]any{"k": 1})
	assert.Equal(t, 1, cfg.Any("k", nil))
	assert.Equal(t, "d", cfg.Any("x", "d"))
	assert.True(t, cfg.Has("k"))
	assert.False(t, cfg.Has("x"))
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"c.yaml": "date_range_type: last_7_days\nenabled_sources:\n  - native\n  - simple_history\nevent_mapping:\n  post_publish: changed\n",
		"c.yml":  "date_range_type: last_7_days\nenabled_sources: [native, simple_history]\nevent_mapping: {post_publish: changed}\n",
		"c.json": `{"date_range_type":"last_7_days","enabled_sources":["native","simple_history"],"event_mapping":{"post_publish":"changed"}}`,
		"c.toml": "date_range_type = \"last_7_days\"\nenabled_sources = [\"native\", \"simple_history\"]\n\n[event_mapping]\npost_publish = \"changed\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			cfg, err := config.FromFile(path)
			require.NoError(t, err)

			s := config.SettingsFrom(cfg)
			assert.Equal(t, config.RangeLast7Days, s.DateRangeType)
			assert.Equal(t, []string{"native", "simple_history"}, s.EnabledSources)
			assert.Equal(t, map[string]string{"post_publish": "changed"}, s.EventMapping)
		})
	}
}

func TestFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "c.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0o600))
	_, err = config.FromFile(ini)
	assert.ErrorContains(t, err, "unsupported config file extension")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = config.FromFile(bad)
	assert.ErrorContains(t, err, "parse json")

	_, err = config.FromTOML([]byte("= nope"))
	assert.ErrorContains(t, err, "parse toml")

	_, err = config.FromYAML([]byte("a: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")
}
