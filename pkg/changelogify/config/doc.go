/*
Package config provides type-safe configuration extraction and the typed
Settings value consumed by the changelog pipeline.

# Basic Usage

Config wraps a decoded document and returns defaults for missing or
mistyped keys:

	cfg, err := config.FromFile("changelogify.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	settings := config.SettingsFrom(cfg)

FromFile understands .yaml, .yml, .json and .toml.

# Settings

SettingsFrom reads enabled_sources, event_mapping, date_range_type,
cron_enabled, cron_frequency, version_policy and render_format. Enum values
outside their allowed set are replaced with defaults (since_last_release,
weekly, strict, html). A missing enabled_sources key enables only the native
source; an explicit empty list enables none.

# Reloading

Watch re-reads the file on change and passes the result to a callback:

	w, err := config.Watch(ctx, path, func(cfg config.Config) {
	    pipeline.Store(build(config.SettingsFrom(cfg)))
	})
	defer w.Close()

# Thread Safety

Config and Settings are safe for concurrent read access. Neither is modified
after creation.
*/
package config
