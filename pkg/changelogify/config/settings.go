package config

import "strings"

// RangeType selects how a release window is derived.
type RangeType string

const (
	RangeSinceLastRelease RangeType = "since_last_release"
	RangeCustom           RangeType = "custom"
	RangeLast7Days        RangeType = "last_7_days"
	RangeLast30Days       RangeType = "last_30_days"
)

// Frequency is the scheduled trigger cadence.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// VersionPolicy controls how the next version is suggested.
type VersionPolicy string

const (
	// VersionStrict increments only plain MAJOR.MINOR.PATCH versions and
	// resets anything else to 1.0.0.
	VersionStrict VersionPolicy = "strict"
	// VersionLenient also increments versions carrying a pre-release or
	// build suffix.
	VersionLenient VersionPolicy = "lenient"
)

// RenderFormat selects the rendered content format.
type RenderFormat string

const (
	FormatHTML     RenderFormat = "html"
	FormatMarkdown RenderFormat = "markdown"
)

// Setting keys.
const (
	KeyEnabledSources = "enabled_sources"
	KeyEventMapping   = "event_mapping"
	KeyDateRangeType  = "date_range_type"
	KeyCronEnabled    = "cron_enabled"
	KeyCronFrequency  = "cron_frequency"
	KeyVersionPolicy  = "version_policy"
	KeyRenderFormat   = "render_format"
)

// DefaultSources is used when no enabled_sources key is configured.
var DefaultSources = []string{"native"}

// Settings is the immutable configuration value threaded through the
// pipeline. Build it with SettingsFrom or DefaultSettings; zero values are
// not meaningful.
type Settings struct {
	EnabledSources []string
	EventMapping   map[string]string
	DateRangeType  RangeType
	CronEnabled    bool
	CronFrequency  Frequency
	VersionPolicy  VersionPolicy
	RenderFormat   RenderFormat
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return SettingsFrom(New(nil))
}

// SettingsFrom extracts and sanitizes settings from cfg. Unknown enum
// values fall back to their defaults.
func SettingsFrom(cfg Config) Settings {
	s := Settings{
		EnabledSources: cleanSources(cfg.StringSlice(KeyEnabledSources, DefaultSources)),
		EventMapping:   cleanMapping(cfg.StringMap(KeyEventMapping, nil)),
		DateRangeType:  RangeType(cfg.String(KeyDateRangeType, "")),
		CronEnabled:    cfg.Bool(KeyCronEnabled, false),
		CronFrequency:  Frequency(cfg.String(KeyCronFrequency, "")),
		VersionPolicy:  VersionPolicy(cfg.String(KeyVersionPolicy, "")),
		RenderFormat:   RenderFormat(cfg.String(KeyRenderFormat, "")),
	}
	return s.Sanitize()
}

// Sanitize returns a copy with every enum field forced into its valid set.
func (s Settings) Sanitize() Settings {
	switch s.DateRangeType {
	case RangeSinceLastRelease, RangeCustom, RangeLast7Days, RangeLast30Days:
	default:
		s.DateRangeType = RangeSinceLastRelease
	}

	switch s.CronFrequency {
	case FrequencyDaily, FrequencyWeekly:
	default:
		s.CronFrequency = FrequencyWeekly
	}

	switch s.VersionPolicy {
	case VersionStrict, VersionLenient:
	default:
		s.VersionPolicy = VersionStrict
	}

	switch s.RenderFormat {
	case FormatHTML, FormatMarkdown:
	default:
		s.RenderFormat = FormatHTML
	}

	if s.EventMapping == nil {
		s.EventMapping = map[string]string{}
	}
	if s.EnabledSources == nil {
		s.EnabledSources = []string{}
	}
	return s
}

// IsEnabled reports whether sourceID is in EnabledSources.
func (s Settings) IsEnabled(sourceID string) bool {
	for _, id := range s.EnabledSources {
		if id == sourceID {
			return true
		}
	}
	return false
}

func cleanSources(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// cleanMapping trims keys and values. Section values are not validated here;
// the categorizer drops events mapped outside the known sections.
func cleanMapping(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for action, sec := range in {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		out[action] = strings.TrimSpace(sec)
	}
	return out
}
