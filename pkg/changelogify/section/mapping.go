package section

import "github.com/randalmurphal/changelogify/pkg/changelogify/event"

// Fallback is the section for actions no mapping mentions.
const Fallback = Changed

var defaultMapping = map[string]Section{
	event.ActionPostPublish:       Added,
	event.ActionPostModified:      Changed,
	event.ActionPluginInstalled:   Added,
	event.ActionPluginActivated:   Changed,
	event.ActionPluginDeactivated: Changed,
	event.ActionPluginUpgraded:    Changed,
	event.ActionPluginUninstalled: Removed,
	event.ActionThemeInstalled:    Added,
	event.ActionThemeActivated:    Changed,
	event.ActionThemeDeleted:      Removed,
	event.ActionPlatformUpdated:   Security,
}

// DefaultMapping returns a copy of the built-in action to section table.
func DefaultMapping() map[string]Section {
	out := make(map[string]Section, len(defaultMapping))
	for k, v := range defaultMapping {
		out[k] = v
	}
	return out
}

// Mapping resolves actions to sections. User entries take precedence over
// the defaults key by key.
type Mapping struct {
	merged map[string]Section
}

// NewMapping merges user overrides onto the default table. User values are
// kept verbatim even when they name no known section; Resolve reports them
// as-is and the Categorizer drops such events.
func NewMapping(user map[string]string) Mapping {
	merged := DefaultMapping()
	for action, sec := range user {
		merged[action] = Section(sec)
	}
	return Mapping{merged: merged}
}

// Resolve returns the section for action, or Fallback if unmapped.
func (m Mapping) Resolve(action string) Section {
	if sec, ok := m.merged[action]; ok {
		return sec
	}
	return Fallback
}

// Entries returns a copy of the merged table.
func (m Mapping) Entries() map[string]Section {
	out := make(map[string]Section, len(m.merged))
	for k, v := range m.merged {
		out[k] = v
	}
	return out
}
