package event

import (
	"sort"
	"strconv"
	"strings"
)

// Common action vocabulary. Every adapter maps its store-specific codes
// onto these identifiers before an event leaves the adapter.
const (
	ActionPostPublish       = "post_publish"
	ActionPostModified      = "post_modified"
	ActionPostTrashed       = "post_trashed"
	ActionPluginInstalled   = "plugin_installed"
	ActionPluginActivated   = "plugin_activated"
	ActionPluginDeactivated = "plugin_deactivated"
	ActionPluginUpgraded    = "plugin_upgraded"
	ActionPluginUninstalled = "plugin_uninstalled"
	ActionThemeInstalled    = "theme_installed"
	ActionThemeActivated    = "theme_activated"
	ActionThemeSwitched     = "theme_switched"
	ActionThemeDeleted      = "theme_deleted"
	ActionPlatformUpdated   = "wordpress_updated"
	ActionUserCreated       = "user_created"
	ActionUserRoleChanged   = "user_role_changed"

	// ActionUnknown is used when a record carries no action code at all.
	ActionUnknown = "unknown"
)

// UnknownAction returns the placeholder action for an unmapped code.
// The result is deterministic: the same code always yields the same action.
func UnknownAction(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ActionUnknown
	}
	return ActionUnknown + "_" + code
}

// UnknownActionInt is UnknownAction for numeric codes.
func UnknownActionInt(code int64) string {
	return UnknownAction(strconv.FormatInt(code, 10))
}

// SortByTimeDesc stable-sorts events most recent first. Events with equal
// timestamps keep their relative order.
func SortByTimeDesc(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].timestamp.After(events[j].timestamp)
	})
}
