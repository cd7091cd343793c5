package source

import (
	"database/sql"
	"strings"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

var commonActions = []string{
	event.ActionPostPublish,
	event.ActionPostModified,
	event.ActionPostTrashed,
	event.ActionPluginInstalled,
	event.ActionPluginActivated,
	event.ActionPluginDeactivated,
	event.ActionPluginUpgraded,
	event.ActionPluginUninstalled,
	event.ActionThemeInstalled,
	event.ActionThemeActivated,
	event.ActionThemeSwitched,
	event.ActionThemeDeleted,
	event.ActionPlatformUpdated,
	event.ActionUserCreated,
	event.ActionUserRoleChanged,
}

// vocabulary returns a lookup table that maps every common action to
// itself plus the store-specific aliases.
func vocabulary(aliases map[string]string) map[string]string {
	table := make(map[string]string, len(commonActions)+len(aliases))
	for _, a := range commonActions {
		table[a] = a
	}
	for k, v := range aliases {
		table[k] = v
	}
	return table
}

// normalize resolves a stored code. NULL or blank codes become "unknown";
// codes missing from the table become "unknown_<code>".
func normalize(table map[string]string, code sql.NullString) string {
	c := strings.TrimSpace(code.String)
	if !code.Valid || c == "" {
		return event.ActionUnknown
	}
	if a, ok := table[c]; ok {
		return a
	}
	return event.UnknownAction(c)
}
