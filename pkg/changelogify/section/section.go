// Package section classifies events into the fixed set of changelog
// sections and renders the result.
package section

// Section is one of the five changelog headings.
type Section string

const (
	Added    Section = "added"
	Changed  Section = "changed"
	Fixed    Section = "fixed"
	Removed  Section = "removed"
	Security Section = "security"
)

// All lists every section in canonical render order.
var All = []Section{Added, Changed, Fixed, Removed, Security}

var labels = map[Section]string{
	Added:    "Added",
	Changed:  "Changed",
	Fixed:    "Fixed",
	Removed:  "Removed",
	Security: "Security",
}

var icons = map[Section]string{
	Added:    "✨",
	Changed:  "🔄",
	Fixed:    "🐛",
	Removed:  "🗑️",
	Security: "🔒",
}

// Valid reports whether s is one of the five sections.
func (s Section) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label returns the display heading, e.g. "Added".
func (s Section) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Icon returns the decorative glyph used by the display renderer.
func (s Section) Icon() string {
	return icons[s]
}

func (s Section) String() string {
	return string(s)
}
