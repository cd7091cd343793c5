package section

import (
	"fmt"
	"html"
	"strings"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
)

// RenderHTML renders non-empty sections in canonical order as stored
// release content:
//
//	<h3>Added</h3>
//	<ul>
//	<li>message</li>
//	</ul>
//
// Messages are HTML-escaped.
func RenderHTML(b *Bucket) string {
	var sb strings.Builder
	for _, sec := range b.NonEmpty() {
		sb.WriteString("<h3>" + sec.Label() + "</h3>\n")
		sb.WriteString("<ul>\n")
		for _, item := range b.list(sec) {
			sb.WriteString("<li>" + html.EscapeString(item) + "</li>\n")
		}
		sb.WriteString("</ul>\n\n")
	}
	return sb.String()
}

// RenderMarkdown renders non-empty sections in canonical order in the
// Keep a Changelog style.
func RenderMarkdown(b *Bucket) string {
	var sb strings.Builder
	for _, sec := range b.NonEmpty() {
		sb.WriteString("### " + sec.Label() + "\n\n")
		for _, item := range b.list(sec) {
			sb.WriteString("- " + item + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderDisplay renders the decorated public markup: one classed div per
// non-empty section with an icon in the heading.
func RenderDisplay(b *Bucket) string {
	var sb strings.Builder
	for _, sec := range b.NonEmpty() {
		key := html.EscapeString(string(sec))
		fmt.Fprintf(&sb, `<div class="sources-section sources-section-%s">`, key)
		sb.WriteString(`<h3 class="sources-section-title">`)
		if icon := sec.Icon(); icon != "" {
			sb.WriteString(`<span class="sources-section-icon">` + icon + `</span> `)
		}
		sb.WriteString(html.EscapeString(sec.Label()))
		sb.WriteString(`</h3><ul class="sources-section-items">`)
		for _, item := range b.list(sec) {
			sb.WriteString("<li>" + html.EscapeString(item) + "</li>")
		}
		sb.WriteString("</ul></div>")
	}
	return sb.String()
}

// Render dispatches on format. Unknown formats render HTML.
func Render(b *Bucket, format config.RenderFormat) string {
	if format == config.FormatMarkdown {
		return RenderMarkdown(b)
	}
	return RenderHTML(b)
}
