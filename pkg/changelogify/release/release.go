// Package release assembles changelog releases from categorized events and
// persists them.
package release

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
)

// Status is the publication state of a release.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPublish Status = "publish"
)

// Release is one generated changelog entry. Releases are not modified
// after creation.
type Release struct {
	ID              string
	Version         string
	Title           string
	Status          Status
	WindowStart     time.Time
	WindowEnd       time.Time
	Sections        *section.Bucket
	RenderedContent string
	CreatedAt       time.Time
}

// TitleFor returns the display title for version.
func TitleFor(version string) string {
	return "Release " + version
}

type wireRelease struct {
	ID        string          `json:"id"`
	Version   string          `json:"version"`
	Title     string          `json:"title"`
	Status    Status          `json:"status"`
	DateFrom  string          `json:"date_from"`
	DateTo    string          `json:"date_to"`
	Sections  *section.Bucket `json:"sections"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

// MarshalJSON encodes window bounds as YYYY-MM-DD dates.
func (r *Release) MarshalJSON() ([]byte, error) {
	sections := r.Sections
	if sections == nil {
		sections = section.NewBucket()
	}
	return json.Marshal(wireRelease{
		ID:        r.ID,
		Version:   r.Version,
		Title:     r.Title,
		Status:    r.Status,
		DateFrom:  formatDate(r.WindowStart),
		DateTo:    formatDate(r.WindowEnd),
		Sections:  sections,
		Content:   r.RenderedContent,
		CreatedAt: r.CreatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Release) UnmarshalJSON(data []byte) error {
	w := wireRelease{Sections: section.NewBucket()}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	start, err := parseDate(w.DateFrom)
	if err != nil {
		return fmt.Errorf("date_from: %w", err)
	}
	end, err := parseDate(w.DateTo)
	if err != nil {
		return fmt.Errorf("date_to: %w", err)
	}

	*r = Release{
		ID:              w.ID,
		Version:         w.Version,
		Title:           w.Title,
		Status:          w.Status,
		WindowStart:     start,
		WindowEnd:       end,
		Sections:        w.Sections,
		RenderedContent: w.Content,
		CreatedAt:       w.CreatedAt.UTC(),
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(event.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return event.ParseDate(s)
}
