package release_test

import (
	"testing"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/stretchr/testify/assert"
)

func TestSuggestNext_Strict(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"1.2.3", "1.2.4"},
		{"0.0.0", "0.0.1"},
		{"10.20.99", "10.20.100"},
		{"01.2.3", "1.2.4"},
		{"v1", "1.0.0"},
		{"v1.2.3", "1.0.0"},
		{"1.2", "1.0.0"},
		{"1.2.3.4", "1.0.0"},
		{"", "1.0.0"},
		// A pre-release suffix resets under the strict policy.
		{"2.5.0-beta", "1.0.0"},
		{"1.2.99999999999999999999", "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			got := release.SuggestNext(&release.Release{Version: tt.last}, config.VersionStrict)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestNext_Lenient(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"1.2.3", "1.2.4"},
		{"2.5.0-beta", "2.5.1"},
		{"2.5.0+build.7", "2.5.1"},
		{"v1.2.3", "1.2.4"},
		{"v1", "1.0.0"},
		{"release-3", "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			got := release.SuggestNext(&release.Release{Version: tt.last}, config.VersionLenient)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestNext_NoPreviousRelease(t *testing.T) {
	assert.Equal(t, "1.0.0", release.SuggestNext(nil, config.VersionStrict))
	assert.Equal(t, "1.0.0", release.SuggestNext(nil, config.VersionLenient))
}
