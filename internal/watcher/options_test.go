package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 250*time.Millisecond, opts.SettleDelay)
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store")
	assert.Contains(t, opts.IgnorePatterns, "*.part")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		SettleDelay:    time.Second,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, time.Second, opts.SettleDelay)
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{
		IgnoreHidden:   true,
		IgnorePatterns: []string{"*.tmp", ".DS_Store", "*.bak"},
	}
	opts.setDefaults()

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/captions/.abc_captions.srt", true},
		{"hidden directory", "/captions/.git/config", true},
		{"DS_Store", "/captions/.DS_Store", true},
		{"tmp file", "/captions/abc.tmp", true},
		{"captions", "/captions/abc_captions.srt", false},
		{"description", "/captions/abc_description.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_Wants(t *testing.T) {
	opts := Options{Suffixes: []string{"_captions.srt"}}

	assert.True(t, opts.wants("/x/abc_captions.srt"))
	assert.False(t, opts.wants("/x/abc_description.txt"))
	assert.True(t, (&Options{}).wants("/x/anything"), "no suffixes means every file")
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventAdded, "added"},
		{EventModified, "modified"},
		{EventRemoved, "removed"},
		{EventType(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.String())
		})
	}
}
