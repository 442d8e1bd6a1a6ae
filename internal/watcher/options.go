package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the file watcher behavior.
type Options struct {
	// Suffixes limits events to files whose names end with one of these.
	// Empty means every file.
	Suffixes       []string
	IgnorePatterns []string
	SettleDelay    time.Duration
	IgnoreHidden   bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 250 * time.Millisecond
	}

	// A nil pattern list gets the defaults and hides dotfiles. An explicit
	// empty slice keeps the caller's IgnoreHidden choice.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"*.tmp",
			"*.part",
			"*.swp",
			"Thumbs.db",
		}
		o.IgnoreHidden = true
	}
}

// shouldIgnore checks if a path matches ignore patterns.
func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden {
		parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
		for _, part := range parts {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}

// wants reports whether a file's name matches the configured suffixes.
func (o *Options) wants(path string) bool {
	if len(o.Suffixes) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, s := range o.Suffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}
