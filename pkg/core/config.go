package core

import (
	"fmt"
	"strings"
	"time"
)

// Bounds for MaxStemLength. Values outside this range are rejected at the
// configuration-edit boundary.
const (
	MinStemLength = 10
	MaxStemLength = 100
)

// Config holds the name-derivation and rename-trigger settings.
// It is a plain value object: the engine receives a validated Config and
// never reads host state directly.
type Config struct {
	// WatchedContainers lists the vault-relative folders whose documents are
	// renamed automatically. "" means the vault root. An empty list means
	// nothing is eligible.
	WatchedContainers []string `yaml:"watched_containers"`

	// IncludeSubfolders extends each watched container to its whole subtree
	// (path-segment-aligned prefix match).
	IncludeSubfolders bool `yaml:"include_subfolders"`

	// MaxStemLength is the truncation threshold, in [MinStemLength, MaxStemLength].
	MaxStemLength int `yaml:"max_stem_length"`

	// DebounceIntervalMs defers renames until this many milliseconds have
	// passed since the last edit. 0 renames immediately.
	DebounceIntervalMs int `yaml:"debounce_interval_ms"`

	// UseLeadingHeading derives the name from a leading markdown heading
	// when the document starts with one.
	UseLeadingHeading bool `yaml:"use_leading_heading"`

	// StopAtFirstLine truncates the derived name at the first line break.
	StopAtFirstLine bool `yaml:"stop_at_first_line"`

	// SkipFrontMatter excludes a leading front-matter block before deriving.
	SkipFrontMatter bool `yaml:"skip_front_matter"`

	// PreserveEmoji keeps emoji code points in the derived name.
	PreserveEmoji bool `yaml:"preserve_emoji"`
}

// DefaultConfig returns the configuration used when none has been persisted.
func DefaultConfig() Config {
	return Config{
		WatchedContainers:  nil,
		IncludeSubfolders:  false,
		MaxStemLength:      50,
		DebounceIntervalMs: 1000,
		UseLeadingHeading:  true,
		StopAtFirstLine:    true,
		SkipFrontMatter:    true,
		PreserveEmoji:      false,
	}
}

// Validate checks the range constraints. Errors wrap ErrConfigInvalid.
func (c Config) Validate() error {
	if c.MaxStemLength < MinStemLength || c.MaxStemLength > MaxStemLength {
		return fmt.Errorf("max_stem_length %d not in [%d, %d]: %w",
			c.MaxStemLength, MinStemLength, MaxStemLength, ErrConfigInvalid)
	}
	if c.DebounceIntervalMs < 0 {
		return fmt.Errorf("debounce_interval_ms %d is negative: %w",
			c.DebounceIntervalMs, ErrConfigInvalid)
	}
	return nil
}

// DebounceInterval returns the debounce setting as a duration.
func (c Config) DebounceInterval() time.Duration {
	return time.Duration(c.DebounceIntervalMs) * time.Millisecond
}

// Watches reports whether documents in the given container are eligible for
// automatic renaming. An empty watch list matches nothing.
func (c Config) Watches(container string) bool {
	container = strings.TrimSuffix(container, "/")
	for _, w := range c.WatchedContainers {
		w = strings.TrimSuffix(strings.TrimPrefix(w, "/"), "/")
		if container == w {
			return true
		}
		if !c.IncludeSubfolders {
			continue
		}
		if w == "" {
			// Watching the vault root with subfolders covers everything.
			return true
		}
		if strings.HasPrefix(container, w+"/") {
			return true
		}
	}
	return false
}
