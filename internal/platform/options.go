package platform

import (
	"log/slog"

	"github.com/stemma-md/stemma/pkg/core"
)

// options holds the internal configuration for the stemma service.
type options struct {
	storage   core.Storage
	notifier  core.Notifier
	logger    *slog.Logger
	config    *core.Config
	systemDir string
	ignore    []string
}

// Option defines a functional option for configuring stemma.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage allows injecting a custom storage collaborator (e.g. mock,
// remote). If provided, the default filesystem adapter is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithNotifier allows injecting a custom notification source. Defaults to
// the filesystem watcher when the default storage adapter is used.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithConfig bypasses the persisted settings and uses the given
// configuration directly. It must be valid.
func WithConfig(cfg core.Config) Option {
	return func(o *options) {
		c := cfg
		o.config = &c
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".stemma").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithIgnore adds doublestar patterns excluded from watching.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}
