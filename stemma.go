package stemma

import (
	_ "embed"
	"log/slog"

	"github.com/stemma-md/stemma/internal/platform"
	"github.com/stemma-md/stemma/pkg/core"
)

// Version exposes the version of the library.
//
//go:embed VERSION
var Version string

// --- Types ---

// Document identifies a single text file inside a vault.
type Document = core.Document

// Config holds the name-derivation and rename-trigger settings.
type Config = core.Config

// Service routes document notifications into the rename coordinator.
type Service = core.Service

// RenameResult reports the outcome of a single rename decision.
type RenameResult = core.RenameResult

// BatchSummary reports the result of a rename-all run.
type BatchSummary = core.BatchSummary

// --- Functions ---

// Derive computes a filesystem-safe filename stem from document content.
func Derive(content string, cfg Config) string {
	return core.Derive(content, cfg)
}

// DefaultConfig returns the configuration used when none has been persisted.
func DefaultConfig() Config {
	return core.DefaultConfig()
}

// --- Configuration ---

// Option defines a functional option for configuring stemma.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage collaborator.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithNotifier allows injecting a custom notification source.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithConfig bypasses the persisted settings and uses the given
// configuration directly.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".stemma").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithIgnore adds doublestar patterns excluded from watching.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// --- Factory ---

// New creates a new stemma Service for the vault at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}
