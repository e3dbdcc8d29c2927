package platform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/stemma-md/stemma/pkg/adapters/fs"
	"github.com/stemma-md/stemma/pkg/core"
)

// New wires a ready core.Service for the vault at path.
//
// Wiring order:
//  1. Resolve the vault path and initialize the filesystem adapter
//     (unless a custom storage was injected).
//  2. Load the persisted configuration from the system dir (unless one
//     was injected).
//  3. Construct the service with storage + notifier + config.
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	storage := o.storage
	notifier := o.notifier

	if storage == nil {
		resolved, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve vault path: %w", err)
		}

		repo := fs.NewRepository(fs.Config{
			Root:      resolved,
			SystemDir: o.systemDir,
			Ignore:    o.ignore,
			Logger:    logger,
		})
		if err := repo.Initialize(context.Background()); err != nil {
			return nil, err
		}
		storage = repo
		if notifier == nil {
			notifier = repo
		}
	}

	cfg, err := resolveConfig(path, o, logger)
	if err != nil {
		return nil, err
	}

	return core.NewService(storage, notifier, cfg, logger)
}

// resolveConfig picks the injected configuration or loads the persisted one.
func resolveConfig(path string, o *options, logger *slog.Logger) (core.Config, error) {
	if o.config != nil {
		if err := o.config.Validate(); err != nil {
			return core.Config{}, err
		}
		return *o.config, nil
	}

	settings := fs.NewSettings(path, o.systemDir, logger)
	cfg, err := settings.Load()
	if err != nil {
		// A broken config file is not fatal: run on defaults, tell the user.
		logger.Warn("ignoring invalid persisted config", "path", settings.Path(), "error", err)
	}
	return cfg, nil
}
