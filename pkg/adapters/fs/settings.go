package fs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stemma-md/stemma/pkg/core"
)

const (
	// DefaultSystemDir is the hidden directory the engine owns inside a vault.
	DefaultSystemDir = ".stemma"

	configFileName = "config.yaml"
)

// Settings persists the engine configuration as YAML inside the vault's
// system directory. Configuration is read-mostly: loaded once at startup
// and re-saved on every edit.
type Settings struct {
	path   string
	logger *slog.Logger
}

// NewSettings creates a settings store for the vault at root.
func NewSettings(root, systemDir string, logger *slog.Logger) *Settings {
	if systemDir == "" {
		systemDir = DefaultSystemDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Settings{
		path:   filepath.Join(root, systemDir, configFileName),
		logger: logger,
	}
}

// Path returns the config file location.
func (s *Settings) Path() string {
	return s.path
}

// Load reads the persisted configuration. A missing file yields the
// defaults. A file that parses but fails validation is rejected: the
// defaults are returned alongside the error so callers keep running.
func (s *Settings) Load() (core.Config, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.DefaultConfig(), nil
	}
	if err != nil {
		return core.DefaultConfig(), fmt.Errorf("failed to read config: %w", err)
	}

	cfg := core.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return core.DefaultConfig(), fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return core.DefaultConfig(), err
	}
	return cfg, nil
}

// Save validates and persists a configuration atomically. Invalid values
// never reach disk.
func (s *Settings) Save(cfg core.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	s.logger.Debug("config saved", "path", s.path)
	return nil
}

// Update loads the configuration, applies mutate, validates and persists.
// When mutate or validation fails the stored configuration is untouched
// and the prior value is returned with the error.
func (s *Settings) Update(mutate func(*core.Config) error) (core.Config, error) {
	prior, err := s.Load()
	if err != nil {
		return prior, err
	}

	next := prior
	next.WatchedContainers = append([]string(nil), prior.WatchedContainers...)
	if err := mutate(&next); err != nil {
		return prior, err
	}

	if err := next.Validate(); err != nil {
		return prior, err
	}
	if err := s.Save(next); err != nil {
		return prior, err
	}
	return next, nil
}
