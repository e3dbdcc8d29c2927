package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemma-md/stemma/pkg/core"
)

func TestSettingsLoad(t *testing.T) {
	t.Run("Missing File Yields Defaults", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)
		cfg, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, core.DefaultConfig(), cfg)
	})

	t.Run("Roundtrip Preserves Values", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)

		cfg := core.DefaultConfig()
		cfg.WatchedContainers = []string{"notes", "journal"}
		cfg.MaxStemLength = 72
		cfg.PreserveEmoji = true
		require.NoError(t, s.Save(cfg))

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})

	t.Run("Invalid Persisted Values Fall Back To Defaults", func(t *testing.T) {
		root := t.TempDir()
		s := NewSettings(root, "", nil)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
		require.NoError(t, os.WriteFile(s.Path(), []byte("max_stem_length: 9999\n"), 0644))

		cfg, err := s.Load()
		assert.ErrorIs(t, err, core.ErrConfigInvalid)
		assert.Equal(t, core.DefaultConfig(), cfg)
	})

	t.Run("Garbage Yaml Falls Back To Defaults", func(t *testing.T) {
		root := t.TempDir()
		s := NewSettings(root, "", nil)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
		require.NoError(t, os.WriteFile(s.Path(), []byte("{{{not yaml"), 0644))

		cfg, err := s.Load()
		assert.Error(t, err)
		assert.Equal(t, core.DefaultConfig(), cfg)
	})
}

func TestSettingsSave(t *testing.T) {
	t.Run("Invalid Config Never Reaches Disk", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)

		cfg := core.DefaultConfig()
		cfg.MaxStemLength = 3
		err := s.Save(cfg)
		require.ErrorIs(t, err, core.ErrConfigInvalid)

		_, statErr := os.Stat(s.Path())
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestSettingsUpdate(t *testing.T) {
	t.Run("Valid Edit Persists", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)

		cfg, err := s.Update(func(c *core.Config) error {
			c.MaxStemLength = 30
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.MaxStemLength)

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, 30, loaded.MaxStemLength)
	})

	t.Run("Invalid Edit Retains Prior Value", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)
		_, err := s.Update(func(c *core.Config) error {
			c.MaxStemLength = 30
			return nil
		})
		require.NoError(t, err)

		cfg, err := s.Update(func(c *core.Config) error {
			c.MaxStemLength = 101
			return nil
		})
		require.ErrorIs(t, err, core.ErrConfigInvalid)
		assert.Equal(t, 30, cfg.MaxStemLength, "prior value returned")

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, 30, loaded.MaxStemLength, "prior value persisted")
	})

	t.Run("Failed Mutation Aborts Before Save", func(t *testing.T) {
		s := NewSettings(t.TempDir(), "", nil)
		_, err := s.Update(func(c *core.Config) error {
			c.DebounceIntervalMs = 250
			return nil
		})
		require.NoError(t, err)

		// A mutate callback that errors may leave the scratch copy in a
		// valid but unwanted state (a failed parse zeroing the field).
		// Neither the returned config nor the file may pick it up.
		parseErr := errors.New("expects a number")
		cfg, err := s.Update(func(c *core.Config) error {
			c.DebounceIntervalMs = 0
			return parseErr
		})
		require.ErrorIs(t, err, parseErr)
		assert.Equal(t, 250, cfg.DebounceIntervalMs, "prior value returned")

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, 250, loaded.DebounceIntervalMs, "prior value persisted")
	})
}
