package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stemma-md/stemma/pkg/adapters/fs"
	"github.com/stemma-md/stemma/pkg/core"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the persisted settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Print the settings (or a single key)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := fs.NewSettings(vaultPath, "", slog.Default())
		cfg, err := settings.Load()
		if err != nil {
			fatal("Failed to load config", err)
		}

		if len(args) == 0 {
			out, err := yaml.Marshal(cfg)
			if err != nil {
				fatal("Failed to render config", err)
			}
			fmt.Print(string(out))
			return
		}

		value, err := configValue(cfg, args[0])
		if err != nil {
			fatal("Unknown key", err)
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting, rejecting out-of-range values",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		settings := fs.NewSettings(vaultPath, "", slog.Default())

		cfg, err := settings.Update(func(c *core.Config) error {
			return applyValue(c, args[0], args[1])
		})
		if err != nil {
			// The prior value stays in effect.
			fatal("Rejected", err)
		}

		value, _ := configValue(cfg, args[0])
		fmt.Printf("%s = %s\n", args[0], value)
	},
}

func configValue(cfg core.Config, key string) (string, error) {
	switch key {
	case "watched_containers":
		return strings.Join(cfg.WatchedContainers, ","), nil
	case "include_subfolders":
		return strconv.FormatBool(cfg.IncludeSubfolders), nil
	case "max_stem_length":
		return strconv.Itoa(cfg.MaxStemLength), nil
	case "debounce_interval_ms":
		return strconv.Itoa(cfg.DebounceIntervalMs), nil
	case "use_leading_heading":
		return strconv.FormatBool(cfg.UseLeadingHeading), nil
	case "stop_at_first_line":
		return strconv.FormatBool(cfg.StopAtFirstLine), nil
	case "skip_front_matter":
		return strconv.FormatBool(cfg.SkipFrontMatter), nil
	case "preserve_emoji":
		return strconv.FormatBool(cfg.PreserveEmoji), nil
	}
	return "", fmt.Errorf("no such setting: %s", key)
}

func applyValue(cfg *core.Config, key, value string) error {
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return b, nil
	}
	parseInt := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s expects a number, got %q", key, value)
		}
		return n, nil
	}

	var err error
	switch key {
	case "watched_containers":
		// Comma-separated list; "/" stands for the vault root. An empty
		// value clears the list, which makes nothing eligible.
		cfg.WatchedContainers = nil
		for _, c := range strings.Split(value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.WatchedContainers = append(cfg.WatchedContainers, c)
			}
		}
	case "include_subfolders":
		cfg.IncludeSubfolders, err = parseBool()
	case "max_stem_length":
		cfg.MaxStemLength, err = parseInt()
	case "debounce_interval_ms":
		cfg.DebounceIntervalMs, err = parseInt()
	case "use_leading_heading":
		cfg.UseLeadingHeading, err = parseBool()
	case "stop_at_first_line":
		cfg.StopAtFirstLine, err = parseBool()
	case "skip_front_matter":
		cfg.SkipFrontMatter, err = parseBool()
	case "preserve_emoji":
		cfg.PreserveEmoji, err = parseBool()
	default:
		return fmt.Errorf("no such setting: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
