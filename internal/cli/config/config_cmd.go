package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/output"
)

var (
	cGreen = color.New(color.FgGreen).SprintFunc()
	cDim   = color.New(color.Faint).SprintFunc()
	cBold  = color.New(color.Bold).SprintFunc()
)

// ConfigCmd is the "config" command group.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit the relnotes configuration",
	Long: `Show and edit the relnotes configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (RELNOTES_*, scalar keys only)
  2. Project config (--config, or .relnotes.yml / .relnotes.json / .github/relnotes.*)
  3. User config (~/.config/relnotes/config.yml)
  4. Built-in defaults`,
	Example: `  relnotes config show
  relnotes config keys
  relnotes config set max_pull_requests 500
  relnotes config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys with their defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in a YAML config file",
	Long: `Set a configuration value. Lists are written comma-separated
(e.g. "skip-changelog,wip"). Categories, label extractors and transformers
can only be edited in the file itself.

The project config is edited unless --user is given; a new .relnotes.yml is
created when the project has none.`,
	Example: `  relnotes config set sort ASC
  relnotes config set ignore_labels "skip-changelog,wip"
  relnotes config set max_back_track_time_days 90 --user`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented config file with every default",
	Long: `Write a commented config file holding every option at its default.

By default .relnotes.yml is created in the given directory (or the current
one). Use --user to create the user-level config instead. An existing file
is left unchanged unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd, configKeysCmd, configSetCmd, configInitCmd)

	configShowCmd.Flags().Bool("sources", false, "Show which layer supplied each key")
	configSetCmd.Flags().Bool("user", false, "Edit the user-level config")
	configInitCmd.Flags().Bool("user", false, "Create the user-level config")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
}

// configFlag returns the root --config value, if the command has one.
func configFlag(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag(cmd))
	if err != nil {
		return clierrors.ConfigLoadFailed(err)
	}
	out := cmd.OutOrStdout()

	showSources, _ := cmd.Flags().GetBool("sources")
	if showSources {
		return writeSources(out, cfg)
	}

	if len(cfg.Files) == 0 {
		fmt.Fprintln(out, "# no config files found, showing defaults")
	}
	for _, file := range cfg.Files {
		fmt.Fprintf(out, "# loaded %s\n", file)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}

func writeSources(out io.Writer, cfg *config.Configuration) error {
	keys := make([]string, 0, len(cfg.Sources))
	for key := range cfg.Sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, len(keys))
	for i, key := range keys {
		rows[i] = []string{key, string(cfg.Sources[key])}
	}
	return output.WriteTable(out, []string{"KEY", "SOURCE"}, rows, true)
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	keys := config.SortedKeys()
	rows := make([][]string, len(keys))
	for i, key := range keys {
		schema := config.KnownKeys[key]
		typ := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typ = strings.Join(schema.AllowedValues, "|")
		}
		rows[i] = []string{key, typ, formatDefault(schema.Default), schema.Description}
	}
	return output.WriteTable(cmd.OutOrStdout(), []string{"KEY", "TYPE", "DEFAULT", "DESCRIPTION"}, rows, true)
}

func formatDefault(value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []interface{}:
		if len(v) == 0 {
			return "[]"
		}
		return fmt.Sprintf("(%d entries)", len(v))
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	user, _ := cmd.Flags().GetBool("user")
	path, err := setTargetPath(configFlag(cmd), user)
	if err != nil {
		return err
	}

	if err := config.SetConfigValue(path, key, value); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("cannot set %s", key),
			"List the valid keys with: relnotes config keys")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s in %s\n", cGreen("✓"), cBold(key), value, cDim(path))
	return nil
}

// setTargetPath picks the file "config set" edits: the user config, the
// --config file, the discovered project config, or a new .relnotes.yml.
func setTargetPath(explicit string, user bool) (string, error) {
	if user {
		path, err := config.UserConfigPath()
		if err != nil {
			return "", clierrors.Wrap(err, clierrors.Configuration)
		}
		return path, nil
	}
	if explicit != "" {
		return explicit, nil
	}
	if path := config.FindProjectConfig("."); path != "" {
		return path, nil
	}
	return ".relnotes.yml", nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	var path string
	if user {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return clierrors.Wrap(err, clierrors.Configuration)
		}
		path = userPath
	} else {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		resolved, err := ResolvePath(dir)
		if err != nil {
			return clierrors.Wrap(err, clierrors.Argument)
		}
		path = filepath.Join(resolved, ".relnotes.yml")
	}

	out := cmd.OutOrStdout()
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if exists && !force {
		fmt.Fprintf(out, "%s %s: exists at %s (use --force to overwrite)\n", cGreen("✓"), cBold("Config"), cDim(path))
		return nil
	}

	if err := writeDefaultConfig(path); err != nil {
		return clierrors.FileNotWritable(path, err)
	}

	verb := "created"
	if exists {
		verb = "overwritten"
	}
	fmt.Fprintf(out, "%s %s: %s at %s\n", cGreen("✓"), cBold("Config"), verb, cDim(path))
	return nil
}

func writeDefaultConfig(path string) error {
	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644)
}
