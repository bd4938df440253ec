// Package config loads the release notes configuration using koanf.
// Values are layered with priority: environment variables > project config
// (an explicit file, or .relnotes.{yml,yaml,json} / .github/relnotes.* when
// none is given) > user config (~/.config/relnotes/config.yml) > defaults.
// YAML and JSON files are both accepted; the format follows the extension.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

// EnvPrefix is the prefix of environment variables that override scalar options.
const EnvPrefix = "RELNOTES_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration is the release notes configuration as read from disk.
type Configuration struct {
	Sort                 string               `koanf:"sort" yaml:"sort" validate:"sortorder"`
	Template             string               `koanf:"template" yaml:"template"`
	PRTemplate           string               `koanf:"pr_template" yaml:"pr_template"`
	EmptyTemplate        string               `koanf:"empty_template" yaml:"empty_template"`
	Categories           []changelog.Category `koanf:"categories" yaml:"categories" validate:"dive"`
	IgnoreLabels         []string             `koanf:"ignore_labels" yaml:"ignore_labels"`
	LabelExtractors      []changelog.Rule     `koanf:"label_extractor" yaml:"label_extractor" validate:"dive"`
	Transformers         []changelog.Rule     `koanf:"transformers" yaml:"transformers" validate:"dive"`
	ExcludeMergeBranches []string             `koanf:"exclude_merge_branches" yaml:"exclude_merge_branches"`
	MaxTagsToFetch       int                  `koanf:"max_tags_to_fetch" yaml:"max_tags_to_fetch" validate:"min=1"`
	MaxPullRequests      int                  `koanf:"max_pull_requests" yaml:"max_pull_requests" validate:"min=1"`
	MaxBackTrackTimeDays int                  `koanf:"max_back_track_time_days" yaml:"max_back_track_time_days" validate:"min=1"`

	// Sources records which layer supplied each top-level key.
	Sources map[string]ConfigSource `koanf:"-" yaml:"-"`
	// Files lists the config files that were loaded, lowest priority first.
	Files []string `koanf:"-" yaml:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath is an explicit project config file. It must exist.
	ConfigPath string
	// ProjectDir is searched for a project config when ConfigPath is empty.
	// Empty means the current directory.
	ProjectDir string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
	// UserConfigPath overrides the user-level config location.
	UserConfigPath string
}

// Load loads configuration from an explicit file (or the discovered project
// config when path is empty), the user config and the environment.
func Load(path string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: path})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)
	var files []string

	loadDefaults(k, sources)

	if !opts.SkipUserConfig {
		path, err := userConfigPath(opts)
		if err == nil && fileExists(path) {
			if err := loadFile(k, path, SourceUser, sources); err != nil {
				return nil, fmt.Errorf("loading user config: %w", err)
			}
			files = append(files, path)
		}
	}

	projectPath := opts.ConfigPath
	if projectPath != "" {
		if !fileExists(projectPath) {
			return nil, &ValidationError{FilePath: projectPath, Message: "config file not found"}
		}
	} else {
		projectPath = FindProjectConfig(opts.ProjectDir)
	}
	if projectPath != "" {
		if err := loadFile(k, projectPath, SourceProject, sources); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		files = append(files, projectPath)
	}

	if err := loadEnvironmentConfig(k, sources); err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k, lastOr(files, "config"))
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	cfg.Files = files
	return cfg, nil
}

func userConfigPath(opts LoadOptions) (string, error) {
	if opts.UserConfigPath != "" {
		return opts.UserConfigPath, nil
	}
	return UserConfigPath()
}

func loadDefaults(k *koanf.Koanf, sources map[string]ConfigSource) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
		sources[key] = SourceDefault
	}
}

// loadFile validates and loads a YAML or JSON config file.
func loadFile(k *koanf.Koanf, path string, source ConfigSource, sources map[string]ConfigSource) error {
	layer := koanf.New(".")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := ValidateYAMLSyntax(path); err != nil {
			return err
		}
		if err := layer.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
		}
	case ".json":
		if err := layer.Load(file.Provider(path), json.Parser()); err != nil {
			return &ValidationError{FilePath: path, Message: err.Error()}
		}
	default:
		return &ValidationError{FilePath: path, Message: "unsupported config format (use .yml, .yaml or .json)"}
	}

	for _, key := range topLevelKeys(layer) {
		sources[key] = source
	}
	// Lists replace rather than merge, so a file that sets categories
	// drops every default category.
	return k.Merge(layer)
}

// loadEnvironmentConfig loads RELNOTES_* overrides for scalar keys.
func loadEnvironmentConfig(k *koanf.Koanf, sources map[string]ConfigSource) error {
	layer := koanf.New(".")
	if err := layer.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	for _, key := range layer.Keys() {
		sources[key] = SourceEnv
	}
	return k.Merge(layer)
}

// envTransform maps RELNOTES_MAX_PULL_REQUESTS to max_pull_requests.
// Variables that do not name a scalar option are dropped.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	schema, ok := KnownKeys[key]
	if !ok || schema.Type == TypeList {
		return ""
	}
	return key
}

func finalizeConfig(k *koanf.Koanf, filePath string) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, filePath); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Sort = strings.ToUpper(cfg.Sort)
	return &cfg, nil
}

func topLevelKeys(k *koanf.Koanf) []string {
	var keys []string
	for key := range k.Raw() {
		keys = append(keys, key)
	}
	return keys
}

func lastOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

// ToChangelog converts the loaded configuration into the form the changelog
// builder consumes.
func (c *Configuration) ToChangelog() changelog.Configuration {
	return changelog.Configuration{
		Sort:                 c.Sort,
		Template:             c.Template,
		PRTemplate:           c.PRTemplate,
		EmptyTemplate:        c.EmptyTemplate,
		Categories:           c.Categories,
		IgnoreLabels:         c.IgnoreLabels,
		LabelExtractors:      c.LabelExtractors,
		Transformers:         c.Transformers,
		ExcludeMergeBranches: c.ExcludeMergeBranches,
		MaxTagsToFetch:       c.MaxTagsToFetch,
		MaxPullRequests:      c.MaxPullRequests,
		MaxBackTrackTimeDays: c.MaxBackTrackTimeDays,
	}
}
