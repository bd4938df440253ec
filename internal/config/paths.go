package config

import (
	"os"
	"path/filepath"
)

// projectConfigNames are searched, in order, when no config file is given.
var projectConfigNames = []string{
	".relnotes.yml",
	".relnotes.yaml",
	".relnotes.json",
	filepath.Join(".github", "relnotes.yml"),
	filepath.Join(".github", "relnotes.yaml"),
	filepath.Join(".github", "relnotes.json"),
}

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/relnotes/config.yml
// - macOS: ~/Library/Application Support/relnotes/config.yml
// - Windows: %APPDATA%\relnotes\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "relnotes", "config.yml"), nil
}

// ProjectConfigPaths returns the candidate project config files below dir.
func ProjectConfigPaths(dir string) []string {
	paths := make([]string, len(projectConfigNames))
	for i, name := range projectConfigNames {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

// FindProjectConfig returns the first existing project config file below
// dir, or "" when there is none.
func FindProjectConfig(dir string) string {
	for _, path := range ProjectConfigPaths(dir) {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
