// Package config provides the relnotes config subcommands.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ResolvePath converts a raw path argument to an absolute path.
//   - "" or ".": the current working directory
//   - "~" or "~/...": expanded to the user's home directory
//   - anything else: resolved against the working directory
func ResolvePath(rawPath string) (string, error) {
	if rawPath == "" || rawPath == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return cwd, nil
	}

	if strings.HasPrefix(rawPath, "~") {
		expanded, err := expandTilde(rawPath)
		if err != nil {
			return "", fmt.Errorf("expanding tilde in path: %w", err)
		}
		rawPath = expanded
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return absPath, nil
}

func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	if path == "~" {
		return u.HomeDir, nil
	}
	return filepath.Join(u.HomeDir, path[2:]), nil
}

// EnsureDirectory creates path as a directory if it does not exist yet.
// It fails when path exists but is a file.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("path exists and is not a directory: %s", path)
	case err == nil:
		return nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("checking path %s: %w", path, err)
	}
}
