package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName = "config.toml"
	appDirName     = "filter-complete"
	homeEnv        = "FILTER_COMPLETE_HOME"
)

// GetConfigPath resolves the configuration directory and file path using
// FILTER_COMPLETE_HOME, then XDG rules, then ~/.config/filter-complete.
func GetConfigPath() (string, string, error) {
	if override := strings.TrimSpace(os.Getenv(homeEnv)); override != "" {
		dir := filepath.Clean(override)
		if !filepath.IsAbs(dir) {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return "", "", fmt.Errorf("resolve %s %q: %w", homeEnv, override, err)
			}
			dir = abs
		}
		return dir, filepath.Join(dir, configFileName), nil
	}

	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		dir := filepath.Join(base, appDirName)
		return dir, filepath.Join(dir, configFileName), nil
	}

	home, err := resolveHomeDir()
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(home, ".config", appDirName)
	return dir, filepath.Join(dir, configFileName), nil
}

// resolveHomeDir reads HOME-style variables on each call; os.UserHomeDir
// alone misses Windows HOMEDRIVE/HOMEPATH setups.
func resolveHomeDir() (string, error) {
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		drive := strings.TrimSpace(os.Getenv("HOMEDRIVE"))
		path := strings.TrimSpace(os.Getenv("HOMEPATH"))
		if drive != "" && path != "" {
			home = filepath.Join(drive, path)
		} else {
			home = strings.TrimSpace(os.Getenv("USERPROFILE"))
		}
	}
	if home != "" {
		return filepath.Clean(home), nil
	}

	resolved, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(resolved) == "" {
		if err == nil {
			err = fmt.Errorf("home directory not found")
		}
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Clean(resolved), nil
}
