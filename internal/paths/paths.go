// Package paths resolves where the routeticker CLI keeps its configuration
// and its database. Each directory follows a precedence chain: explicit
// flag first, then config-file value where one applies, then environment
// override, then a platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "routeticker"

// Environment overrides, checked after flags and config values.
const (
	EnvConfigDir = "ROUTETICKER_CONFIG_DIR"
	EnvDataDir   = "ROUTETICKER_DATA_DIR"
)

// DefaultDataDirName is the directory created next to the caller when no
// data-dir override is active, keeping a fresh database repo-local.
const DefaultDataDirName = ".routeticker-db"

// ResolveConfigDir picks the configuration directory: flag, then
// ROUTETICKER_CONFIG_DIR, then the platform config root.
func ResolveConfigDir(flag string) (string, error) {
	return resolve([]string{flag, os.Getenv(EnvConfigDir)}, func() (string, error) {
		return platformDir("XDG_CONFIG_HOME", ".config")
	})
}

// ResolveDataDir picks the data directory: flag, then the config-file
// value, then ROUTETICKER_DATA_DIR, then DefaultDataDirName under the
// working directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve([]string{flag, configValue, os.Getenv(EnvDataDir)}, func() (string, error) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(cwd, DefaultDataDirName), nil
	})
}

// resolve returns the first non-empty candidate made absolute, or the
// fallback when every candidate is empty.
func resolve(candidates []string, fallback func() (string, error)) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}

// platformDir returns the per-user application directory. On Linux it
// honors the given XDG variable with a home-relative fallback; elsewhere it
// defers to os.UserConfigDir (Application Support on macOS, APPDATA on
// Windows).
func platformDir(xdgVar, homeFallback string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeFallback, appName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}
