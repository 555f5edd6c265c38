// Package paths resolves where quotectl keeps its configuration and its
// collection.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDir is the directory name used under the platform config and data
// roots.
const AppDir = "quotebook"

// Environment overrides.
const (
	EnvConfigDir = "QUOTEBOOK_CONFIG_DIR"
	EnvDataDir   = "QUOTEBOOK_DATA_DIR"
)

// Overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory:
// $XDG_CONFIG_HOME/quotebook or ~/.config/quotebook on Linux, and
// os.UserConfigDir()/quotebook elsewhere.
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory:
// $XDG_DATA_HOME/quotebook or ~/.local/share/quotebook on Linux, and
// os.UserConfigDir()/quotebook elsewhere.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}

		return filepath.Join(dir, AppDir), nil
	}

	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppDir), nil
	}

	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, homeRel, AppDir), nil
}

// ResolveConfigDir applies flag > QUOTEBOOK_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir applies flag > config value > QUOTEBOOK_DATA_DIR >
// DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}

	return fallback()
}
