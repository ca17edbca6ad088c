// Package paths resolves the tripgrid configuration and data directories.
//
// Each directory is picked from the first non-empty source in a fixed
// order; relative values are made absolute against the working directory.
//
//	config dir: --config-dir > TRIPGRID_CONFIG_DIR > platform default
//	data dir:   --data-dir > config.yaml data_dir > TRIPGRID_DATA_DIR > $(CWD)/.tripgrid-db
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "tripgrid"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is set.
const DefaultDataDirName = ".tripgrid-db"

// ConfigFileName is the name of the config file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TRIPGRID_CONFIG_DIR"
	EnvDataDir   = "TRIPGRID_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/tripgrid (fallback ~/.config/tripgrid)
// macOS:   ~/Library/Application Support/tripgrid
// Windows: %APPDATA%/tripgrid
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok || err != nil {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory. configValue is the data_dir key
// of config.yaml.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok, err := firstAbs(flag, configValue, os.Getenv(EnvDataDir)); ok || err != nil {
		return dir, err
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// firstAbs returns the first non-empty candidate as an absolute path.
func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		return abs, true, err
	}
	return "", false, nil
}
