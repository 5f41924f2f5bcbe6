package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhu-idc/idce2e/internal/constants"
	"github.com/jhu-idc/idce2e/internal/errors"
)

// GlobalConfigDir returns the path to the global idce2e directory.
// IDCE2E_HOME overrides the default of ~/.idce2e.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.HomeDir), nil
}

// ProjectConfigDir returns the relative path to the project configuration directory.
func ProjectConfigDir() string {
	return constants.HomeDir
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}

// LogDir returns the directory holding the CLI log file.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}

// SiteLockPath returns the lock file that serializes migrations against the
// host of baseURL.
func SiteLockPath(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse base URL")
	}
	if u.Host == "" {
		return "", errors.Wrapf(errors.ErrEmptyValue, "host of %q", baseURL)
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(strings.ToLower(u.Host), ":", "_") + ".lock"
	return filepath.Join(dir, constants.LocksDir, name), nil
}
