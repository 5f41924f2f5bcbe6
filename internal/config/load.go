package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jhu-idc/idce2e/internal/constants"
	"github.com/jhu-idc/idce2e/internal/errors"
)

// Keys bound to environment variables outside the IDCE2E_ prefix.
const (
	keyOperationTimeoutMS = "operation_timeout_ms"
	keyAssetsBaseURL      = "jsonapi.assets_base_url"
)

// newViperInstance creates a new Viper instance with the idce2e environment
// prefix (IDCE2E_), key replacer, defaults, and the legacy test variables.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// BindEnv only fails without a key.
	_ = v.BindEnv(keyOperationTimeoutMS, constants.EnvOperationTimeoutMS)
	_ = v.BindEnv(keyAssetsBaseURL, constants.EnvPrefix+"_JSONAPI_ASSETS_BASE_URL", constants.EnvAssetsBaseURL)
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := applyOperationTimeout(v, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// applyOperationTimeout honors TEST_OPERATION_TIMEOUT_MS, which the test
// suites have always given in milliseconds rather than as a duration string.
func applyOperationTimeout(v *viper.Viper, cfg *Config) error {
	raw := strings.TrimSpace(v.GetString(keyOperationTimeoutMS))
	if raw == "" {
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPoll,
			"%s must be a positive number of milliseconds, got %q", constants.EnvOperationTimeoutMS, raw)
	}
	cfg.Poll.Timeout = time.Duration(ms) * time.Millisecond
	return nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (IDCE2E_* prefix, TEST_OPERATION_TIMEOUT_MS, BASE_ASSETS_URL)
//  2. Project config (.idce2e/config.yaml)
//  3. Global config (~/.idce2e/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Global config provides user-wide defaults that can be overridden per-project
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("site.base_url", cfg.Site.BaseURL).
		Dur("poll.timeout", cfg.Poll.Timeout).
		Dur("probe.timeout", cfg.Probe.Timeout).
		Str("probe.method", cfg.Probe.Method).
		Msg("configuration loaded")

	return cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.idce2e/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, constants.ConfigFileName)
	if !fileExists(globalConfigPath) {
		return "", false
	}
	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.idce2e/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the mapstructure tag names exactly, and every
// key needs a default for AutomaticEnv to see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("site.base_url", d.Site.BaseURL)
	v.SetDefault("site.username", d.Site.Username)
	v.SetDefault("site.password", "")

	v.SetDefault("poll.timeout", d.Poll.Timeout.String())

	v.SetDefault("migration.timeout", d.Migration.Timeout.String())
	v.SetDefault("migration.benign_error_patterns", d.Migration.BenignErrorPatterns)

	v.SetDefault("probe.timeout", d.Probe.Timeout.String())
	v.SetDefault("probe.method", d.Probe.Method)
	v.SetDefault("probe.force_https", d.Probe.ForceHTTPS)
	v.SetDefault("probe.pace", d.Probe.Pace.String())

	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.width", d.Browser.Width)
	v.SetDefault("browser.height", d.Browser.Height)
	v.SetDefault("browser.exec_path", d.Browser.ExecPath)
	v.SetDefault("browser.element_wait", d.Browser.ElementWait.String())
	v.SetDefault("browser.artifacts_dir", d.Browser.ArtifactsDir)

	v.SetDefault("jsonapi.timeout", d.JSONAPI.Timeout.String())
	v.SetDefault(keyAssetsBaseURL, d.JSONAPI.AssetsBaseURL)
}

// applyOverrides merges non-zero override values into the config.
//
// IMPORTANT: Boolean fields (Headless, ForceHTTPS) cannot be overridden to
// false here because false is indistinguishable from unset. The CLI handles
// them with cmd.Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Site.BaseURL != "" {
		cfg.Site.BaseURL = overrides.Site.BaseURL
	}
	if overrides.Site.Username != "" {
		cfg.Site.Username = overrides.Site.Username
	}
	if overrides.Site.Password != "" {
		cfg.Site.Password = overrides.Site.Password
	}

	if overrides.Poll.Timeout != 0 {
		cfg.Poll.Timeout = overrides.Poll.Timeout
	}
	if overrides.Migration.Timeout != 0 {
		cfg.Migration.Timeout = overrides.Migration.Timeout
	}
	if len(overrides.Migration.BenignErrorPatterns) > 0 {
		cfg.Migration.BenignErrorPatterns = overrides.Migration.BenignErrorPatterns
	}

	if overrides.Probe.Method != "" {
		cfg.Probe.Method = overrides.Probe.Method
	}
	if overrides.Probe.Timeout != 0 {
		cfg.Probe.Timeout = overrides.Probe.Timeout
	}

	applyBrowserOverrides(cfg, overrides)
}

// applyBrowserOverrides applies browser-related overrides to the config.
func applyBrowserOverrides(cfg, overrides *Config) {
	if overrides.Browser.ExecPath != "" {
		cfg.Browser.ExecPath = overrides.Browser.ExecPath
	}
	if overrides.Browser.ArtifactsDir != "" {
		cfg.Browser.ArtifactsDir = overrides.Browser.ArtifactsDir
	}
	if overrides.Browser.Width != 0 {
		cfg.Browser.Width = overrides.Browser.Width
	}
	if overrides.Browser.Height != 0 {
		cfg.Browser.Height = overrides.Browser.Height
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings
// and comma-separated pattern lists from the environment.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
