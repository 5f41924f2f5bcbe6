// Package config provides configuration management for idce2e with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (IDCE2E_* prefix, plus TEST_OPERATION_TIMEOUT_MS and BASE_ASSETS_URL)
//  3. Project config (.idce2e/config.yaml)
//  4. Global config (~/.idce2e/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/drupal or other internal packages.
package config

import "time"

// redacted replaces secrets in displayed configuration.
const redacted = "********"

// Config is the root configuration structure for idce2e.
type Config struct {
	// Site identifies the CMS under test and the account used to drive it.
	Site SiteConfig `yaml:"site" json:"site" mapstructure:"site"`

	// Poll contains the default deadline for eventually-consistent checks.
	Poll PollConfig `yaml:"poll" json:"poll" mapstructure:"poll"`

	// Migration contains settings for CSV migrations run through the UI.
	Migration MigrationConfig `yaml:"migration" json:"migration" mapstructure:"migration"`

	// Probe contains settings for plain HTTP checks of stored binaries.
	Probe ProbeConfig `yaml:"probe" json:"probe" mapstructure:"probe"`

	// Browser contains settings for the Chrome session.
	Browser BrowserConfig `yaml:"browser" json:"browser" mapstructure:"browser"`

	// JSONAPI contains settings for reading content back over JSON:API.
	JSONAPI JSONAPIConfig `yaml:"jsonapi" json:"jsonapi" mapstructure:"jsonapi"`
}

// SiteConfig identifies the site under test.
type SiteConfig struct {
	// BaseURL is the absolute URL of the Drupal site.
	// Default: https://islandora-idc.traefik.me
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`

	// Username is the administrator account used to log in.
	// Default: "admin"
	Username string `yaml:"username" json:"username" mapstructure:"username"`

	// Password is the account password. Prefer IDCE2E_SITE_PASSWORD over the file.
	Password string `yaml:"password,omitempty" json:"password,omitempty" mapstructure:"password"`
}

// PollConfig contains the default poll deadline.
type PollConfig struct {
	// Timeout is the deadline used when a caller does not pass one.
	// TEST_OPERATION_TIMEOUT_MS overrides it.
	// Default: 30 seconds
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// MigrationConfig contains settings for migrations.
type MigrationConfig struct {
	// Timeout bounds the wait for a migration banner. Zero means poll.timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// BenignErrorPatterns lists case-insensitive substrings of error banner
	// messages that never fail a migration.
	// Default: ["security update"]
	BenignErrorPatterns []string `yaml:"benign_error_patterns" json:"benign_error_patterns" mapstructure:"benign_error_patterns"`
}

// ProbeConfig contains settings for HTTP probes.
type ProbeConfig struct {
	// Timeout bounds a single probe request.
	// Default: 5 seconds
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// Method is HEAD or GET.
	// Default: "HEAD"
	Method string `yaml:"method" json:"method" mapstructure:"method"`

	// ForceHTTPS upgrades http URLs to https before probing.
	ForceHTTPS bool `yaml:"force_https" json:"force_https" mapstructure:"force_https"`

	// Pace is the pause between unsatisfied probes of one URL.
	// Default: 250 milliseconds
	Pace time.Duration `yaml:"pace" json:"pace" mapstructure:"pace"`
}

// BrowserConfig contains settings for the Chrome session.
type BrowserConfig struct {
	// Headless runs Chrome without a window.
	// Default: true
	Headless bool `yaml:"headless" json:"headless" mapstructure:"headless"`

	// Width and Height size the browser window.
	// Default: 1920x1080
	Width  int `yaml:"width" json:"width" mapstructure:"width"`
	Height int `yaml:"height" json:"height" mapstructure:"height"`

	// ExecPath is the Chrome binary. Empty means look it up on PATH.
	ExecPath string `yaml:"exec_path" json:"exec_path" mapstructure:"exec_path"`

	// ElementWait bounds the wait for a form element before acting on it.
	// Default: 10 seconds
	ElementWait time.Duration `yaml:"element_wait" json:"element_wait" mapstructure:"element_wait"`

	// ArtifactsDir receives failure screenshots and downloads. Empty disables
	// screenshots.
	// Default: "artifacts"
	ArtifactsDir string `yaml:"artifacts_dir" json:"artifacts_dir" mapstructure:"artifacts_dir"`
}

// JSONAPIConfig contains settings for the JSON:API client.
type JSONAPIConfig struct {
	// Timeout bounds a single JSON:API request.
	// Default: 30 seconds
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// AssetsBaseURL is the static assets host migrations fetch media from.
	// BASE_ASSETS_URL overrides it.
	AssetsBaseURL string `yaml:"assets_base_url" json:"assets_base_url" mapstructure:"assets_base_url"`
}

// MigrationTimeout returns the deadline for a migration banner.
func (c *Config) MigrationTimeout() time.Duration {
	if c.Migration.Timeout > 0 {
		return c.Migration.Timeout
	}
	return c.Poll.Timeout
}

// Redacted returns a copy safe to display, with the site password masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Migration.BenignErrorPatterns = append([]string(nil), c.Migration.BenignErrorPatterns...)
	if out.Site.Password != "" {
		out.Site.Password = redacted
	}
	return &out
}
