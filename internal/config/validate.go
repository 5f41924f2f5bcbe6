package config

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jhu-idc/idce2e/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - site.base_url must be an absolute http(s) URL and site.username must be set
//   - poll.timeout must be positive, migration.timeout must not be negative
//   - probe.method must be HEAD or GET, probe.timeout positive, probe.pace not negative
//   - browser window size and element_wait must be positive
//   - jsonapi.timeout must be positive, jsonapi.assets_base_url absolute when set
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateSiteConfig(&cfg.Site); err != nil {
		return err
	}

	if cfg.Poll.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPoll,
			"poll.timeout must be positive, got %s", cfg.Poll.Timeout)
	}

	if cfg.Migration.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidMigration,
			"migration.timeout cannot be negative, got %s", cfg.Migration.Timeout)
	}

	if err := validateProbeConfig(&cfg.Probe); err != nil {
		return err
	}

	if err := validateBrowserConfig(&cfg.Browser); err != nil {
		return err
	}

	return validateJSONAPIConfig(&cfg.JSONAPI)
}

// validateSiteConfig checks the site under test.
func validateSiteConfig(cfg *SiteConfig) error {
	if !isAbsoluteHTTPURL(cfg.BaseURL) {
		return errors.Wrapf(errors.ErrConfigInvalidSite,
			"site.base_url must be an absolute http(s) URL, got %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return errors.Wrap(errors.ErrConfigInvalidSite, "site.username must not be empty")
	}
	return nil
}

// validateProbeConfig checks probe settings.
func validateProbeConfig(cfg *ProbeConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidProbe,
			"probe.timeout must be positive, got %s", cfg.Timeout)
	}
	switch strings.ToUpper(cfg.Method) {
	case http.MethodHead, http.MethodGet:
	default:
		return errors.Wrapf(errors.ErrConfigInvalidProbe,
			"probe.method must be HEAD or GET, got %q", cfg.Method)
	}
	if cfg.Pace < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidProbe,
			"probe.pace cannot be negative, got %s", cfg.Pace)
	}
	return nil
}

// validateBrowserConfig checks browser settings.
func validateBrowserConfig(cfg *BrowserConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBrowser,
			"browser window must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.ElementWait <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBrowser,
			"browser.element_wait must be positive, got %s", cfg.ElementWait)
	}
	return nil
}

// validateJSONAPIConfig checks JSON:API settings.
func validateJSONAPIConfig(cfg *JSONAPIConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidJSONAPI,
			"jsonapi.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.AssetsBaseURL != "" && !isAbsoluteHTTPURL(cfg.AssetsBaseURL) {
		return errors.Wrapf(errors.ErrConfigInvalidJSONAPI,
			"jsonapi.assets_base_url must be an absolute http(s) URL, got %q", cfg.AssetsBaseURL)
	}
	return nil
}

// isAbsoluteHTTPURL reports whether raw parses as an http or https URL with a host.
func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
