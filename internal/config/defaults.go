package config

import (
	"github.com/jhu-idc/idce2e/internal/constants"
)

// DefaultConfig returns a new Config with the values used when nothing else
// is configured. They target the local development stack.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:  constants.DefaultBaseURL,
			Username: constants.DefaultUsername,
		},
		Poll: PollConfig{
			Timeout: constants.DefaultOperationTimeout,
		},
		Migration: MigrationConfig{
			// Timeout: zero inherits poll.timeout.
			Timeout:             0,
			BenignErrorPatterns: []string{constants.DefaultBenignErrorPattern},
		},
		Probe: ProbeConfig{
			Timeout: constants.DefaultProbeTimeout,
			Method:  constants.DefaultProbeMethod,
			Pace:    constants.DefaultProbePace,
		},
		Browser: BrowserConfig{
			Headless:     true,
			Width:        constants.DefaultWindowWidth,
			Height:       constants.DefaultWindowHeight,
			ElementWait:  constants.DefaultElementWait,
			ArtifactsDir: constants.ArtifactsDir,
		},
		JSONAPI: JSONAPIConfig{
			Timeout: constants.DefaultJSONAPITimeout,
		},
	}
}
