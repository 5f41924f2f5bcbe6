// Package constants provides centralized constant values used throughout idce2e.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by idce2e.
const (
	// HomeDir is the hidden directory name where idce2e stores its data.
	// It lives in the user's home directory; a project-level copy holds project config.
	HomeDir = ".idce2e"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// LocksDir is the directory name holding per-site migration locks.
	LocksDir = "locks"

	// ArtifactsDir is the default directory for screenshots and downloads.
	ArtifactsDir = "artifacts"

	// CLILogFileName is the name of the global CLI log file (~/.idce2e/logs/idce2e.log).
	CLILogFileName = "idce2e.log"
)

// Log rotation settings for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 14
	LogCompress   = true
)

// Environment variables read by the harness.
const (
	// EnvPrefix is the prefix for configuration environment variables (IDCE2E_SITE_BASE_URL, ...).
	EnvPrefix = "IDCE2E"

	// EnvHome overrides the idce2e home directory.
	EnvHome = "IDCE2E_HOME"

	// EnvOperationTimeoutMS overrides the default poll deadline, in milliseconds.
	EnvOperationTimeoutMS = "TEST_OPERATION_TIMEOUT_MS"

	// EnvAssetsBaseURL points at the static assets container used by media migrations.
	EnvAssetsBaseURL = "BASE_ASSETS_URL"
)

// Timeouts for the operations the harness waits on.
const (
	// DefaultOperationTimeout is the poll deadline used when nothing else is configured.
	DefaultOperationTimeout = 30 * time.Second

	// DefaultProbeTimeout bounds a single probe request.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultJSONAPITimeout bounds a single JSON:API request.
	DefaultJSONAPITimeout = 30 * time.Second

	// DefaultElementWait bounds the wait for a form element before acting on it.
	DefaultElementWait = 10 * time.Second

	// DefaultProbePace is the pause between unsatisfied probes of one URL.
	DefaultProbePace = 250 * time.Millisecond
)

// DefaultProbeMethod is the HTTP method used by probes.
const DefaultProbeMethod = "HEAD"

// DefaultBenignErrorPattern matches the update advisories Drupal shows to
// administrators on every page.
const DefaultBenignErrorPattern = "security update"

// Site defaults matching the local development stack.
const (
	// DefaultBaseURL is the base URL of the local Islandora stack.
	DefaultBaseURL = "https://islandora-idc.traefik.me"

	// DefaultUsername is the administrator account of the local stack.
	DefaultUsername = "admin"
)

// Browser window defaults.
const (
	DefaultWindowWidth  = 1920
	DefaultWindowHeight = 1080
)
