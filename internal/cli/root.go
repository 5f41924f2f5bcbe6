// Package cli provides the command-line interface for idce2e.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/signal"
	"github.com/jhu-idc/idce2e/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
// Access is protected by globalLoggerMu for thread safety.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed. Calling it before initialization will
// return a zero-value logger that discards all log output.
//
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command wired to the real browser and config.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return newRootCmdWith(flags, info, defaultServices())
}

// newRootCmdWith creates the root command using svc for side effects, which
// lets tests swap the browser and configuration sources.
func newRootCmdWith(flags *GlobalFlags, info BuildInfo, svc services) *cobra.Command {
	v := viper.New()
	a := &app{flags: flags, svc: svc}

	cmd := &cobra.Command{
		Use:   "idce2e",
		Short: "idce2e - end-to-end checks for an Islandora repository",
		Long: `idce2e drives a running Islandora (Drupal) site the way its E2E suite does:
it runs CSV ingest migrations through the admin UI, waits for derivatives to be
generated, and checks stored binaries and JSON:API output over plain HTTP.

Features:
  • Ingest migrations with failure banners reported as they appear
  • Polling for derivatives produced by background workers
  • HTTP probes of object-storage URLs
  • JSON:API lookups of migrated content`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v",
					errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
			}

			globalLoggerMu.Lock()
			globalLogger = svc.initLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// Errors are rendered once by Execute through tui.Output.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	addMigrateCommand(cmd, a)
	addMediaCommand(cmd, a)
	addUploadCommand(cmd, a)
	addCacheCommand(cmd, a)
	addProbeCommand(cmd, a)
	addDownloadCommand(cmd, a)
	addJSONAPICommand(cmd, a)
	addAssetsCommand(cmd, a)
	addKindsCommand(cmd, a)
	addConfigCommand(cmd, a)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// SIGINT and SIGTERM cancel the command context; a command stopped that way
// returns an error wrapping errors.ErrInterrupted. The error, if any, is
// printed to stderr in the selected output format before being returned.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	h := signal.NewHandler(ctx)
	defer h.Stop()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(h.Context())
	if err == nil {
		return nil
	}

	if h.WasInterrupted() && !stderrors.Is(err, errors.ErrInterrupted) {
		err = fmt.Errorf("%w: %w", context.Cause(h.Context()), err)
	}

	out, outErr := tui.NewOutput(cmd.ErrOrStderr(), flags.Output)
	if outErr != nil {
		out = tui.NewTTYOutput(cmd.ErrOrStderr())
	}
	out.Error(err)
	return err
}
