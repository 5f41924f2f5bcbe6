// Package errors provides centralized error handling for idce2e.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the harness. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrPollTimeout indicates a poll deadline elapsed before its condition was met.
	// This is the ambiguous "still waiting" outcome, as opposed to a confirmed failure.
	ErrPollTimeout = errors.New("poll deadline exceeded")

	// ErrMigrationFailed indicates a non-benign error banner was shown after a
	// migration was submitted.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrMigrationPartialFailure indicates the migration finished but reported
	// one or more failed rows.
	ErrMigrationPartialFailure = errors.New("migration finished with failed rows")

	// ErrMigrationTimeout indicates no terminal migration banner appeared in time.
	ErrMigrationTimeout = errors.New("migration did not complete in time")

	// ErrUnknownMigrationKind indicates a migration identifier outside the known set.
	ErrUnknownMigrationKind = errors.New("unknown migration kind")

	// ErrCardinality indicates a lookup expected to resolve to exactly one
	// element found zero or several.
	ErrCardinality = errors.New("unexpected element count")

	// ErrElementNotFound indicates a required UI element is absent.
	ErrElementNotFound = errors.New("element not found")

	// ErrLoginFailed indicates the CMS rejected the supplied credentials.
	ErrLoginFailed = errors.New("login failed")

	// ErrCacheClearFailed indicates the cache clear confirmation never appeared.
	ErrCacheClearFailed = errors.New("cache clear not confirmed")

	// ErrProbeTransport indicates a probe request failed at the network layer.
	ErrProbeTransport = errors.New("probe transport failure")

	// ErrUnexpectedStatus indicates an HTTP response carried an unexpected status code.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrJSONAPI indicates a JSON:API request or response could not be processed.
	ErrJSONAPI = errors.New("jsonapi request failed")

	// ErrBrowser indicates the browser session failed to perform an action.
	ErrBrowser = errors.New("browser action failed")

	// ErrInterrupted indicates the run was stopped by SIGINT or SIGTERM.
	ErrInterrupted = errors.New("interrupted")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidSite indicates an invalid site configuration value.
	ErrConfigInvalidSite = errors.New("invalid site configuration")

	// ErrConfigInvalidPoll indicates an invalid poll configuration value.
	ErrConfigInvalidPoll = errors.New("invalid poll configuration")

	// ErrConfigInvalidProbe indicates an invalid probe configuration value.
	ErrConfigInvalidProbe = errors.New("invalid probe configuration")

	// ErrConfigInvalidBrowser indicates an invalid browser configuration value.
	ErrConfigInvalidBrowser = errors.New("invalid browser configuration")

	// ErrConfigInvalidMigration indicates an invalid migration configuration value.
	ErrConfigInvalidMigration = errors.New("invalid migration configuration")

	// ErrConfigInvalidJSONAPI indicates an invalid jsonapi configuration value.
	ErrConfigInvalidJSONAPI = errors.New("invalid jsonapi configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidArgument indicates an invalid command argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSiteBusy indicates another run holds the migration lock for the site.
	ErrSiteBusy = errors.New("site is locked by another run")

	// ErrExpectationFailed indicates an observed value did not match the expected one.
	ErrExpectationFailed = errors.New("expectation not met")
)

// MigrationError carries the diagnostic context of a failed migration:
// the migration identifier, the source file, and the banner text seen.
type MigrationError struct {
	// ID is the migration identifier (e.g. idc_ingest_new_items).
	ID string
	// File is the path of the uploaded source file.
	File string
	// Failed is the failed row count reported by the banner, when known.
	Failed int
	// Messages holds the error banner messages, when any were shown.
	Messages []string
	// Screenshot is the path of the page capture taken on failure, if any.
	Screenshot string
	// Err is the sentinel describing the failure class.
	Err error
	// Cause is the lower-level error that produced the failure, if any.
	Cause error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (%s)", e.Err, e.ID, e.File)
	if e.Failed > 0 {
		fmt.Fprintf(&b, ": %d failed", e.Failed)
	}
	if len(e.Messages) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Messages, "; "))
	}
	return b.String()
}

// Unwrap returns the sentinel and, when set, the cause.
func (e *MigrationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// CardinalityError reports how many elements a single-element lookup matched.
type CardinalityError struct {
	// Selector is the scope the lookup was run in.
	Selector string
	// Text is the text filter applied to the scope.
	Text string
	// Count is the number of matching elements.
	Count int
}

// Error implements the error interface.
func (e *CardinalityError) Error() string {
	return fmt.Sprintf("%s: expected exactly one %q matching %q, found %d",
		ErrCardinality, e.Selector, e.Text, e.Count)
}

// Unwrap returns ErrCardinality.
func (e *CardinalityError) Unwrap() error {
	return ErrCardinality
}

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
