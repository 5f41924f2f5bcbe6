package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinels to user-facing messages. A slice keeps the
// lookup order stable for wrapped errors matched with errors.Is().
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Polling & migrations
	// ===================
	{
		err: ErrMigrationTimeout,
		info: ErrorInfo{
			Message: "The migration did not report completion before the deadline.",
			Action:  "Raise TEST_OPERATION_TIMEOUT_MS or check the queue workers of the site under test.",
		},
	},
	{
		err: ErrMigrationPartialFailure,
		info: ErrorInfo{
			Message: "The migration finished but some rows failed to import.",
			Action:  "Open the migration messages page in the CMS to see which rows failed.",
		},
	},
	{
		err: ErrMigrationFailed,
		info: ErrorInfo{
			Message: "The CMS reported an error while running the migration.",
			Action:  "Check the screenshot in the artifacts directory and the Drupal watchdog log.",
		},
	},
	{
		err: ErrUnknownMigrationKind,
		info: ErrorInfo{
			Message: "The migration kind is not one of the known ingest migrations.",
			Action:  "Run 'idce2e kinds' to list the supported migration identifiers.",
		},
	},
	{
		err: ErrPollTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for the expected state.",
			Action:  "Increase the timeout or verify that background derivative jobs are running.",
		},
	},

	{
		err: ErrInterrupted,
		info: ErrorInfo{
			Message: "The run was interrupted.",
			Action:  "Migrations already submitted keep running on the site; check /admin/content before re-running.",
		},
	},

	// ===================
	// UI lookups
	// ===================
	{
		err: ErrCardinality,
		info: ErrorInfo{
			Message: "A lookup expected exactly one matching element.",
			Action:  "Use a more specific object name, or remove duplicate content from the site.",
		},
	},
	{
		err: ErrElementNotFound,
		info: ErrorInfo{
			Message: "A required page element was not found.",
			Action:  "Verify the theme and block layout of the site under test.",
		},
	},
	{
		err: ErrLoginFailed,
		info: ErrorInfo{
			Message: "Could not log in to the site.",
			Action:  "Check site.username and site.password (or IDCE2E_SITE_PASSWORD).",
		},
	},
	{
		err: ErrCacheClearFailed,
		info: ErrorInfo{
			Message: "The cache clear confirmation never appeared.",
			Action:  "Ensure the devel module is enabled and the user may clear caches.",
		},
	},
	{
		err: ErrBrowser,
		info: ErrorInfo{
			Message: "The browser session failed.",
			Action:  "Check that Chrome is installed or set browser.exec_path.",
		},
	},

	// ===================
	// HTTP
	// ===================
	{
		err: ErrProbeTransport,
		info: ErrorInfo{
			Message: "The resource could not be reached over the network.",
			Action:  "Check DNS, TLS and that the object storage endpoint is up.",
		},
	},
	{
		err: ErrUnexpectedStatus,
		info: ErrorInfo{
			Message: "The server answered with an unexpected status code.",
			Action:  "",
		},
	},
	{
		err: ErrJSONAPI,
		info: ErrorInfo{
			Message: "The JSON:API request failed.",
			Action:  "Ensure the jsonapi module is enabled and the resource type exists.",
		},
	},
	{
		err: ErrSiteBusy,
		info: ErrorInfo{
			Message: "Another run is migrating into this site.",
			Action:  "Wait for it to finish, or remove the stale lock under ~/.idce2e/locks.",
		},
	},
	{
		err: ErrExpectationFailed,
		info: ErrorInfo{
			Message: "The observed value did not match the expectation.",
			Action:  "",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure .idce2e/config.yaml is valid YAML.",
		},
	},
	{
		err: ErrConfigInvalidSite,
		info: ErrorInfo{
			Message: "Invalid site configuration.",
			Action:  "Check the 'site' section in .idce2e/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidPoll,
		info: ErrorInfo{
			Message: "Invalid poll configuration.",
			Action:  "Check 'poll.timeout' or TEST_OPERATION_TIMEOUT_MS.",
		},
	},
	{
		err: ErrConfigInvalidProbe,
		info: ErrorInfo{
			Message: "Invalid probe configuration.",
			Action:  "Check the 'probe' section in .idce2e/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidBrowser,
		info: ErrorInfo{
			Message: "Invalid browser configuration.",
			Action:  "Check the 'browser' section in .idce2e/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidMigration,
		info: ErrorInfo{
			Message: "Invalid migration configuration.",
			Action:  "Check the 'migration' section in .idce2e/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidJSONAPI,
		info: ErrorInfo{
			Message: "Invalid jsonapi configuration.",
			Action:  "Check the 'jsonapi' section in .idce2e/config.yaml or BASE_ASSETS_URL.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly message along with a suggested action.
// The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

// getErrorInfo walks the entries with errors.Is so wrapped sentinels resolve.
// Entries for more specific sentinels come before generic ones.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}
