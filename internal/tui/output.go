package tui

import (
	"io"

	"github.com/jhu-idc/idce2e/internal/errors"
)

// Output format names accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output writes command results.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error with its suggested action, if any.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON writes v as JSON.
	JSON(v any) error
}

// NewOutput creates the Output for format. Unknown formats are rejected.
func NewOutput(w io.Writer, format string) (Output, error) {
	switch format {
	case "", FormatText:
		return NewTTYOutput(w), nil
	case FormatJSON:
		return NewJSONOutput(w), nil
	default:
		return nil, errors.NewExitCode2Error(
			errors.Wrapf(errors.ErrInvalidOutputFormat, "%q (use %s or %s)", format, FormatText, FormatJSON))
	}
}
