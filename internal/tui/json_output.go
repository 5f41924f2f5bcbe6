package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jhu-idc/idce2e/internal/errors"
)

// JSONOutput writes every message as one JSON object per line, for CI logs.
type JSONOutput struct {
	encoder *json.Encoder
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{encoder: json.NewEncoder(w)}
}

// jsonMessage is the structured format for Success/Warning/Info messages.
type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// jsonError is the structured format for Error messages.
type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Success outputs {"type": "success", "message": "..."}.
func (o *JSONOutput) Success(msg string) {
	o.message("success", msg)
}

// Error outputs {"type": "error", "message": "...", "details": "...", "suggestion": "..."}.
// Details hold the user-facing description of the error class.
func (o *JSONOutput) Error(err error) {
	details, suggestion := errors.Actionable(err)
	if details == err.Error() {
		details = ""
	}
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonError{
		Type:       "error",
		Message:    err.Error(),
		Details:    details,
		Suggestion: suggestion,
	})
}

// Warning outputs {"type": "warning", "message": "..."}.
func (o *JSONOutput) Warning(msg string) {
	o.message("warning", msg)
}

// Info outputs {"type": "info", "message": "..."}.
func (o *JSONOutput) Info(msg string) {
	o.message("info", msg)
}

// Table outputs rows as an array of objects keyed by header.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	if len(headers) > 0 {
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = stripANSI(row[i])
				} else {
					obj[h] = ""
				}
			}
			result = append(result, obj)
		}
	}
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(result)
}

// JSON outputs v as JSON.
func (o *JSONOutput) JSON(v any) error {
	if err := o.encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (o *JSONOutput) message(kind, msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: kind, Message: msg})
}
