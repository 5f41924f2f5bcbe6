// Package tui renders command results for a terminal or as JSON.
//
// Colors use AdaptiveColor for light/dark terminal support. Call CheckNoColor
// before rendering to honor NO_COLOR and TERM=dumb.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for links and informational output.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for passing checks.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for partial failures and client errors.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableStyles holds styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// StatusCodeStyle colors an HTTP status code by class.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(ColorSuccess)
	case code >= 300 && code < 400:
		return base.Foreground(ColorPrimary)
	case code >= 400 && code < 500:
		return base.Foreground(ColorWarning)
	default:
		return base.Foreground(ColorError)
	}
}

// OutcomeStyle colors a migration outcome name.
func OutcomeStyle(outcome string) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch outcome {
	case "success":
		return base.Foreground(ColorSuccess)
	case "partial_failure":
		return base.Foreground(ColorWarning)
	case "fatal":
		return base.Foreground(ColorError)
	default:
		return base.Foreground(ColorMuted)
	}
}

// displayWidth returns the terminal cell width of s, ignoring ANSI escapes.
func displayWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

// padRight pads s with spaces to the target cell width. Plain strings wider
// than width are truncated with an ellipsis.
func padRight(s string, width int) string {
	w := displayWidth(s)
	if w > width && !strings.ContainsRune(s, '\x1b') {
		return runewidth.Truncate(s, width, "…")
	}
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// stripANSI removes CSI (\x1b[...letter) and OSC (\x1b]...BEL or ST) sequences.
func stripANSI(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] != '\x1b' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		switch runes[i+1] {
		case '[':
			i += 2
			for i < len(runes) {
				c := runes[i]
				i++
				if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
					break
				}
			}
		case ']':
			i += 2
			for i < len(runes) {
				if runes[i] == '\x07' {
					i++
					break
				}
				if runes[i] == '\x1b' && i+1 < len(runes) && runes[i+1] == '\\' {
					i += 2
					break
				}
				i++
			}
		default:
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}
