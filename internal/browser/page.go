// Package browser drives a real browser session on behalf of the harness.
//
// Page is the narrow surface the rest of the harness needs from the browser:
// navigation, form actions addressed by CSS selector, and a snapshot of the
// rendered document. Queries over the document run on the snapshot, so every
// inspection reflects the DOM at the moment it was taken.
package browser

import "context"

// Page is a single browser tab.
type Page interface {
	// Navigate loads url and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// Reload reloads the current document.
	Reload(ctx context.Context) error

	// Location returns the URL of the current document.
	Location(ctx context.Context) (string, error)

	// HTML returns the serialized outer HTML of the current document.
	HTML(ctx context.Context) (string, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// SetValue sets the value of the form control matching selector
	// (select elements included) and fires its change event.
	SetValue(ctx context.Context, selector, value string) error

	// SendKeys types text into the element matching selector.
	SendKeys(ctx context.Context, selector, text string) error

	// SetUploadFiles attaches local files to the file input matching selector.
	SetUploadFiles(ctx context.Context, selector string, files []string) error

	// Screenshot captures the visible viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}
