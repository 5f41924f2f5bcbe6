package errors

import "fmt"

// Wrap adds context to an error at a package boundary and returns nil for a
// nil error, so it can be used inline:
//
//	if err := page.Navigate(ctx, url); err != nil {
//	    return errors.Wrap(err, "open content listing")
//	}
//
// The chain is preserved, so errors.Is(err, errors.ErrBrowser) keeps working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message:
//
//	return errors.Wrapf(err, "run migration %s", kind)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
