// Package testutil provides testing utilities for idce2e.
//
// This package contains mock errors, a scripted browser page and HTML
// fixtures used across test files. It should only be imported by test files
// (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockBrowser indicates a mock browser action failed (used in tests).
	ErrMockBrowser = errors.New("browser crashed")

	// ErrMockNavigate indicates a mock navigation failed (used in tests).
	ErrMockNavigate = errors.New("navigation failed")

	// ErrMockPredicate indicates a mock poll predicate failed (used in tests).
	ErrMockPredicate = errors.New("predicate failed")

	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")
)
