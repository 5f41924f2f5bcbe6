// Package main provides the entry point for the idce2e CLI.
package main

import (
	"context"
	"os"

	"github.com/jhu-idc/idce2e/internal/cli"
)

// Set via ldflags by the release build.
var (
	version string
	commit  string
	date    string
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
