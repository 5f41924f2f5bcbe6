package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhu-idc/idce2e/internal/errors"
)

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), nil)
	output, err := h.run(t, "--help")
	require.NoError(t, err)

	for _, want := range []string{
		"idce2e", "--output", "--verbose", "--quiet", "--version",
		"--base-url", "--timeout", "--headed",
		"migrate", "media", "upload", "probe", "download", "jsonapi", "assets", "kinds", "config",
	} {
		assert.Contains(t, output, want)
	}
}

func TestRootCmd_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		info           BuildInfo
		expectContains []string
	}{
		{
			name: "full version info",
			info: BuildInfo{
				Version: "1.0.0",
				Commit:  "abc1234",
				Date:    "2026-01-01",
			},
			expectContains: []string{"1.0.0", "abc1234", "2026-01-01"},
		},
		{
			name:           "default dev version",
			info:           BuildInfo{},
			expectContains: []string{"dev", "none", "unknown"},
		},
		{
			name: "partial version info",
			info: BuildInfo{
				Version: "2.0.0-beta",
			},
			expectContains: []string{"2.0.0-beta", "none", "unknown"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := newRootCmdWith(&GlobalFlags{}, tc.info, newHarness(testConfig(), nil).services())
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"--version"})

			require.NoError(t, cmd.Execute())
			for _, expected := range tc.expectContains {
				assert.Contains(t, buf.String(), expected)
			}
		})
	}
}

func TestRootCmd_InvalidOutputFormat(t *testing.T) {
	t.Parallel()

	_, err := newHarness(testConfig(), nil).run(t, "kinds", "--output", "xml")
	require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_MutuallyExclusiveFlags(t *testing.T) {
	t.Parallel()

	_, err := newHarness(testConfig(), nil).run(t, "kinds", "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_GlobalOverrides(t *testing.T) {
	t.Parallel()

	h := newHarness(testConfig(), nil)
	_, err := h.run(t, "config", "show",
		"--base-url", "https://staging.idc.test", "-u", "curator", "--timeout", "2m", "--artifacts-dir", "shots")
	require.NoError(t, err)

	require.NotNil(t, h.overrides)
	assert.Equal(t, "https://staging.idc.test", h.overrides.Site.BaseURL)
	assert.Equal(t, "curator", h.overrides.Site.Username)
	assert.Equal(t, "2m0s", h.overrides.Poll.Timeout.String())
	assert.Equal(t, "shots", h.overrides.Browser.ArtifactsDir)
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.2.3 (commit: abc, built: today)", formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"}))
	assert.Equal(t, "dev (commit: none, built: unknown)", formatVersion(BuildInfo{}))
}
