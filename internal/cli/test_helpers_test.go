package cli

// This file contains test utilities for running commands against a scripted
// browser page and a fixed configuration.

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/browser"
	"github.com/jhu-idc/idce2e/internal/config"
	"github.com/jhu-idc/idce2e/internal/drupal"
	"github.com/jhu-idc/idce2e/internal/testutil"
)

const testBaseURL = "https://idc.test"

// testConfig returns a valid configuration for testBaseURL with screenshots
// disabled and short deadlines.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = testBaseURL
	cfg.Site.Password = "s3cret-pass"
	cfg.Poll.Timeout = 5 * time.Second
	cfg.Browser.ArtifactsDir = ""
	return cfg
}

// harness records how the command used its services.
type harness struct {
	cfg  *config.Config
	page browser.Page

	mu        sync.Mutex
	overrides *config.Config
	opened    int
	closed    int
	locks     int
	lockErr   error
}

func newHarness(cfg *config.Config, page browser.Page) *harness {
	return &harness{cfg: cfg, page: page}
}

func (h *harness) services() services {
	return services{
		initLogger: func(bool, bool) zerolog.Logger { return zerolog.Nop() },
		loadConfig: func(_ context.Context, overrides *config.Config) (*config.Config, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.overrides = overrides
			cp := *h.cfg
			if overrides.Site.BaseURL != "" {
				cp.Site.BaseURL = overrides.Site.BaseURL
			}
			if overrides.Poll.Timeout != 0 {
				cp.Poll.Timeout = overrides.Poll.Timeout
			}
			return &cp, nil
		},
		openPage: func(context.Context, *config.Config, zerolog.Logger) (browser.Page, func(), error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.opened++
			return h.page, func() {
				h.mu.Lock()
				defer h.mu.Unlock()
				h.closed++
			}, nil
		},
		lockSite: func(*config.Config, zerolog.Logger) (func(), error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.lockErr != nil {
				return nil, h.lockErr
			}
			h.locks++
			return func() {}, nil
		},
	}
}

// run executes the root command with args and returns stdout and the error.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdWith(&GlobalFlags{}, BuildInfo{Version: "test"}, h.services())
	return execute(cmd, args...)
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// Page fixtures rendered the way the site does.

func htmlPage(body string) string {
	return "<html><head><title>IDC</title></head><body>" + body + "</body></html>"
}

func statusBanner(msg string) string {
	return `<div class="messages messages--status" role="status">` + msg + `</div>`
}

func loginForm() string {
	return htmlPage(`<form id="user-login-form"><input id="edit-name"><input id="edit-pass" type="password">` +
		`<input type="submit" id="edit-submit" value="Log in"></form>`)
}

func migratePage(banners ...string) string {
	var opts strings.Builder
	for _, k := range drupal.MigrationKinds() {
		fmt.Fprintf(&opts, `<option value="%s">%s</option>`, k, k)
	}
	return htmlPage(strings.Join(banners, "") +
		`<form><select id="edit-migrations">` + opts.String() +
		`</select><input type="file" id="edit-source-file"><input type="submit" id="edit-import"></form>`)
}

func doneMessage(id string, created, failed int) string {
	return fmt.Sprintf("Processed %d items (%d created, 0 updated, %d failed, 0 ignored) - done with &quot;%s&quot;",
		created+failed, created, failed, id)
}

// loggedInPage scripts a login that succeeds.
func loggedInPage() *testutil.FakePage {
	return testutil.NewFakePage().
		Serve(testBaseURL+drupal.PathLogin, loginForm()).
		Serve(testBaseURL+"/user/1", htmlPage(`<h1>admin</h1>`)).
		ClickNavigates("#edit-submit", testBaseURL+"/user/1")
}
