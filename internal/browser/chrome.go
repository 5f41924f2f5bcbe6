package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/jhu-idc/idce2e/internal/constants"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// Options configures the Chrome allocator.
type Options struct {
	// Headless runs Chrome without a window.
	Headless bool
	// ExecPath overrides the Chrome binary location. Empty uses chromedp's lookup.
	ExecPath string
	// Width and Height set the window size.
	Width  int
	Height int
	// IgnoreCertErrors accepts the self-signed certificates of local stacks.
	IgnoreCertErrors bool
	// ElementWait bounds how long an action waits for its element to be ready.
	ElementWait time.Duration
}

// DefaultOptions returns options suitable for CI runs against the local stack.
func DefaultOptions() Options {
	return Options{
		Headless:         true,
		Width:            constants.DefaultWindowWidth,
		Height:           constants.DefaultWindowHeight,
		IgnoreCertErrors: true,
		ElementWait:      constants.DefaultElementWait,
	}
}

// allocatorFlags returns the command-line switches set on top of chromedp's
// defaults. A false bool removes the switch.
func allocatorFlags(opts Options) map[string]any {
	flags := map[string]any{
		"headless":    opts.Headless,
		"disable-gpu": true,
		"window-size": fmt.Sprintf("%d,%d", opts.Width, opts.Height),
	}
	if opts.IgnoreCertErrors {
		flags["ignore-certificate-errors"] = true
	}
	return flags
}

// allocatorOptions builds the chromedp allocator options for opts.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range allocatorFlags(opts) {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return allocOpts
}

// Chrome is a Page backed by a Chrome tab driven over the DevTools protocol.
type Chrome struct {
	ctx         context.Context //nolint:containedctx // chromedp binds the tab to this context
	cancel      []context.CancelFunc
	elementWait time.Duration
	logger      zerolog.Logger
}

// NewChrome launches Chrome and opens a tab. The returned Chrome owns the
// browser process; Close it when done. Canceling ctx also tears it down.
func NewChrome(ctx context.Context, opts Options, logger zerolog.Logger) (*Chrome, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug().Msgf(format, args...)
		}),
	)

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, e2eerrors.Wrap(e2eerrors.ErrBrowser, err.Error())
	}

	wait := opts.ElementWait
	if wait <= 0 {
		wait = constants.DefaultElementWait
	}

	logger.Debug().Bool("headless", opts.Headless).Msg("browser started")
	return &Chrome{
		ctx:         tabCtx,
		cancel:      []context.CancelFunc{cancelTab, cancelAlloc},
		elementWait: wait,
		logger:      logger,
	}, nil
}

// Close shuts down the tab and the browser process.
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.ctx)
	for _, cancel := range c.cancel {
		cancel()
	}
	return err
}

// run executes actions on the tab, bounded by the caller's ctx.
func (c *Chrome) run(ctx context.Context, what string, actions ...chromedp.Action) error {
	tabCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return e2eerrors.Wrapf(e2eerrors.ErrBrowser, "%s: %v", what, err)
	}
	return nil
}

// runElement is run with the element wait applied, so a missing element fails
// instead of blocking until the caller's deadline.
func (c *Chrome) runElement(ctx context.Context, what string, actions ...chromedp.Action) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.elementWait)
	defer cancel()
	return c.run(waitCtx, what, actions...)
}

// Navigate implements Page.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	c.logger.Debug().Str("url", url).Msg("navigate")
	return c.run(ctx, "navigate to "+url,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Reload implements Page.
func (c *Chrome) Reload(ctx context.Context) error {
	return c.run(ctx, "reload",
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Location implements Page.
func (c *Chrome) Location(ctx context.Context) (string, error) {
	var loc string
	err := c.run(ctx, "read location", chromedp.Location(&loc))
	return loc, err
}

// HTML implements Page.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, "snapshot document", chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Click implements Page.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.runElement(ctx, "click "+selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// SetValue implements Page.
func (c *Chrome) SetValue(ctx context.Context, selector, value string) error {
	return c.runElement(ctx, "set value of "+selector,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, value, chromedp.ByQuery),
		chromedp.Evaluate(dispatchChange(selector), nil),
	)
}

// SendKeys implements Page.
func (c *Chrome) SendKeys(ctx context.Context, selector, text string) error {
	return c.runElement(ctx, "type into "+selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// SetUploadFiles implements Page.
func (c *Chrome) SetUploadFiles(ctx context.Context, selector string, files []string) error {
	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return e2eerrors.Wrapf(err, "resolve upload file %s", f)
		}
		abs = append(abs, p)
	}
	return c.runElement(ctx, "attach files to "+selector,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, abs, chromedp.ByQuery),
	)
}

// Screenshot implements Page.
func (c *Chrome) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, "capture screenshot", chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// dispatchChange returns a script firing a bubbling change event on selector.
// Drupal's AJAX behaviors listen for it on select elements.
func dispatchChange(selector string) string {
	return `(function(){var el=document.querySelector(` + jsString(selector) + `);` +
		`if(el){el.dispatchEvent(new Event('change',{bubbles:true}));}})()`
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			out = append(out, '\\', r)
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, r)
		}
	}
	out = append(out, '"')
	return string(out)
}

var _ Page = (*Chrome)(nil)
