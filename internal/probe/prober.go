// Package probe checks binary resources over plain HTTP, independently of the
// CMS UI: object-storage copies after ingest, and their absence after delete.
//
// A probe is a single request. It reports the status code and nothing else;
// deciding whether 200, 403 or 404 is the right answer is the caller's job.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhu-idc/idce2e/internal/constants"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// DefaultPace is the pause between unsatisfied probes in WaitForStatus.
const DefaultPace = constants.DefaultProbePace

// maxConcurrentProbes bounds ProbeAll.
const maxConcurrentProbes = 8

// Result is the outcome of one probe.
type Result struct {
	URL        string `json:"url"`
	Method     string `json:"method"`
	StatusCode int    `json:"status_code"`
}

// Prober issues HEAD or GET requests with a short fixed timeout.
type Prober struct {
	client     *http.Client
	method     string
	forceHTTPS bool
	pace       time.Duration
	logger     zerolog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithMethod selects HEAD or GET. Other methods are ignored.
func WithMethod(method string) Option {
	return func(p *Prober) {
		m := strings.ToUpper(strings.TrimSpace(method))
		if m == http.MethodHead || m == http.MethodGet {
			p.method = m
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// WithForceHTTPS upgrades http URLs to https before probing. Sites behind a
// TLS-terminating proxy render http links that only answer on https.
func WithForceHTTPS(force bool) Option {
	return func(p *Prober) { p.forceHTTPS = force }
}

// WithTransport sets the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Prober) { p.client.Transport = rt }
}

// WithPace sets the pause between unsatisfied probes in WaitForStatus.
func WithPace(d time.Duration) Option {
	return func(p *Prober) {
		if d >= 0 {
			p.pace = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Prober) { p.logger = logger }
}

// New creates a Prober. By default it sends HEAD with a 5s timeout.
func New(opts ...Option) *Prober {
	p := &Prober{
		client: &http.Client{
			Timeout: constants.DefaultProbeTimeout,
			// The status of the URL itself is what matters, not where it points.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
		method: http.MethodHead,
		pace:   DefaultPace,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "probe").Logger()
	return p
}

// Method returns the request method in use.
func (p *Prober) Method() string {
	return p.method
}

// Probe sends one request to rawURL and returns its status code. It never
// retries; network failures are returned wrapped with ErrProbeTransport.
func (p *Prober) Probe(ctx context.Context, rawURL string) (*Result, error) {
	target, err := p.target(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, p.method, target, nil)
	if err != nil {
		return nil, e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "build probe request for %s: %v", target, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", e2eerrors.ErrProbeTransport, p.method, target, err)
	}
	// Only the status matters; a GET body is closed unread.
	_ = resp.Body.Close()

	p.logger.Debug().Str("url", target).Str("method", p.method).Int("status", resp.StatusCode).Msg("probed")
	return &Result{URL: target, Method: p.method, StatusCode: resp.StatusCode}, nil
}

// ProbeAll probes urls concurrently and returns the results in input order.
// The first transport failure cancels the remaining probes and is returned.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) ([]*Result, error) {
	results := make([]*Result, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, u := range urls {
		g.Go(func() error {
			res, err := p.Probe(gctx, u)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WaitForStatus probes rawURL until it answers with one of want or poller's
// deadline (timeout when positive) fires. Unsatisfied probes are spaced by the
// prober's pace. A transport failure ends the wait at once.
func (p *Prober) WaitForStatus(ctx context.Context, poller *poll.Poller, rawURL string, timeout time.Duration, want ...int) (*Result, error) {
	if len(want) == 0 {
		return nil, e2eerrors.Wrap(e2eerrors.ErrInvalidArgument, "no expected status codes")
	}

	var last *Result
	err := poller.WithTimeout(timeout).Until(ctx, "probe "+rawURL, func(ctx context.Context) poll.Result {
		res, err := p.Probe(ctx, rawURL)
		if err != nil {
			return poll.Fatal(err)
		}
		last = res
		if slices.Contains(want, res.StatusCode) {
			return poll.Done()
		}
		if err := sleep(ctx, p.pace); err != nil {
			return poll.Fatal(err)
		}
		return poll.Retry()
	})
	return last, err
}

// Expect checks that res carries one of want.
func Expect(res *Result, want ...int) error {
	if res == nil {
		return e2eerrors.Wrap(e2eerrors.ErrInvalidArgument, "nil probe result")
	}
	if slices.Contains(want, res.StatusCode) {
		return nil
	}
	return e2eerrors.Wrapf(e2eerrors.ErrUnexpectedStatus, "%s %s: got %d, want %v",
		res.Method, res.URL, res.StatusCode, want)
}

// target validates rawURL and applies the https upgrade.
func (p *Prober) target(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "parse %q: %v", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "%q is not an absolute http(s) URL", rawURL)
	}
	if p.forceHTTPS && u.Scheme == "http" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
