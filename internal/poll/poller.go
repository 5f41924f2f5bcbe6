// Package poll waits for state that the harness can only observe by asking
// again: derivatives generated by background workers, migration banners,
// object-storage replication.
//
// A poll evaluates its condition in a tight loop with no delay of its own;
// pacing (a page reload, a bounded element wait) is the condition's job. The
// loop ends when the condition is done, when it reports a fatal error, or
// when the deadline fires, whichever happens first.
package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhu-idc/idce2e/internal/clock"
	"github.com/jhu-idc/idce2e/internal/ctxutil"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// Poller runs conditions against a deadline.
type Poller struct {
	timeout time.Duration
	clock   clock.Clock
	logger  zerolog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock sets the clock that drives the deadline.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithLogger sets the logger used for attempt tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

// New creates a Poller whose default deadline is timeout.
// A non-positive timeout falls back to TEST_OPERATION_TIMEOUT_MS, then to
// DefaultTimeout.
func New(timeout time.Duration, opts ...Option) *Poller {
	if timeout <= 0 {
		timeout = defaultTimeout()
	}
	p := &Poller{
		timeout: timeout,
		clock:   clock.RealClock{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the poller's default deadline.
func (p *Poller) Timeout() time.Duration {
	return p.timeout
}

// WithTimeout returns a copy of the poller using timeout as its deadline.
// A non-positive timeout keeps the current one.
func (p *Poller) WithTimeout(timeout time.Duration) *Poller {
	cp := *p
	if timeout > 0 {
		cp.timeout = timeout
	}
	return &cp
}

// Until evaluates cond until it is done, fatal, or the deadline fires.
//
// It returns nil when the condition is done, the condition's own error when it
// is fatal (without waiting out the deadline), and an error wrapping
// errors.ErrPollTimeout when the deadline fires first. The condition is always
// evaluated at least once. Context cancellation is checked between evaluations.
func (p *Poller) Until(ctx context.Context, label string, cond Condition) error {
	timedOut, attempts, err := p.run(ctx, label, cond)
	if timedOut {
		return e2eerrors.Wrapf(e2eerrors.ErrPollTimeout,
			"%s: not satisfied within %s after %d attempts", label, p.timeout, attempts)
	}
	return err
}

// TryUntilTrue evaluates pred until it returns true or the deadline fires.
//
// It returns (true, nil) as soon as pred returns true and (false, nil) when the
// deadline fires first; a timeout alone is never an error. An error returned
// by pred stops the loop at once and is returned unchanged.
func (p *Poller) TryUntilTrue(ctx context.Context, pred Predicate) (bool, error) {
	timedOut, _, err := p.run(ctx, "tryUntilTrue", FromPredicate(pred))
	if timedOut || err != nil {
		return false, err
	}
	return true, nil
}

// run is the loop shared by Until and TryUntilTrue. timedOut is true only when
// the deadline fired; err carries fatal and context errors.
func (p *Poller) run(ctx context.Context, label string, cond Condition) (timedOut bool, attempts int, err error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, 0, err
	}

	deadline := NewDeadlineWithClock(p.clock, p.timeout)
	defer deadline.Stop()

	logger := p.logger.With().Str("poll", label).Logger()
	logger.Debug().Dur("timeout", p.timeout).Msg("poll started")

	start := p.clock.Now()
	for attempts = 1; ; attempts++ {
		res := cond(ctx)
		logger.Trace().Int("attempt", attempts).Stringer("result", res).Msg("condition evaluated")

		switch {
		case res.IsDone():
			logger.Debug().
				Int("attempts", attempts).
				Dur("elapsed", p.clock.Now().Sub(start)).
				Msg("poll satisfied")
			return false, attempts, nil
		case res.IsFatal():
			logger.Debug().Int("attempts", attempts).Err(res.Err()).Msg("poll aborted")
			return false, attempts, res.Err()
		}

		if deadline.Expired() {
			logger.Debug().Int("attempts", attempts).Msg("poll deadline exceeded")
			return true, attempts, nil
		}
		if err := ctxutil.Canceled(ctx); err != nil {
			return false, attempts, err
		}
	}
}

// TryUntilTrue runs pred on a throwaway Poller with the given deadline.
// A non-positive timeout uses TEST_OPERATION_TIMEOUT_MS, then DefaultTimeout.
func TryUntilTrue(ctx context.Context, pred Predicate, timeout time.Duration) (bool, error) {
	return New(timeout).TryUntilTrue(ctx, pred)
}
