package poll

import (
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jhu-idc/idce2e/internal/clock"
	"github.com/jhu-idc/idce2e/internal/constants"
)

// DefaultTimeout is the deadline used when a caller passes a non-positive timeout
// and nothing else was configured.
const DefaultTimeout = constants.DefaultOperationTimeout

// defaultTimeout resolves the deadline for a non-positive timeout:
// TEST_OPERATION_TIMEOUT_MS in milliseconds when it is a positive integer,
// otherwise DefaultTimeout.
func defaultTimeout() time.Duration {
	raw := os.Getenv(constants.EnvOperationTimeoutMS)
	if raw == "" {
		return DefaultTimeout
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return DefaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// Deadline is a single-reader expiry flag set by a scheduled callback.
// The reader never consults a clock; it only observes Expired.
type Deadline struct {
	expired atomic.Bool
	timer   clock.Timer
	timeout time.Duration
}

// NewDeadline starts a deadline that expires after d on the system clock.
// A non-positive d falls back to TEST_OPERATION_TIMEOUT_MS, then to
// DefaultTimeout.
func NewDeadline(d time.Duration) *Deadline {
	return NewDeadlineWithClock(clock.RealClock{}, d)
}

// NewDeadlineWithClock starts a deadline on the given clock.
func NewDeadlineWithClock(c clock.Clock, d time.Duration) *Deadline {
	if d <= 0 {
		d = defaultTimeout()
	}
	dl := &Deadline{timeout: d}
	dl.timer = c.AfterFunc(d, func() { dl.expired.Store(true) })
	return dl
}

// Expired reports whether the deadline has fired.
func (d *Deadline) Expired() bool {
	return d.expired.Load()
}

// Timeout returns the effective duration of the deadline.
func (d *Deadline) Timeout() time.Duration {
	return d.timeout
}

// Stop cancels the pending callback. An already expired deadline stays expired.
func (d *Deadline) Stop() {
	d.timer.Stop()
}
