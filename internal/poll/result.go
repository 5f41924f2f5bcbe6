package poll

import (
	"context"
	"errors"
)

// errFatalWithoutCause stands in when Fatal is given a nil error.
var errFatalWithoutCause = errors.New("condition reported fatal without a cause")

type resultKind int

const (
	kindRetry resultKind = iota
	kindDone
	kindFatal
)

// Result is the outcome of one condition evaluation: keep waiting, stop
// successfully, or stop with an error that must not be retried.
type Result struct {
	kind resultKind
	err  error
}

// Retry asks the poller to evaluate the condition again.
func Retry() Result {
	return Result{kind: kindRetry}
}

// Done reports that the awaited state has been reached.
func Done() Result {
	return Result{kind: kindDone}
}

// Fatal aborts the poll immediately with err.
func Fatal(err error) Result {
	if err == nil {
		err = errFatalWithoutCause
	}
	return Result{kind: kindFatal, err: err}
}

// IsDone reports whether the result ends the poll successfully.
func (r Result) IsDone() bool { return r.kind == kindDone }

// IsFatal reports whether the result aborts the poll.
func (r Result) IsFatal() bool { return r.kind == kindFatal }

// Err returns the fatal error, or nil.
func (r Result) Err() error { return r.err }

// String names the result kind for logs.
func (r Result) String() string {
	switch r.kind {
	case kindDone:
		return "done"
	case kindFatal:
		return "fatal"
	default:
		return "retry"
	}
}

// Condition is evaluated repeatedly by a Poller. Each call is expected to block
// on real work (a page query, a network call) rather than return instantly.
type Condition func(ctx context.Context) Result

// Predicate is the boolean form of a Condition: true is Done, false is Retry,
// and a non-nil error is Fatal.
type Predicate func(ctx context.Context) (bool, error)

// FromPredicate adapts a Predicate to a Condition.
func FromPredicate(pred Predicate) Condition {
	return func(ctx context.Context) Result {
		ok, err := pred(ctx)
		switch {
		case err != nil:
			return Fatal(err)
		case ok:
			return Done()
		default:
			return Retry()
		}
	}
}
