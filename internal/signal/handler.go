// Package signal provides graceful shutdown handling for idce2e CLI commands.
//
// An interrupt cancels the command context with errors.ErrInterrupted as its
// cause, which stops any running poll at its next attempt and lets the
// browser session close cleanly.
//
// Import rules:
//   - CAN import: std lib, internal/errors
//   - MUST NOT import: other internal packages
package signal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// Handler cancels a context when SIGINT or SIGTERM is received.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelCauseFunc
	interrupted chan struct{}
	done        chan struct{} // signals listen() to exit cleanly
	once        sync.Once
	stopOnce    sync.Once
	sigChan     chan os.Signal

	mu       sync.Mutex
	received os.Signal
}

// NewHandler creates a signal handler that listens for SIGINT and SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
//
//	if _, err := runner.Run(ctx, kind, file, 0); err != nil && h.WasInterrupted() {
//	    // report the interruption instead of the poll error
//	}
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffer of 1 ensures signal.Notify doesn't drop signals if handler is busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context. context.Cause reports
// errors.ErrInterrupted after a signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes when an interrupt signal is received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether a signal was received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Signal returns the signal that interrupted the run, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening for signals and cancels the context.
// Always call this when done to prevent resource leaks.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel(context.Canceled)
	})
}

// handleSignal records the first signal and cancels the context.
func (h *Handler) handleSignal(sig os.Signal) {
	h.once.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()

		cause := e2eerrors.ErrInterrupted
		if sig != nil {
			cause = fmt.Errorf("%w by %s", e2eerrors.ErrInterrupted, sig)
		}
		h.cancel(cause)
		close(h.interrupted)
	})
}

// listen waits for signals until Stop() is called or the context ends.
// Only the first signal has effect.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case sig := <-h.sigChan:
			h.handleSignal(sig)
		}
	}
}
