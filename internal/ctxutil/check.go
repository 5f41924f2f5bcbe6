// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"
	"time"
)

// Canceled reports ctx.Err(): nil while the context is live, otherwise
// context.Canceled or context.DeadlineExceeded. Blocking operations call it
// at entry and between iterations.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// WithTimeout bounds ctx by d. A non-positive d leaves ctx unbounded; the
// returned cancel func is always safe to defer.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
