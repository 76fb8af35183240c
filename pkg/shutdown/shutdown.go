package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// WithSignals derives a context that is cancelled on SIGINT or SIGTERM. The
// returned stop function releases the signal registration; a second signal
// after cancellation kills the process the default way.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
