package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context that is canceled when the process
// receives SIGINT or SIGTERM, so a long conversion run can stop cleanly.
func ContextWithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
