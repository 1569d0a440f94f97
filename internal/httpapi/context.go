package httpapi

import (
	"context"
)

// serverBaseCtx is the daemon lifetime context. Handlers join it with the
// request context so that in-flight activations and session work abort on
// shutdown as well as on client disconnect. Defaults to Background until the
// daemon installs one.
var serverBaseCtx = context.Background()

// SetBaseContext installs the daemon lifetime context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context cancelled when either parent is done. The
// returned cancel must be called when the handler returns so the watcher
// goroutine exits promptly.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	joined, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
		case <-b.Done():
		case <-joined.Done():
		}
		cancel()
	}()
	return joined, cancel
}
