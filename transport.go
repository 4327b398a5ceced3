package relay

import "context"

// Transport reads and sends chat messages.
//
// Poll returns the full currently visible message set in display order.
// Transient read failures must be reported as an empty slice and a nil
// error; the caller retries on the next cycle. A non-nil error wrapping
// [ErrTransportClosed] means the transport is gone for good.
//
// Send delivers text. A non-nil error is an ordinary delivery failure the
// caller may retry; resending after a failure is acceptable.
type Transport interface {
	Poll(ctx context.Context) ([]IncomingMessage, error)
	Send(ctx context.Context, text string) error
}
