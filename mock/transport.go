package mock

import (
	"context"

	"github.com/fwojciec/relay"
)

// Transport is a test double for relay.Transport.
// Set the function fields for the methods you need.
type Transport struct {
	PollFn func(ctx context.Context) ([]relay.IncomingMessage, error)
	SendFn func(ctx context.Context, text string) error
}

// Poll delegates to PollFn.
func (t *Transport) Poll(ctx context.Context) ([]relay.IncomingMessage, error) {
	return t.PollFn(ctx)
}

// Send delegates to SendFn.
func (t *Transport) Send(ctx context.Context, text string) error {
	return t.SendFn(ctx, text)
}
