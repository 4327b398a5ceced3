package relay

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrTransportRead indicates a transient failure while polling messages.
	ErrTransportRead = errors.New("transport read error")

	// ErrTransportSend indicates a message could not be delivered.
	ErrTransportSend = errors.New("transport send error")

	// ErrTransportClosed indicates the transport can no longer be polled.
	// It is the only transport error that ends the intake loop.
	ErrTransportClosed = errors.New("transport closed")

	// ErrGeneration indicates a generator call failed or produced no usable text.
	ErrGeneration = errors.New("generation error")

	// ErrUnsupportedMode indicates a generator does not implement the requested mode.
	ErrUnsupportedMode = errors.New("unsupported generation mode")

	// ErrEmptyResponse indicates a candidate reply was empty after validation.
	ErrEmptyResponse = errors.New("empty response")

	// ErrSummarization indicates window-trim summarization failed.
	ErrSummarization = errors.New("summarization error")

	// ErrConfiguration indicates missing or invalid startup settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")
)
