// Package console implements [relay.Transport] on a terminal. Lines typed at
// the prompt are the chat partner's messages; replies are printed above the
// prompt.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/fwojciec/relay"
)

// Interface compliance check.
var _ relay.Transport = (*Transport)(nil)

// defaultWindow is how many recent messages Poll returns, like the visible
// part of a chat window.
const defaultWindow = 50

// LineReader reads typed lines. *readline.Instance satisfies it. Close must
// unblock a pending Readline.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Transport is a terminal chat transport.
type Transport struct {
	reader LineReader
	out    io.Writer
	styles Styles
	name   string
	window int
	now    func() time.Time

	mu       sync.Mutex
	msgs     []relay.IncomingMessage
	readErr  error
	drained  bool
	done     chan struct{}
	closeErr error
	once     sync.Once
}

// Option configures a Transport.
type Option func(*Transport)

// WithStyles sets the output styles.
func WithStyles(s Styles) Option {
	return func(t *Transport) { t.styles = s }
}

// WithName labels outgoing lines. Default "relay".
func WithName(name string) Option {
	return func(t *Transport) { t.name = name }
}

// WithWindow sets how many recent messages Poll returns.
func WithWindow(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.window = n
		}
	}
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) { t.now = now }
}

// New starts reading lines from r in the background. Replies are written to
// out. Call Close to stop the reader.
func New(r LineReader, out io.Writer, opts ...Option) *Transport {
	t := &Transport{
		reader: r,
		out:    out,
		styles: NewStyles(relay.DefaultTheme()),
		name:   "relay",
		window: defaultWindow,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.read()
	return t
}

// NewReadline creates a Transport reading from the terminal with prompt.
func NewReadline(prompt string, opts ...Option) (*Transport, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	return New(rl, rl.Stdout(), opts...), nil
}

func (t *Transport) read() {
	defer close(t.done)
	for {
		line, err := t.reader.Readline()
		if err != nil {
			t.mu.Lock()
			t.readErr = err
			t.mu.Unlock()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		t.append(relay.IncomingMessage{Text: line, Incoming: true, Timestamp: t.now()})
	}
}

func (t *Transport) append(m relay.IncomingMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, m)
	if over := len(t.msgs) - t.window; over > 0 {
		t.msgs = append(t.msgs[:0], t.msgs[over:]...)
	}
}

// Poll returns the most recent messages, oldest first. After the input ends
// it returns one last snapshot and then an error wrapping
// [relay.ErrTransportClosed].
func (t *Transport) Poll(_ context.Context) ([]relay.IncomingMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		if t.drained {
			return nil, t.closedErr()
		}
		t.drained = true
	}
	out := make([]relay.IncomingMessage, len(t.msgs))
	copy(out, t.msgs)
	return out, nil
}

func (t *Transport) closedErr() error {
	if errors.Is(t.readErr, io.EOF) || errors.Is(t.readErr, readline.ErrInterrupt) {
		return fmt.Errorf("console: %w", relay.ErrTransportClosed)
	}
	return fmt.Errorf("console: %w: %w", relay.ErrTransportClosed, t.readErr)
}

// Send prints text as an outgoing message.
func (t *Transport) Send(_ context.Context, text string) error {
	line := t.styles.Outgoing.Render(t.name+": ") + text
	if _, err := fmt.Fprintln(t.out, line); err != nil {
		return fmt.Errorf("console: %w: %w", relay.ErrTransportSend, err)
	}
	t.append(relay.IncomingMessage{Text: text, Incoming: false, Timestamp: t.now()})
	return nil
}

// Status prints a muted status line.
func (t *Transport) Status(msg string) {
	fmt.Fprintln(t.out, t.styles.Muted.Render(msg))
}

// Close stops the reader and waits for it to exit.
func (t *Transport) Close() error {
	t.once.Do(func() {
		t.closeErr = t.reader.Close()
		<-t.done
	})
	return t.closeErr
}
