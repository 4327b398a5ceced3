// Package intake runs the polling loop that feeds unseen incoming messages
// to the response pipeline one at a time.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/pipeline"
	"github.com/fwojciec/relay/stats"
	"github.com/fwojciec/relay/text"
	"go.uber.org/zap"
)

// Handler processes one message to completion.
type Handler interface {
	Handle(ctx context.Context, msg string) pipeline.Result
}

// Greeter sends an opening message before the first cycle.
type Greeter interface {
	Greet(ctx context.Context) error
}

// Loop polls the transport at a fixed cadence until the session deadline,
// a Stop call, context cancellation, or a closed transport.
type Loop struct {
	cfg       *relay.Config
	transport relay.Transport
	handler   Handler
	greeter   Greeter
	seen      *relay.Seen
	stats     *stats.Session
	logger    *zap.Logger
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithSeen sets the dedup set.
func WithSeen(s *relay.Seen) Option {
	return func(l *Loop) { l.seen = s }
}

// WithStats sets the session counters.
func WithStats(s *stats.Session) Option {
	return func(l *Loop) { l.stats = s }
}

// WithGreeter sends a greeting after the dedup set is primed.
func WithGreeter(g Greeter) Option {
	return func(l *Loop) { l.greeter = g }
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loop) { l.logger = lg }
}

// WithClock overrides time.Now for the session deadline.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// New creates a Loop. The dedup set must be the one the handler adds sent
// texts to.
func New(cfg *relay.Config, transport relay.Transport, handler Handler, opts ...Option) *Loop {
	l := &Loop{
		cfg:       cfg,
		transport: transport,
		handler:   handler,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.seen == nil {
		l.seen = relay.NewSeen()
	}
	if l.stats == nil {
		l.stats = stats.New()
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// Stop ends the loop before its next poll. A message being handled is
// allowed to finish. Stop may be called more than once and from any
// goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Running reports whether Run is in progress.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Run primes the dedup set with the messages already visible, optionally
// greets, and then polls until the session ends. It returns nil when the
// deadline passes, Stop is called or ctx is cancelled, and an error wrapping
// relay.ErrTransportClosed when the transport goes away.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	deadline := l.now().Add(l.cfg.ChatDuration)
	l.logger.Info("session started",
		zap.String("session", l.stats.ID()),
		zap.String("target", l.cfg.Target),
		zap.Duration("duration", l.cfg.ChatDuration),
		zap.Duration("interval", l.cfg.CheckInterval))

	if err := l.prime(ctx); err != nil {
		return err
	}
	if l.greeter != nil {
		if err := l.greeter.Greet(context.WithoutCancel(ctx)); err != nil {
			l.logger.Warn("greeting failed", zap.Error(err))
		}
	}

	for {
		if reason, done := l.done(ctx, deadline); done {
			l.logger.Info("session ended", zap.String("reason", reason))
			return nil
		}
		if err := l.cycle(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
		case <-l.stop:
		case <-time.After(l.cfg.CheckInterval):
		}
	}
}

func (l *Loop) done(ctx context.Context, deadline time.Time) (string, bool) {
	select {
	case <-ctx.Done():
		return "cancelled", true
	case <-l.stop:
		return "stopped", true
	default:
	}
	if !l.now().Before(deadline) {
		return "deadline", true
	}
	return "", false
}

func (l *Loop) prime(ctx context.Context) error {
	msgs, err := l.poll(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		l.seen.Add(m.Text)
	}
	l.logger.Info("existing messages marked as seen", zap.Int("count", len(msgs)))
	return nil
}

// cycle handles every unseen incoming message from one poll, in order.
func (l *Loop) cycle(ctx context.Context) error {
	msgs, err := l.poll(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if l.seen.Has(m.Text) {
			continue
		}
		if !m.Incoming {
			continue
		}
		if IsNoise(m.Text) {
			l.logger.Debug("skipping noise", zap.String("text", text.Preview(m.Text, 40)))
			continue
		}
		l.seen.Add(m.Text)
		l.stats.IncReceived()
		l.logger.Info("message received", zap.String("text", text.Preview(m.Text, 80)))
		l.dispatch(context.WithoutCancel(ctx), m.Text)
	}
	return nil
}

// poll treats every error except a closed transport as transient.
func (l *Loop) poll(ctx context.Context) ([]relay.IncomingMessage, error) {
	msgs, err := l.transport.Poll(ctx)
	if err == nil {
		return msgs, nil
	}
	if errors.Is(err, relay.ErrTransportClosed) {
		return nil, err
	}
	l.logger.Warn("poll failed", zap.Error(fmt.Errorf("%w: %w", relay.ErrTransportRead, err)))
	return nil, nil
}

func (l *Loop) dispatch(ctx context.Context, msg string) {
	defer func() {
		if r := recover(); r != nil {
			l.stats.IncErrors()
			l.logger.Error("message handler panicked", zap.Any("panic", r))
		}
	}()
	res := l.handler.Handle(ctx, msg)
	l.logger.Debug("message handled",
		zap.String("state", string(res.State)),
		zap.String("route", string(res.Route)))
}
