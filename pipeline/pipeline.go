// Package pipeline turns one incoming message into one outgoing reply. It
// serves history questions from the conversation store and otherwise runs a
// chain of generation strategies, falling back to simpler ones on failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/classify"
	"github.com/fwojciec/relay/history"
	"github.com/fwojciec/relay/markdown"
	"github.com/fwojciec/relay/stats"
	"github.com/fwojciec/relay/text"
	"go.uber.org/zap"
)

// Result reports how one message was handled.
type Result struct {
	State relay.State   // terminal state
	Path  []relay.State // every state visited, in order
	Route relay.Route
	Text  string // the text sent, if any
	Err   error  // set when State is StateFailed
}

// Pipeline handles messages for one chat target. It is driven by a single
// intake loop and is not safe for concurrent Handle calls.
type Pipeline struct {
	cfg       *relay.Config
	gen       relay.Generator
	transport relay.Transport

	store      *history.Store
	classifier *classify.Classifier
	detector   *text.Detector
	seen       *relay.Seen
	stats      *stats.Session
	executor   relay.ToolExecutor
	tools      []relay.Tool
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore sets the conversation store.
func WithStore(s *history.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithClassifier sets the classifier. It should be the one the store uses.
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Pipeline) { p.classifier = c }
}

// WithDetector sets the language detector.
func WithDetector(d *text.Detector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// WithSeen sets the dedup set that sent texts are added to.
func WithSeen(s *relay.Seen) Option {
	return func(p *Pipeline) { p.seen = s }
}

// WithStats sets the session counters.
func WithStats(s *stats.Session) Option {
	return func(p *Pipeline) { p.stats = s }
}

// WithTools enables the tool strategy with the given executor and the
// function definitions offered to the generator.
func WithTools(exec relay.ToolExecutor, tools []relay.Tool) Option {
	return func(p *Pipeline) {
		p.executor = exec
		p.tools = tools
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides time.Now for latency measurement.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline. Collaborators not given as options get fresh
// defaults built from cfg.
func New(cfg *relay.Config, gen relay.Generator, transport relay.Transport, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, gen: gen, transport: transport, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.classifier == nil {
		p.classifier = classify.Default(
			classify.WithTools(p.toolsEnabled()),
			classify.WithSearch(cfg.EnableSearch))
	}
	if p.detector == nil {
		p.detector = text.DefaultDetector()
	}
	if p.store == nil {
		p.store = history.New(cfg, gen,
			history.WithClassifier(p.classifier),
			history.WithDetector(p.detector),
			history.WithLogger(p.logger))
	}
	if p.seen == nil {
		p.seen = relay.NewSeen()
	}
	if p.stats == nil {
		p.stats = stats.New()
	}
	return p
}

func (p *Pipeline) toolsEnabled() bool {
	return p.cfg.EnableTools && p.executor != nil
}

// Store returns the conversation store.
func (p *Pipeline) Store() *history.Store { return p.store }

// Handle runs msg through the pipeline and sends exactly one reply, or none
// when the message fails. Per-message failures are counted in the session
// stats at most once and reported in the Result; they are never returned
// as a Go error.
func (p *Pipeline) Handle(ctx context.Context, msg string) Result {
	start := p.now()
	st := &tracker{}
	st.to(relay.StateReceived)

	lang := p.detector.Detect(msg)
	p.stats.ObserveLanguage(lang)
	p.store.Add(ctx, msg, relay.RoleUser)

	decision := p.classifier.Classify(msg)
	route := decision.Route
	st.to(relay.StateClassified)
	defer func() { p.stats.ObserveRoute(route, p.now().Sub(start)) }()

	var (
		reply       string
		errCounted  bool
		fromHistory bool
	)
	if decision.ServedFromHistory() {
		reply, fromHistory = p.store.HandleContextQuery(ctx, msg)
	}
	if fromHistory {
		st.to(relay.StateServedFromHistory)
	} else {
		st.to(relay.StateGenerating)
		var err error
		reply, err = p.generate(ctx, msg, lang, route)
		if err != nil {
			p.logger.Error("all strategies failed, using fallback phrase",
				zap.String("route", string(route)), zap.Error(err))
			p.stats.IncErrors()
			errCounted = true
			reply = fallbackPhrase(lang)
		}
	}

	reply = text.Validate(markdown.Plain(reply), p.cfg.MaxResponseLength)
	if reply == "" {
		return p.fail(st, route, errCounted, relay.ErrEmptyResponse)
	}
	st.to(relay.StateValidated)

	if err := sleep(ctx, p.cfg.ResponseDelay); err != nil {
		return p.fail(st, route, errCounted, err)
	}

	sent, err := p.deliver(ctx, reply, lang)
	if err != nil {
		return p.fail(st, route, errCounted, err)
	}
	p.store.Add(ctx, sent, relay.RoleAssistant)
	st.to(relay.StateSent)
	p.logger.Info("reply sent",
		zap.String("route", string(route)),
		zap.String("language", string(lang)),
		zap.String("text", text.Preview(sent, 80)))
	return Result{State: relay.StateSent, Path: st.path, Route: route, Text: sent}
}

// deliver sends reply, retrying once with the fixed apology. It returns the
// text that was actually delivered.
func (p *Pipeline) deliver(ctx context.Context, reply string, lang relay.Language) (string, error) {
	err := p.transport.Send(ctx, reply)
	if err == nil {
		p.markSent(reply)
		return reply, nil
	}
	p.logger.Warn("send failed, retrying with apology", zap.Error(err))

	apology := text.Validate(apologyPhrase(lang), p.cfg.MaxResponseLength)
	if retryErr := p.transport.Send(ctx, apology); retryErr != nil {
		return "", fmt.Errorf("%w: %w", relay.ErrTransportSend, errors.Join(err, retryErr))
	}
	p.markSent(apology)
	return apology, nil
}

func (p *Pipeline) markSent(s string) {
	p.seen.Add(s)
	p.stats.IncSent()
}

func (p *Pipeline) fail(st *tracker, route relay.Route, errCounted bool, err error) Result {
	st.to(relay.StateFailed)
	if !errCounted {
		p.stats.IncErrors()
	}
	p.logger.Error("message failed", zap.String("route", string(route)), zap.Error(err))
	return Result{State: relay.StateFailed, Path: st.path, Route: route, Err: err}
}

// tracker records the state path of one message.
type tracker struct {
	path []relay.State
}

func (t *tracker) to(s relay.State) {
	t.path = append(t.path, s)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
