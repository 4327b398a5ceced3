// Package stats tracks session counters and mirrors them into Prometheus
// instruments.
package stats

import (
	"maps"
	"sync"
	"time"

	"github.com/fwojciec/relay"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "relay"

// Metrics groups the Prometheus instruments for one session.
type Metrics struct {
	Received  prometheus.Counter
	Sent      prometheus.Counter
	Errors    prometheus.Counter
	Languages *prometheus.CounterVec
	Routes    *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
}

// NewMetrics registers the session instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Received: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "messages_received_total",
			Help:      "Incoming messages handed to the pipeline.",
		}),
		Sent: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "messages_sent_total",
			Help:      "Replies delivered to the transport.",
		}),
		Errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Messages that failed or fell back to a canned reply.",
		}),
		Languages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "languages_total",
			Help:      "Incoming messages by detected language.",
		}, []string{"language"}),
		Routes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "routes_total",
			Help:      "Handled messages by route.",
		}, []string{"route"}),
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "response_seconds",
			Help:      "Time from receipt to send by route.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"route"}),
	}
}

// Session holds the counters for one chat session. It is safe for
// concurrent use so status readers can snapshot while the loop runs.
type Session struct {
	id      string
	now     func() time.Time
	metrics *Metrics

	mu        sync.Mutex
	started   time.Time
	finished  time.Time
	received  int
	sent      int
	errors    int
	languages map[relay.Language]int
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics mirrors every counter into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New starts a session at the current time.
func New(opts ...Option) *Session {
	s := &Session{now: time.Now, languages: make(map[relay.Language]int)}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.started = s.now()
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// IncReceived counts one incoming message.
func (s *Session) IncReceived() {
	s.mu.Lock()
	s.received++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.Received.Inc()
	}
}

// IncSent counts one delivered reply.
func (s *Session) IncSent() {
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.Sent.Inc()
	}
}

// IncErrors counts one failed message.
func (s *Session) IncErrors() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.Errors.Inc()
	}
}

// ObserveLanguage adds one message to the language histogram.
func (s *Session) ObserveLanguage(lang relay.Language) {
	s.mu.Lock()
	s.languages[lang]++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.Languages.WithLabelValues(string(lang)).Inc()
	}
}

// ObserveRoute records how a message was handled and how long it took.
func (s *Session) ObserveRoute(route relay.Route, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Routes.WithLabelValues(string(route)).Inc()
	s.metrics.Latency.WithLabelValues(string(route)).Observe(d.Seconds())
}

// Finish freezes the session duration. Later calls are no-ops.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished.IsZero() {
		s.finished = s.now()
	}
}

// Snapshot returns a copy of the counters. Duration runs until Finish.
func (s *Session) Snapshot() relay.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.finished
	if end.IsZero() {
		end = s.now()
	}
	return relay.Stats{
		SessionID:        s.id,
		MessagesReceived: s.received,
		MessagesSent:     s.sent,
		Errors:           s.errors,
		StartedAt:        s.started,
		Duration:         end.Sub(s.started),
		Languages:        maps.Clone(s.languages),
	}
}
