// Package history implements the bounded conversation window. When the
// window outgrows its limit the oldest turns are folded into a generated
// summary turn.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/classify"
	"github.com/fwojciec/relay/text"
	"go.uber.org/zap"
)

// Stats describes the current window.
type Stats struct {
	Total           int
	User            int
	Assistant       int
	Duration        time.Duration // last turn minus first turn
	SummaryFailures int           // trims that dropped turns without a summary
}

// Store is the conversation window. It is safe for concurrent use; Add holds
// the lock across the summarization call.
type Store struct {
	maxHistory   int
	recentKeep   int
	summaryTurns int

	gen        relay.Generator
	classifier *classify.Classifier
	detector   *text.Detector
	logger     *zap.Logger
	now        func() time.Time

	mu              sync.Mutex
	turns           []relay.Turn
	summaryFailures int
}

// Option configures a Store.
type Option func(*Store)

// WithClassifier sets the classifier used to recognize history queries.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Store) { s.classifier = c }
}

// WithDetector sets the detector used to pick the reply language.
func WithDetector(d *text.Detector) Option {
	return func(s *Store) { s.detector = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store sized by cfg. gen produces summaries.
func New(cfg *relay.Config, gen relay.Generator, opts ...Option) *Store {
	s := &Store{
		maxHistory:   cfg.MaxHistory,
		recentKeep:   cfg.RecentKeep,
		summaryTurns: cfg.SummaryTurns,
		gen:          gen,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	if s.detector == nil {
		s.detector = text.DefaultDetector()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Add appends a turn stamped with the current time and then trims the window
// back under its limit.
func (s *Store) Add(ctx context.Context, content string, role relay.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, relay.Turn{Role: role, Content: content, Timestamp: s.now()})
	if len(s.turns) > s.maxHistory {
		s.trim(ctx)
	}
}

// trim collapses all but the most recent turns into one system turn. A
// previous summary turn is among the collapsed turns, so summaries roll
// forward. Must be called with mu held.
func (s *Store) trim(ctx context.Context) {
	cut := len(s.turns) - s.recentKeep
	old := s.turns[:cut]
	recent := make([]relay.Turn, s.recentKeep, s.recentKeep+1)
	copy(recent, s.turns[cut:])

	summary, err := s.summarize(ctx, old)
	if err != nil {
		s.summaryFailures++
		s.logger.Warn("dropping turns without summary",
			zap.Int("dropped", len(old)),
			zap.Int("failures", s.summaryFailures),
			zap.Error(err))
		s.turns = recent
		return
	}

	s.logger.Debug("window summarized",
		zap.Int("collapsed", len(old)),
		zap.String("summary", text.Preview(summary, 80)))
	turn := relay.Turn{Role: relay.RoleSystem, Content: summary, Timestamp: old[0].Timestamp}
	s.turns = append([]relay.Turn{turn}, recent...)
}

func (s *Store) summarize(ctx context.Context, turns []relay.Turn) (string, error) {
	resp, err := s.gen.Generate(ctx, relay.GenerateRequest{
		Prompt: "Summarize this conversation in two or three sentences, keeping names, facts and open questions:\n\n" + render(turns),
		Mode:   relay.ModePlain,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", relay.ErrSummarization, err)
	}
	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return "", fmt.Errorf("%w: %w", relay.ErrSummarization, relay.ErrEmptyResponse)
	}
	return summary, nil
}

// Context renders the most recent turns as a labeled transcript for
// generation prompts, preceded by the rolling summary when there is one.
// An empty window renders as "".
func (s *Store) Context() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context(s.turns)
}

// ContextBefore is Context without the newest turn when that turn is the
// user message msg, so a prompt can present msg on its own.
func (s *Store) ContextBefore(msg string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context(withoutCurrent(s.turns, msg))
}

// withoutCurrent drops a trailing user turn equal to msg.
func withoutCurrent(turns []relay.Turn, msg string) []relay.Turn {
	if n := len(turns); n > 0 && turns[n-1].Role == relay.RoleUser && turns[n-1].Content == msg {
		return turns[:n-1]
	}
	return turns
}

func (s *Store) context(turns []relay.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	if turns[0].Role == relay.RoleSystem {
		b.WriteString("Summary: " + turns[0].Content + "\n")
		turns = turns[1:]
	}
	if len(turns) > s.recentKeep {
		turns = turns[len(turns)-s.recentKeep:]
	}
	if len(turns) > 0 {
		b.WriteString("Recent conversation:\n")
		b.WriteString(render(turns))
	}
	return b.String()
}

// Turns returns a copy of the window.
func (s *Store) Turns() []relay.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]relay.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Restore replaces the window with turns, keeping only the newest ones that
// fit. No summary is generated.
func (s *Store) Restore(turns []relay.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(turns) > s.maxHistory {
		turns = turns[len(turns)-s.maxHistory:]
	}
	s.turns = make([]relay.Turn, len(turns))
	copy(s.turns, turns)
}

// Stats describes the window.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.turns), SummaryFailures: s.summaryFailures}
	for _, t := range s.turns {
		switch t.Role {
		case relay.RoleUser:
			st.User++
		case relay.RoleAssistant:
			st.Assistant++
		}
	}
	if len(s.turns) > 1 {
		st.Duration = s.turns[len(s.turns)-1].Timestamp.Sub(s.turns[0].Timestamp)
	}
	return st
}

func render(turns []relay.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(label(t.Role) + ": " + t.Content + "\n")
	}
	return b.String()
}

func label(r relay.Role) string {
	switch r {
	case relay.RoleUser:
		return "User"
	case relay.RoleSystem:
		return "Summary"
	default:
		return "You"
	}
}
