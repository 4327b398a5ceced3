package relay

import "sync"

// Seen is the dedup set: raw texts already handed to the pipeline plus every
// text the bot has sent, since polling re-observes sent messages.
//
// The set grows for the whole session and never evicts. Memory is bounded
// only by session length; that is an accepted trade-off for a polling
// transport with no message IDs.
//
// Seen is safe for concurrent use: the intake loop and pipeline write it
// while status reporting reads its size. Each chat target gets its own set.
type Seen struct {
	mu    sync.Mutex
	texts map[string]struct{}
}

// NewSeen returns an empty dedup set.
func NewSeen() *Seen {
	return &Seen{texts: make(map[string]struct{})}
}

// Add records text. It reports whether text was new.
func (s *Seen) Add(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.texts[text]; ok {
		return false
	}
	s.texts[text] = struct{}{}
	return true
}

// Has reports whether text was recorded.
func (s *Seen) Has(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.texts[text]
	return ok
}

// Len returns the number of recorded texts.
func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}
