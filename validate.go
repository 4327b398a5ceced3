package relay

import "fmt"

// MinResponseLength is the smallest MaxResponseLength that leaves room for
// one character plus the truncation ellipsis.
const MinResponseLength = 4

// Validate checks that c is usable for a session. Every failure wraps
// [ErrConfiguration].
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key must be set: %w", ErrConfiguration)
	}
	if c.Target == "" {
		return fmt.Errorf("target must be set: %w", ErrConfiguration)
	}
	if c.ChatDuration <= 0 {
		return fmt.Errorf("chat_duration must be positive, got %s: %w", c.ChatDuration, ErrConfiguration)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %s: %w", c.CheckInterval, ErrConfiguration)
	}
	if c.ResponseDelay < 0 {
		return fmt.Errorf("response_delay must be non-negative, got %s: %w", c.ResponseDelay, ErrConfiguration)
	}
	if c.RecentKeep < 1 {
		return fmt.Errorf("recent_keep must be at least 1, got %d: %w", c.RecentKeep, ErrConfiguration)
	}
	if c.MaxHistory <= c.RecentKeep {
		return fmt.Errorf("max_history (%d) must exceed recent_keep (%d): %w", c.MaxHistory, c.RecentKeep, ErrConfiguration)
	}
	if c.SummaryTurns < 1 {
		return fmt.Errorf("summary_turns must be at least 1, got %d: %w", c.SummaryTurns, ErrConfiguration)
	}
	if c.MaxResponseLength < MinResponseLength {
		return fmt.Errorf("max_response_length must be at least %d, got %d: %w", MinResponseLength, c.MaxResponseLength, ErrConfiguration)
	}
	switch c.Provider {
	case "", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q: %w", c.Provider, ErrConfiguration)
	}
	return nil
}
