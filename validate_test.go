package relay_test

import (
	"testing"
	"time"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() relay.Config {
	cfg := relay.DefaultConfig()
	cfg.APIKey = "gk-test"
	cfg.Target = "Uttam"
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_DefaultsNeedIdentity(t *testing.T) {
	t.Parallel()
	cfg := relay.DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, relay.ErrConfiguration)
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*relay.Config)
		want   string
	}{
		{"missing api key", func(c *relay.Config) { c.APIKey = "" }, "api key"},
		{"missing target", func(c *relay.Config) { c.Target = "" }, "target"},
		{"zero duration", func(c *relay.Config) { c.ChatDuration = 0 }, "chat_duration"},
		{"zero interval", func(c *relay.Config) { c.CheckInterval = 0 }, "check_interval"},
		{"negative delay", func(c *relay.Config) { c.ResponseDelay = -time.Second }, "response_delay"},
		{"recent keep zero", func(c *relay.Config) { c.RecentKeep = 0 }, "recent_keep"},
		{"window not larger than keep", func(c *relay.Config) { c.MaxHistory = c.RecentKeep }, "max_history"},
		{"summary turns zero", func(c *relay.Config) { c.SummaryTurns = 0 }, "summary_turns"},
		{"response too short", func(c *relay.Config) { c.MaxResponseLength = 3 }, "max_response_length"},
		{"unknown provider", func(c *relay.Config) { c.Provider = "openai" }, "unknown provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, relay.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_Validate_MinimumResponseLength(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.MaxResponseLength = relay.MinResponseLength
	assert.NoError(t, cfg.Validate())
}
