package relay_test

import (
	"testing"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	th := relay.DefaultTheme()
	for name, idx := range map[string]int{
		"incoming": th.Incoming,
		"outgoing": th.Outgoing,
		"muted":    th.Muted,
		"accent":   th.Accent,
		"error":    th.Error,
	} {
		assert.True(t, idx >= 0 && idx <= 15, "%s index %d out of ANSI range", name, idx)
	}
	assert.NotEqual(t, th.Incoming, th.Outgoing)
}
