package relay_test

import (
	"testing"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestDecision_ServedFromHistory(t *testing.T) {
	t.Parallel()
	assert.True(t, relay.Decision{Route: relay.RouteContext, Intent: relay.IntentFirst}.ServedFromHistory())
	assert.True(t, relay.Decision{Route: relay.RouteSummary}.ServedFromHistory())
	assert.False(t, relay.Decision{Route: relay.RouteTool}.ServedFromHistory())
	assert.False(t, relay.Decision{Route: relay.RouteSearch}.ServedFromHistory())
	assert.False(t, relay.Decision{Route: relay.RoutePlain}.ServedFromHistory())
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()
	assert.True(t, relay.StateSent.Terminal())
	assert.True(t, relay.StateFailed.Terminal())
	for _, s := range []relay.State{
		relay.StateReceived, relay.StateClassified, relay.StateServedFromHistory,
		relay.StateGenerating, relay.StateValidated,
	} {
		assert.False(t, s.Terminal(), s)
	}
}
