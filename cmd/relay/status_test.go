package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/history"
	"github.com/fwojciec/relay/mock"
	"github.com/fwojciec/relay/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartStatus(t *testing.T) {
	t.Parallel()

	cfg := relay.DefaultConfig()
	gen := &mock.Generator{
		GenerateFn: func(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error) {
			return relay.GenerateResponse{Text: "summary"}, nil
		},
	}
	store := history.New(&cfg, gen)
	seen := relay.NewSeen()
	core, logs := observer.New(zap.InfoLevel)

	stop, err := startStatus(time.Second, stats.New(), store, seen, zap.New(core))
	require.NoError(t, err)

	// Write the dedup set while the status job reads it.
	deadline := time.Now().Add(1500 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		seen.Add(fmt.Sprintf("msg %d", i%1000))
	}
	stop()

	entries := logs.FilterMessage("status").All()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].ContextMap(), "seen")
}
