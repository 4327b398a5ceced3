package stats_test

import (
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/stats"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Snapshot(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	s := stats.New(stats.WithID("abc"), stats.WithClock(func() time.Time { return now }))

	s.IncReceived()
	s.IncReceived()
	s.IncSent()
	s.IncErrors()
	s.ObserveLanguage(relay.LanguageEnglish)
	s.ObserveLanguage(relay.LanguageBengali)
	s.ObserveLanguage(relay.LanguageBengali)
	now = start.Add(time.Minute)

	want := relay.Stats{
		SessionID:        "abc",
		MessagesReceived: 2,
		MessagesSent:     1,
		Errors:           1,
		StartedAt:        start,
		Duration:         time.Minute,
		Languages:        map[relay.Language]int{relay.LanguageEnglish: 1, relay.LanguageBengali: 2},
	}
	assert.Equal(t, want, s.Snapshot())
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := stats.New()
	s.ObserveLanguage(relay.LanguageEnglish)
	snap := s.Snapshot()
	snap.Languages[relay.LanguageEnglish] = 99

	assert.Equal(t, 1, s.Snapshot().Languages[relay.LanguageEnglish])
}

func TestSession_Finish(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	s := stats.New(stats.WithClock(func() time.Time { return now }))

	now = start.Add(time.Second)
	s.Finish()
	now = start.Add(time.Hour)
	s.Finish()

	assert.Equal(t, time.Second, s.Snapshot().Duration)
}

func TestSession_GeneratesID(t *testing.T) {
	t.Parallel()

	_, err := uuid.Parse(stats.New().ID())
	require.NoError(t, err)
}

func TestSession_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := stats.NewMetrics(reg)
	s := stats.New(stats.WithMetrics(m))

	s.IncReceived()
	s.IncSent()
	s.IncSent()
	s.IncErrors()
	s.ObserveLanguage(relay.LanguageBengali)
	s.ObserveRoute(relay.RouteTool, 2*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Received), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Sent), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Errors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Languages.WithLabelValues("bengali")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Routes.WithLabelValues("tool_query")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
}

func TestSession_ConcurrentUse(t *testing.T) {
	t.Parallel()

	s := stats.New()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.IncReceived()
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, s.Snapshot().MessagesReceived)
}
