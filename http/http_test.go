package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/relay"
	relayhttp "github.com/fwojciec/relay/http"
	"github.com/fwojciec/relay/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*stats.Session, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := stats.New(
		stats.WithMetrics(stats.NewMetrics(reg)),
		stats.WithID("session-1"),
		stats.WithClock(func() time.Time { return start.Add(90 * time.Second) }),
	)
	return s, reg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Stats(t *testing.T) {
	t.Parallel()

	s, reg := newSession(t)
	s.IncReceived()
	s.IncReceived()
	s.IncSent()
	s.ObserveLanguage(relay.LanguageBengali)
	h := relayhttp.NewServer(":0", reg, s).Handler()

	rec := get(t, h, "/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		SessionID        string         `json:"session_id"`
		MessagesReceived int            `json:"messages_received"`
		MessagesSent     int            `json:"messages_sent"`
		Errors           int            `json:"errors"`
		Languages        map[string]int `json:"languages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "session-1", body.SessionID)
	assert.Equal(t, 2, body.MessagesReceived)
	assert.Equal(t, 1, body.MessagesSent)
	assert.Equal(t, 0, body.Errors)
	assert.Equal(t, map[string]int{"bengali": 1}, body.Languages)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s, reg := newSession(t)
	s.IncReceived()
	h := relayhttp.NewServer(":0", reg, s).Handler()

	rec := get(t, h, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relay_messages_received_total 1")
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		running bool
		code    int
		status  string
	}{
		{"running", true, http.StatusOK, `"ok"`},
		{"stopped", false, http.StatusServiceUnavailable, `"stopped"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, reg := newSession(t)
			h := relayhttp.NewServer(":0", reg, s,
				relayhttp.WithHealth(func() bool { return tc.running }),
			).Handler()

			rec := get(t, h, "/healthz")

			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.status)
		})
	}
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	s, reg := newSession(t)
	srv := relayhttp.NewServer("", reg, s)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		return err == nil
	}, time.Second, 10*time.Millisecond)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
