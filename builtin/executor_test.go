package builtin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor(t *testing.T) {
	t.Parallel()

	t.Run("implements ToolExecutor interface", func(t *testing.T) {
		t.Parallel()
		var _ relay.ToolExecutor = (*builtin.Executor)(nil)
	})

	t.Run("get_current_time uses the clock", func(t *testing.T) {
		t.Parallel()
		at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
		exec := builtin.NewExecutor(builtin.WithClock(func() time.Time { return at }))

		result, err := exec.Execute(context.Background(), "get_current_time", nil)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "Current date and time: 2024-03-05 14:07:09 (Tuesday, March 05, 2024)", result.Text)
	})

	t.Run("get_weather passes the location", func(t *testing.T) {
		t.Parallel()
		var got string
		exec := builtin.NewExecutor(builtin.WithWeather(func(ctx context.Context, location string) (string, error) {
			got = location
			return "Dhaka: +31°C", nil
		}))

		result, err := exec.Execute(context.Background(), "get_weather", json.RawMessage(`{"location": " Dhaka "}`))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "Dhaka: +31°C", result.Text)
		assert.Equal(t, "Dhaka", got)
	})

	t.Run("get_weather failure becomes an error result", func(t *testing.T) {
		t.Parallel()
		exec := builtin.NewExecutor(builtin.WithWeather(func(ctx context.Context, location string) (string, error) {
			return "", errors.New("timeout")
		}))

		result, err := exec.Execute(context.Background(), "get_weather", json.RawMessage(`{"location": "Paris"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "weather for Paris is unavailable: timeout", result.Text)
	})

	t.Run("get_weather requires a location", func(t *testing.T) {
		t.Parallel()
		exec := builtin.NewExecutor(builtin.WithWeather(func(ctx context.Context, location string) (string, error) {
			t.Fatal("lookup should not run")
			return "", nil
		}))

		result, err := exec.Execute(context.Background(), "get_weather", json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "location is required", result.Text)
	})

	t.Run("get_weather rejects malformed arguments", func(t *testing.T) {
		t.Parallel()
		exec := builtin.NewExecutor()

		result, err := exec.Execute(context.Background(), "get_weather", json.RawMessage(`{"location": 3}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, "invalid arguments")
	})

	t.Run("unknown tool returns error result", func(t *testing.T) {
		t.Parallel()
		exec := builtin.NewExecutor()

		result, err := exec.Execute(context.Background(), "launch_rocket", nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Text, "launch_rocket")
	})

	t.Run("lists both tools", func(t *testing.T) {
		t.Parallel()
		tools := builtin.NewExecutor().Tools()
		require.Len(t, tools, 2)
		assert.Equal(t, "get_current_time", tools[0].Name)
		assert.Equal(t, "get_weather", tools[1].Name)
		for _, tool := range tools {
			assert.True(t, json.Valid(tool.Parameters), tool.Name)
		}
	})
}

func TestWttr_Lookup(t *testing.T) {
	t.Parallel()

	t.Run("returns trimmed report", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/New%20York", r.URL.EscapedPath())
			assert.Equal(t, "3", r.URL.Query().Get("format"))
			_, _ = w.Write([]byte("New York: ⛅️ +12°C\n"))
		}))
		defer srv.Close()

		w := builtin.NewWttr(srv.Client())
		w.BaseURL = srv.URL
		got, err := w.Lookup(context.Background(), "New York")
		require.NoError(t, err)
		assert.Equal(t, "New York: ⛅️ +12°C", got)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown location", http.StatusNotFound)
		}))
		defer srv.Close()

		w := builtin.NewWttr(srv.Client())
		w.BaseURL = srv.URL
		_, err := w.Lookup(context.Background(), "Atlantis")
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("empty body is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		w := builtin.NewWttr(srv.Client())
		w.BaseURL = srv.URL
		_, err := w.Lookup(context.Background(), "Nowhere")
		assert.Error(t, err)
	})
}
