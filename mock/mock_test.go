package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()
	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()
		g := mock.Generator{
			GenerateFn: func(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error) {
				return relay.GenerateResponse{Text: "echo: " + req.Prompt}, nil
			},
		}
		got, err := g.Generate(context.Background(), relay.GenerateRequest{Prompt: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "echo: hi", got.Text)
	})

	t.Run("panics when GenerateFn not set", func(t *testing.T) {
		t.Parallel()
		g := mock.Generator{}
		assert.Panics(t, func() {
			_, _ = g.Generate(context.Background(), relay.GenerateRequest{})
		})
	})
}

func TestTransport(t *testing.T) {
	t.Parallel()
	t.Run("Poll delegates to PollFn", func(t *testing.T) {
		t.Parallel()
		want := []relay.IncomingMessage{{Text: "hello", Incoming: true}}
		tr := mock.Transport{
			PollFn: func(ctx context.Context) ([]relay.IncomingMessage, error) { return want, nil },
		}
		got, err := tr.Poll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Send returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("offline")
		tr := mock.Transport{
			SendFn: func(ctx context.Context, text string) error { return wantErr },
		}
		assert.ErrorIs(t, tr.Send(context.Background(), "x"), wantErr)
	})

	t.Run("panics when SendFn not set", func(t *testing.T) {
		t.Parallel()
		tr := mock.Transport{}
		assert.Panics(t, func() {
			_ = tr.Send(context.Background(), "x")
		})
	})
}

func TestToolExecutor_Execute(t *testing.T) {
	t.Parallel()
	t.Run("delegates to ExecuteFn", func(t *testing.T) {
		t.Parallel()
		e := mock.ToolExecutor{
			ExecuteFn: func(ctx context.Context, name string, args json.RawMessage) (*relay.ToolResult, error) {
				return &relay.ToolResult{Text: name + string(args)}, nil
			},
		}
		got, err := e.Execute(context.Background(), "get_weather", json.RawMessage(`{"location":"Dhaka"}`))
		require.NoError(t, err)
		assert.Equal(t, `get_weather{"location":"Dhaka"}`, got.Text)
	})

	t.Run("panics when ExecuteFn not set", func(t *testing.T) {
		t.Parallel()
		e := mock.ToolExecutor{}
		assert.Panics(t, func() {
			_, _ = e.Execute(context.Background(), "x", nil)
		})
	})
}
