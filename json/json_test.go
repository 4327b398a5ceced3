package json_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/relay"
	relayjson "github.com/fwojciec/relay/json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() relay.Transcript {
	ts := time.Date(2024, 2, 18, 12, 0, 0, 0, time.UTC)
	return relay.Transcript{
		SessionID: "sess-123",
		Target:    "Alice",
		SavedAt:   ts.Add(time.Hour),
		Turns: []relay.Turn{
			{Role: relay.RoleSystem, Content: "They greeted each other.", Timestamp: ts},
			{Role: relay.RoleUser, Content: "আজ কি বার?", Timestamp: ts.Add(time.Minute)},
			{Role: relay.RoleAssistant, Content: "আজ সোমবার।", Timestamp: ts.Add(2 * time.Minute)},
		},
		Stats: relay.Stats{
			SessionID:        "sess-123",
			MessagesReceived: 4,
			MessagesSent:     3,
			Errors:           1,
			StartedAt:        ts,
			Duration:         90 * time.Second,
			Languages:        map[relay.Language]int{relay.LanguageBengali: 3, relay.LanguageEnglish: 1},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "transcript.json")
	want := sampleTranscript()

	require.NoError(t, relayjson.Save(path, want))
	got, err := relayjson.Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestMarshalTranscript_Format(t *testing.T) {
	t.Parallel()

	data, err := relayjson.MarshalTranscript(sampleTranscript())
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"version": 1`)
	assert.Contains(t, s, `"role": "system"`)
	assert.Contains(t, s, `"duration_seconds": 90`)
}

func TestMarshalTranscript_RejectsUnknownRole(t *testing.T) {
	t.Parallel()

	tr := sampleTranscript()
	tr.Turns[1].Role = "moderator"
	_, err := relayjson.MarshalTranscript(tr)
	assert.ErrorContains(t, err, `unknown role: "moderator"`)
}

func TestUnmarshalTranscript_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", `{`, "unmarshal envelope"},
		{"wrong version", `{"version": 2}`, "unsupported envelope version: 2"},
		{"unknown role", `{"version": 1, "turns": [{"role": "bot", "content": "x"}]}`, "turn 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := relayjson.UnmarshalTranscript([]byte(tt.data))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := relayjson.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
