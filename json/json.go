// Package json persists transcripts as versioned JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/relay"
)

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	Target    string    `json:"target"`
	SavedAt   time.Time `json:"saved_at"`
	Turns     []turnDTO `json:"turns"`
	Stats     statsDTO  `json:"stats"`
}

type turnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type statsDTO struct {
	MessagesReceived int            `json:"messages_received"`
	MessagesSent     int            `json:"messages_sent"`
	Errors           int            `json:"errors"`
	StartedAt        time.Time      `json:"started_at"`
	DurationSeconds  float64        `json:"duration_seconds"`
	Languages        map[string]int `json:"languages,omitempty"`
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(t relay.Transcript) ([]byte, error) {
	env := envelope{
		Version:   1,
		SessionID: t.SessionID,
		Target:    t.Target,
		SavedAt:   t.SavedAt,
		Turns:     make([]turnDTO, len(t.Turns)),
		Stats: statsDTO{
			MessagesReceived: t.Stats.MessagesReceived,
			MessagesSent:     t.Stats.MessagesSent,
			Errors:           t.Stats.Errors,
			StartedAt:        t.Stats.StartedAt,
			DurationSeconds:  t.Stats.Duration.Seconds(),
		},
	}
	for i, turn := range t.Turns {
		if err := validRole(turn.Role); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		env.Turns[i] = turnDTO{Role: string(turn.Role), Content: turn.Content, Timestamp: turn.Timestamp}
	}
	if len(t.Stats.Languages) > 0 {
		env.Stats.Languages = make(map[string]int, len(t.Stats.Languages))
		for lang, n := range t.Stats.Languages {
			env.Stats.Languages[string(lang)] = n
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope format.
func UnmarshalTranscript(data []byte) (relay.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return relay.Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return relay.Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	turns := make([]relay.Turn, len(env.Turns))
	for i, dto := range env.Turns {
		role := relay.Role(dto.Role)
		if err := validRole(role); err != nil {
			return relay.Transcript{}, fmt.Errorf("turn %d: %w", i, err)
		}
		turns[i] = relay.Turn{Role: role, Content: dto.Content, Timestamp: dto.Timestamp}
	}
	t := relay.Transcript{
		SessionID: env.SessionID,
		Target:    env.Target,
		SavedAt:   env.SavedAt,
		Turns:     turns,
		Stats: relay.Stats{
			SessionID:        env.SessionID,
			MessagesReceived: env.Stats.MessagesReceived,
			MessagesSent:     env.Stats.MessagesSent,
			Errors:           env.Stats.Errors,
			StartedAt:        env.Stats.StartedAt,
			Duration:         time.Duration(env.Stats.DurationSeconds * float64(time.Second)),
		},
	}
	if len(env.Stats.Languages) > 0 {
		t.Stats.Languages = make(map[relay.Language]int, len(env.Stats.Languages))
		for lang, n := range env.Stats.Languages {
			t.Stats.Languages[relay.Language(lang)] = n
		}
	}
	return t, nil
}

func validRole(r relay.Role) error {
	switch r {
	case relay.RoleUser, relay.RoleAssistant, relay.RoleSystem:
		return nil
	default:
		return fmt.Errorf("unknown role: %q", r)
	}
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, t relay.Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (relay.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return relay.Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
