package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/relay"
)

// WeatherToolName is the function name the generator calls for weather.
const WeatherToolName = "get_weather"

// WeatherFunc returns a one-line weather report for location.
type WeatherFunc func(ctx context.Context, location string) (string, error)

type weatherArgs struct {
	Location string `json:"location"`
}

// WeatherTool returns the definition for get_weather.
func WeatherTool() relay.Tool {
	return relay.Tool{
		Name:        WeatherToolName,
		Description: "Gets current weather information for a location.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"location": {
					"type": "string",
					"description": "City or place name, e.g. Dhaka"
				}
			},
			"required": ["location"]
		}`),
	}
}

func (e *Executor) executeWeather(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	var a weatherArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return domainError(fmt.Sprintf("invalid arguments: %s", err)), nil
		}
	}
	a.Location = strings.TrimSpace(a.Location)
	if a.Location == "" {
		return domainError("location is required"), nil
	}

	report, err := e.weather(ctx, a.Location)
	if err != nil {
		return domainError(fmt.Sprintf("weather for %s is unavailable: %s", a.Location, err)), nil
	}
	return textResult(report), nil
}

// DefaultWttrURL is the public wttr.in endpoint.
const DefaultWttrURL = "https://wttr.in"

// wttrTimeout bounds a single lookup; the generator call is waiting on it.
const wttrTimeout = 10 * time.Second

// Wttr looks up weather on a wttr.in compatible service.
type Wttr struct {
	BaseURL string
	Client  *http.Client
}

// NewWttr returns a Wttr against DefaultWttrURL. A nil client gets a
// bounded timeout.
func NewWttr(client *http.Client) *Wttr {
	if client == nil {
		client = &http.Client{Timeout: wttrTimeout}
	}
	return &Wttr{BaseURL: DefaultWttrURL, Client: client}
}

// Lookup fetches the one-line report for location.
func (w *Wttr) Lookup(ctx context.Context, location string) (string, error) {
	u := strings.TrimRight(w.BaseURL, "/") + "/" + url.PathEscape(location) + "?format=3"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "curl/8")

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	report := strings.TrimSpace(string(body))
	if report == "" {
		return "", fmt.Errorf("empty report")
	}
	return report, nil
}
