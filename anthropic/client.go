package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/relay"
)

// Interface compliance check.
var _ relay.Generator = (*Client)(nil)

// Client implements [relay.Generator] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate sends one non-streaming Messages request. Failures wrap
// [relay.ErrGeneration].
func (c *Client) Generate(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error) {
	body, err := c.buildRequestBody(req)
	if err != nil {
		return relay.GenerateResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return relay.GenerateResponse{}, fmt.Errorf("anthropic: %w: %w", relay.ErrGeneration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return relay.GenerateResponse{}, fmt.Errorf("anthropic: %w: %w", relay.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return relay.GenerateResponse{}, parseHTTPError(resp)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return relay.GenerateResponse{}, fmt.Errorf("anthropic: %w: decoding response: %w", relay.ErrGeneration, err)
	}
	return parseResponse(apiResp)
}

func (c *Client) buildRequestBody(req relay.GenerateRequest) ([]byte, error) {
	apiReq := apiRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		System:    convertSystem(req.SystemPrompt),
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: req.Prompt}},
		}},
	}

	switch req.Mode {
	case relay.ModePlain, "":
	case relay.ModeTools:
		apiReq.Tools = convertTools(req.Tools)
	case relay.ModeSearch:
		apiReq.Tools = []apiTool{{Type: webSearchType, Name: "web_search", MaxUses: webSearchMaxUses}}
	default:
		return nil, fmt.Errorf("anthropic: %w: %q", relay.ErrUnsupportedMode, req.Mode)
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return body, nil
}

// convertSystem converts a system prompt to a content block marked as a
// cache breakpoint. Returns nil when the prompt is empty.
func convertSystem(prompt string) []apiContentBlock {
	if prompt == "" {
		return nil
	}
	return []apiContentBlock{{Type: "text", Text: prompt, CacheControl: &apiCacheControl{Type: "ephemeral"}}}
}

func convertTools(tools []relay.Tool) []apiTool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]apiTool, len(tools))
	for i, t := range tools {
		result[i] = apiTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		}
	}
	return result
}

func parseResponse(resp apiResponse) (relay.GenerateResponse, error) {
	var out relay.GenerateResponse
	var text strings.Builder
	for _, item := range resp.Content {
		switch item.Type {
		case "text":
			text.WriteString(item.Text)
		case "tool_use":
			args := item.Input
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			out.ToolCalls = append(out.ToolCalls, relay.ToolCall{ID: item.ID, Name: item.Name, Arguments: args})
		case "web_search_tool_result":
			out.Grounded = true
		}
	}
	out.Text = text.String()
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return relay.GenerateResponse{}, fmt.Errorf("anthropic: %w: empty response (stop reason %s)", relay.ErrGeneration, resp.StopReason)
	}
	return out, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: %w: HTTP %d (failed to read body: %w)", relay.ErrGeneration, resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Type == "" {
		return fmt.Errorf("anthropic: %w: HTTP %d: %s", relay.ErrGeneration, resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %w: %s: %s", relay.ErrGeneration, apiErr.Error.Type, apiErr.Error.Message)
}
