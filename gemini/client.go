package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/relay"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ relay.Generator = (*Client)(nil)

// Models is the part of the genai SDK the client calls. *genai.Models
// satisfies it.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements [relay.Generator] for the Google Gemini API.
type Client struct {
	models Models
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.0-flash.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return NewFromModels(gc.Models, opts...), nil
}

// NewFromModels creates a [Client] over an existing Models implementation.
func NewFromModels(m Models, opts ...Option) *Client {
	c := &Client{models: m, model: defaultModel}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate sends one non-streaming request. Failures wrap
// [relay.ErrGeneration].
func (c *Client) Generate(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error) {
	config, err := BuildConfig(req)
	if err != nil {
		return relay.GenerateResponse{}, err
	}
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return relay.GenerateResponse{}, fmt.Errorf("gemini: %w: %w", relay.ErrGeneration, err)
	}
	return ParseResponse(resp)
}

// BuildConfig translates a request into the SDK config.
// Exported for testing.
func BuildConfig(req relay.GenerateRequest) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{MaxOutputTokens: defaultMaxTokens}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	switch req.Mode {
	case relay.ModePlain, "":
	case relay.ModeTools:
		config.Tools = ConvertTools(req.Tools)
	case relay.ModeSearch:
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	default:
		return nil, fmt.Errorf("gemini: %w: %q", relay.ErrUnsupportedMode, req.Mode)
	}
	return config, nil
}

// ConvertTools converts relay Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []relay.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		// Parameters is json.RawMessage; always valid JSON from domain types.
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// ParseResponse extracts text, function calls and grounding from the first
// candidate. Thought parts are skipped.
// Exported for testing.
func ParseResponse(resp *genai.GenerateContentResponse) (relay.GenerateResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return relay.GenerateResponse{}, fmt.Errorf("gemini: %w: no candidates", relay.ErrGeneration)
	}
	cand := resp.Candidates[0]

	var out relay.GenerateResponse
	var text strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			switch {
			case part == nil || part.Thought:
			case part.FunctionCall != nil:
				fnArgs := part.FunctionCall.Args
				if fnArgs == nil {
					fnArgs = map[string]any{}
				}
				args, err := json.Marshal(fnArgs)
				if err != nil {
					return relay.GenerateResponse{}, fmt.Errorf("gemini: %w: encoding args for %s: %w", relay.ErrGeneration, part.FunctionCall.Name, err)
				}
				id := part.FunctionCall.ID
				if id == "" {
					id = fmt.Sprintf("call_%d", len(out.ToolCalls))
				}
				out.ToolCalls = append(out.ToolCalls, relay.ToolCall{
					ID:        id,
					Name:      part.FunctionCall.Name,
					Arguments: args,
				})
			default:
				text.WriteString(part.Text)
			}
		}
	}
	out.Text = text.String()
	out.Grounded = cand.GroundingMetadata != nil &&
		(len(cand.GroundingMetadata.GroundingChunks) > 0 || len(cand.GroundingMetadata.WebSearchQueries) > 0)

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return relay.GenerateResponse{}, fmt.Errorf("gemini: %w: empty candidate (finish reason %s)", relay.ErrGeneration, cand.FinishReason)
	}
	return out, nil
}
