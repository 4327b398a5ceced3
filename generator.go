package relay

import "context"

// Mode selects how a generator produces text.
type Mode string

const (
	ModePlain  Mode = "plain"  // text generation only
	ModeTools  Mode = "tools"  // function calling against Request.Tools
	ModeSearch Mode = "search" // grounded on live search results
)

// GenerateRequest carries one generation call.
type GenerateRequest struct {
	SystemPrompt string
	Prompt       string
	Mode         Mode
	Tools        []Tool // only used with ModeTools
}

// GenerateResponse is the generator's answer. In ModeTools the response may
// carry ToolCalls instead of (or alongside) Text.
type GenerateResponse struct {
	Text      string
	ToolCalls []ToolCall
	Grounded  bool // search results contributed to Text
}

// Generator turns a prompt into text. Implementations are synchronous and
// must return an error wrapping [ErrGeneration] (or [ErrUnsupportedMode])
// rather than malformed text.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
