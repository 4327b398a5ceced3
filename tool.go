package relay

import (
	"context"
	"encoding/json"
)

// Tool is the schema sent to the generator describing a callable function.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is a function invocation requested by the generator.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolExecutor runs tools. Execute returns error for infrastructure failures.
// ToolResult.IsError marks tool-reported failures; their Text describes the
// problem and is folded into the final answer like any other result.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	Text    string
	IsError bool
}
