// Package builtin provides the functions the generator may call: the current
// time and a weather lookup.
package builtin

import "github.com/fwojciec/relay"

func domainError(msg string) *relay.ToolResult {
	return &relay.ToolResult{Text: msg, IsError: true}
}

func textResult(text string) *relay.ToolResult {
	return &relay.ToolResult{Text: text}
}
