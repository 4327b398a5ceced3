// Package gemini implements [relay.Generator] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Tool mode sends function
// declarations; search mode enables Google Search grounding.
package gemini

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 2048
)
