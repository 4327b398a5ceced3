package relay

import "time"

// DefaultSystemInstruction is the brief given to the generator on every call.
const DefaultSystemInstruction = `You are a chat assistant replying inside a messaging app, with access to live search and function calling.

Guidelines:
- Use search or functions when asked for information you don't immediately know.
- Never promise to look something up later. Look it up now and answer.
- If you can't find specific information, say so and share what you did find.
- Keep replies conversational, short and informative.
- Reply in the same language as the user (English or Bengali).
- Plain text only. No emojis, no special symbols, no markdown.`

// Config carries every setting the core needs. It is built once at startup
// and passed by pointer into component constructors.
type Config struct {
	// Generator
	Provider string `yaml:"provider"` // "gemini" or "anthropic"; empty = detect from key
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"` // empty = provider default

	// Chat target identity handed to the transport.
	Target string `yaml:"target"`

	// Loop cadence
	ChatDuration   time.Duration `yaml:"chat_duration"`
	CheckInterval  time.Duration `yaml:"check_interval"`
	ResponseDelay  time.Duration `yaml:"response_delay"`
	StatusInterval time.Duration `yaml:"status_interval"`

	// Conversation window
	MaxHistory   int `yaml:"max_history"`
	RecentKeep   int `yaml:"recent_keep"`
	SummaryTurns int `yaml:"summary_turns"`

	MaxResponseLength int `yaml:"max_response_length"`

	EnableTools  bool `yaml:"enable_tools"`
	EnableSearch bool `yaml:"enable_search"`
	Greeting     bool `yaml:"greeting"`

	SystemInstruction string `yaml:"system_instruction"`

	// Optional outer surfaces; empty disables.
	MetricsAddr    string `yaml:"metrics_addr"`
	TranscriptPath string `yaml:"transcript_path"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		ChatDuration:      60 * time.Minute,
		CheckInterval:     500 * time.Millisecond,
		ResponseDelay:     500 * time.Millisecond,
		StatusInterval:    30 * time.Second,
		MaxHistory:        15,
		RecentKeep:        5,
		SummaryTurns:      10,
		MaxResponseLength: 4096,
		EnableTools:       true,
		EnableSearch:      true,
		Greeting:          true,
		SystemInstruction: DefaultSystemInstruction,
	}
}
