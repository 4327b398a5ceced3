package config

import (
	"flag"
	"time"

	"github.com/fwojciec/relay"
)

// Flags binds configuration flags to a FlagSet. Only flags given on the
// command line override other sources.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string

	provider       string
	apiKey         string
	model          string
	target         string
	chatDuration   time.Duration
	checkInterval  time.Duration
	responseDelay  time.Duration
	statusInterval time.Duration
	maxHistory     int
	recentKeep     int
	summaryTurns   int
	maxLength      int
	noTools        bool
	noSearch       bool
	noGreeting     bool
	systemPrompt   string
	metricsAddr    string
	transcript     string
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	d := relay.DefaultConfig()
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.provider, "provider", "", "Provider: gemini, anthropic (auto-detected from env vars if omitted)")
	fs.StringVar(&f.apiKey, "api-key", "", "API key (overrides provider's env var)")
	fs.StringVar(&f.model, "model", "", "Model ID (default: provider default)")
	fs.StringVar(&f.target, "target", "", "Chat target to converse with")
	fs.DurationVar(&f.chatDuration, "duration", d.ChatDuration, "Total session length")
	fs.DurationVar(&f.checkInterval, "check-interval", d.CheckInterval, "Pause between polls")
	fs.DurationVar(&f.responseDelay, "response-delay", d.ResponseDelay, "Pause before each reply")
	fs.DurationVar(&f.statusInterval, "status-interval", d.StatusInterval, "Period of the status log line")
	fs.IntVar(&f.maxHistory, "max-history", d.MaxHistory, "Turns kept before summarizing")
	fs.IntVar(&f.recentKeep, "recent-keep", d.RecentKeep, "Turns kept verbatim after summarizing")
	fs.IntVar(&f.summaryTurns, "summary-turns", d.SummaryTurns, "Turns covered by a conversation summary")
	fs.IntVar(&f.maxLength, "max-length", d.MaxResponseLength, "Maximum reply length in characters")
	fs.BoolVar(&f.noTools, "no-tools", false, "Disable function calling")
	fs.BoolVar(&f.noSearch, "no-search", false, "Disable search grounding")
	fs.BoolVar(&f.noGreeting, "no-greeting", false, "Do not greet at session start")
	fs.StringVar(&f.systemPrompt, "system-prompt", "", "Glob of system prompt files, e.g. '.relay/prompt/**/*.md'")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve /metrics, /stats and /healthz on this address")
	fs.StringVar(&f.transcript, "transcript", "", "Save the conversation to this JSON file at exit")
	return f
}

func (f *Flags) apply(cfg *relay.Config, prompt *string) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "provider":
			cfg.Provider = f.provider
		case "api-key":
			cfg.APIKey = f.apiKey
		case "model":
			cfg.Model = f.model
		case "target":
			cfg.Target = f.target
		case "duration":
			cfg.ChatDuration = f.chatDuration
		case "check-interval":
			cfg.CheckInterval = f.checkInterval
		case "response-delay":
			cfg.ResponseDelay = f.responseDelay
		case "status-interval":
			cfg.StatusInterval = f.statusInterval
		case "max-history":
			cfg.MaxHistory = f.maxHistory
		case "recent-keep":
			cfg.RecentKeep = f.recentKeep
		case "summary-turns":
			cfg.SummaryTurns = f.summaryTurns
		case "max-length":
			cfg.MaxResponseLength = f.maxLength
		case "no-tools":
			cfg.EnableTools = !f.noTools
		case "no-search":
			cfg.EnableSearch = !f.noSearch
		case "no-greeting":
			cfg.Greeting = !f.noGreeting
		case "system-prompt":
			*prompt = f.systemPrompt
		case "metrics-addr":
			cfg.MetricsAddr = f.metricsAddr
		case "transcript":
			cfg.TranscriptPath = f.transcript
		}
	})
}
