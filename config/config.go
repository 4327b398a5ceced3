// Package config assembles a [relay.Config] from defaults, a YAML file,
// .env files, the environment, command-line flags and the OS keyring, in
// increasing order of precedence. The keyring is consulted only when no
// other source provides an API key.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/relay"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// KeyringService is the OS keyring service holding API keys, one entry per
// provider name.
const KeyringService = "relay"

// Environment variable names.
const (
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	envPrefix       = "RELAY_"
)

// DefaultEnvFiles are read when no others are configured. Missing files
// are skipped.
var DefaultEnvFiles = []string{".env", ".env.local"}

// file is the YAML layout: every relay.Config field plus a prompt glob.
type file struct {
	relay.Config `yaml:",inline"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Loader loads configuration.
type Loader struct {
	lookup   func(string) (string, bool)
	keyring  func(service, user string) (string, error)
	envFiles []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookup = fn }
}

// WithKeyring replaces the OS keyring lookup.
func WithKeyring(fn func(service, user string) (string, error)) Option {
	return func(l *Loader) { l.keyring = fn }
}

// WithEnvFiles sets the .env files to read. None disables .env loading.
func WithEnvFiles(paths ...string) Option {
	return func(l *Loader) { l.envFiles = paths }
}

// NewLoader creates a Loader reading the process environment and the OS
// keyring.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		lookup:   os.LookupEnv,
		keyring:  keyring.Get,
		envFiles: DefaultEnvFiles,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the configuration. path names a YAML file and may be empty.
// flags may be nil. The result is not validated.
func (l *Loader) Load(path string, flags *Flags) (relay.Config, error) {
	f := file{Config: relay.DefaultConfig()}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return relay.Config{}, fmt.Errorf("read config: %w: %w", relay.ErrConfiguration, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return relay.Config{}, fmt.Errorf("parse config %s: %w: %w", path, relay.ErrConfiguration, err)
		}
	}
	cfg := f.Config
	prompt := f.SystemPrompt

	env, err := l.environment()
	if err != nil {
		return relay.Config{}, err
	}
	if err := applyEnv(&cfg, &prompt, env); err != nil {
		return relay.Config{}, err
	}
	if flags != nil {
		flags.apply(&cfg, &prompt)
	}
	if err := l.resolveKey(&cfg, env); err != nil {
		return relay.Config{}, err
	}
	if prompt != "" {
		text, err := LoadPrompt(prompt)
		if err != nil {
			return relay.Config{}, err
		}
		cfg.SystemInstruction = text
	}
	return cfg, nil
}

// environment merges .env files under the real environment. Values already
// present in the environment win.
func (l *Loader) environment() (func(string) (string, bool), error) {
	dotenv := make(map[string]string)
	for _, p := range l.envFiles {
		vals, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", p, relay.ErrConfiguration, err)
		}
		for k, v := range vals {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

type envSetter func(cfg *relay.Config, prompt *string, v string) error

func stringVar(dst func(*relay.Config) *string) envSetter {
	return func(cfg *relay.Config, _ *string, v string) error {
		*dst(cfg) = v
		return nil
	}
}

func durationVar(dst func(*relay.Config) *time.Duration) envSetter {
	return func(cfg *relay.Config, _ *string, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(cfg) = d
		return nil
	}
}

func intVar(dst func(*relay.Config) *int) envSetter {
	return func(cfg *relay.Config, _ *string, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(cfg) = n
		return nil
	}
}

func boolVar(dst func(*relay.Config) *bool) envSetter {
	return func(cfg *relay.Config, _ *string, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(cfg) = b
		return nil
	}
}

// envVars maps RELAY_* suffixes to config fields.
var envVars = map[string]envSetter{
	"PROVIDER":            stringVar(func(c *relay.Config) *string { return &c.Provider }),
	"API_KEY":             stringVar(func(c *relay.Config) *string { return &c.APIKey }),
	"MODEL":               stringVar(func(c *relay.Config) *string { return &c.Model }),
	"TARGET":              stringVar(func(c *relay.Config) *string { return &c.Target }),
	"CHAT_DURATION":       durationVar(func(c *relay.Config) *time.Duration { return &c.ChatDuration }),
	"CHECK_INTERVAL":      durationVar(func(c *relay.Config) *time.Duration { return &c.CheckInterval }),
	"RESPONSE_DELAY":      durationVar(func(c *relay.Config) *time.Duration { return &c.ResponseDelay }),
	"STATUS_INTERVAL":     durationVar(func(c *relay.Config) *time.Duration { return &c.StatusInterval }),
	"MAX_HISTORY":         intVar(func(c *relay.Config) *int { return &c.MaxHistory }),
	"RECENT_KEEP":         intVar(func(c *relay.Config) *int { return &c.RecentKeep }),
	"SUMMARY_TURNS":       intVar(func(c *relay.Config) *int { return &c.SummaryTurns }),
	"MAX_RESPONSE_LENGTH": intVar(func(c *relay.Config) *int { return &c.MaxResponseLength }),
	"ENABLE_TOOLS":        boolVar(func(c *relay.Config) *bool { return &c.EnableTools }),
	"ENABLE_SEARCH":       boolVar(func(c *relay.Config) *bool { return &c.EnableSearch }),
	"GREETING":            boolVar(func(c *relay.Config) *bool { return &c.Greeting }),
	"METRICS_ADDR":        stringVar(func(c *relay.Config) *string { return &c.MetricsAddr }),
	"TRANSCRIPT":          stringVar(func(c *relay.Config) *string { return &c.TranscriptPath }),
	"SYSTEM_PROMPT": func(_ *relay.Config, prompt *string, v string) error {
		*prompt = v
		return nil
	},
}

func applyEnv(cfg *relay.Config, prompt *string, env func(string) (string, bool)) error {
	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, ok := env(envPrefix + k)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := envVars[k](cfg, prompt, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w: %w", envPrefix, k, relay.ErrConfiguration, err)
		}
	}
	return nil
}

// resolveKey picks the provider and its API key. An explicit key wins;
// otherwise the provider's environment variable, then the keyring. With no
// provider set it is detected from which provider key is present.
func (l *Loader) resolveKey(cfg *relay.Config, env func(string) (string, bool)) error {
	providerKeys := map[string]string{
		"gemini":    envValue(env, EnvGeminiKey),
		"anthropic": envValue(env, EnvAnthropicKey),
	}

	if cfg.Provider == "" {
		hasGemini := providerKeys["gemini"] != ""
		hasAnthropic := providerKeys["anthropic"] != ""
		switch {
		case cfg.APIKey != "":
			cfg.Provider = "gemini"
		case hasGemini && hasAnthropic:
			return fmt.Errorf("multiple API keys found (%s, %s), set a provider: %w", EnvGeminiKey, EnvAnthropicKey, relay.ErrConfiguration)
		case hasAnthropic:
			cfg.Provider = "anthropic"
		case hasGemini:
			cfg.Provider = "gemini"
		default:
			for _, name := range []string{"gemini", "anthropic"} {
				if key := l.fromKeyring(name); key != "" {
					cfg.Provider, cfg.APIKey = name, key
					return nil
				}
			}
			cfg.Provider = "gemini"
			return nil
		}
	}

	if cfg.APIKey == "" {
		cfg.APIKey = providerKeys[cfg.Provider]
	}
	if cfg.APIKey == "" {
		cfg.APIKey = l.fromKeyring(cfg.Provider)
	}
	return nil
}

func (l *Loader) fromKeyring(provider string) string {
	if l.keyring == nil {
		return ""
	}
	key, err := l.keyring(KeyringService, provider)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(key)
}

func envValue(env func(string) (string, bool), key string) string {
	v, _ := env(key)
	return strings.TrimSpace(v)
}

// LoadPrompt reads every file matching the doublestar pattern and joins them
// in lexical path order.
func LoadPrompt(pattern string) (string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("system prompt %q: %w: %w", pattern, relay.ErrConfiguration, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("system prompt %q matched no files: %w", pattern, relay.ErrConfiguration)
	}
	slices.Sort(matches)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return "", fmt.Errorf("read system prompt: %w: %w", relay.ErrConfiguration, err)
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("system prompt %q is empty: %w", pattern, relay.ErrConfiguration)
	}
	return strings.Join(parts, "\n\n"), nil
}
