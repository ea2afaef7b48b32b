package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider and TALKIE_LLM_PROVIDER.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the text generator behind the coach.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible servers
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig shapes the backoff of WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig picks small, fast models: coach replies are a few short
// sentences.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2,
		},
		Timeout: 20 * time.Second,
	}
}

// envBinding ties one environment variable to a Config field.
type envBinding struct {
	name string
	set  func(*Config, string)
}

var envBindings = []envBinding{
	{"TALKIE_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"TALKIE_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"TALKIE_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"TALKIE_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"TALKIE_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"TALKIE_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"TALKIE_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"TALKIE_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"TALKIE_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"TALKIE_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
	{"TALKIE_OPENROUTER_BASE_URL", func(c *Config, v string) { c.OpenRouter.BaseURL = v }},
	{"TALKIE_LLM_TIMEOUT", func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeout = d
		}
	}},
}

// ConfigFromEnv overlays the TALKIE_ variables that are set on
// DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(&cfg, v)
		}
	}
	return cfg
}

// Resolve returns the configuration to run with. An explicit
// TALKIE_LLM_PROVIDER wins; otherwise the vendors' standard key variables
// are probed. ok is false when nothing is configured, in which case the
// coach runs on canned replies.
func Resolve() (cfg Config, ok bool) {
	if os.Getenv("TALKIE_LLM_PROVIDER") != "" {
		return ConfigFromEnv(), true
	}
	return DiscoverConfig()
}

// discovery lists the standard key variables in probe order.
var discovery = []struct {
	env      string
	provider string
}{
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig returns a Config for the first standard key variable
// that is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discovery {
		key := os.Getenv(d.env)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = d.provider
		cfg.setKey(key)
		return cfg, true
	}
	return Config{}, false
}

func (c *Config) setKey(key string) {
	switch c.Provider {
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
}

func (c Config) key() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.key() == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
}
