package ai

import (
	"errors"
	"fmt"

	"github.com/hrygo/nlcal/internal/profile"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
)

// Supported LLM providers.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Config represents AI configuration.
type Config struct {
	LLM      LLMConfig
	Sampling consensus.Config
	// RateLimit caps oracle requests per second. 0 disables limiting.
	RateLimit float64
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string  // deepseek, openai, ollama
	Model       string  // qwen3:8b
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 512
	Temperature float32 // default: 0.7
}

// DefaultBaseURL returns the endpoint used when no base URL is configured.
func DefaultBaseURL(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderDeepSeek:
		return "https://api.deepseek.com"
	case ProviderOllama:
		return "http://localhost:11434"
	default:
		return ""
	}
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:    p.LLMProvider,
			Model:       p.LLMModel,
			APIKey:      p.LLMAPIKey,
			BaseURL:     p.LLMBaseURL,
			MaxTokens:   p.LLMMaxTokens,
			Temperature: p.LLMTemperature,
		},
		Sampling: consensus.Config{
			Quorum:         p.Quorum,
			MaxAttempts:    p.MaxAttempts,
			Concurrency:    p.Concurrency,
			AttemptTimeout: p.OracleTimeout,
		},
		RateLimit: p.RateLimit,
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultBaseURL(cfg.LLM.Provider)
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Sampling.Validate(); err != nil {
		return fmt.Errorf("invalid sampling config: %w", err)
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// Validate validates the LLM settings.
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case "":
		return errors.New("LLM provider is required")
	case ProviderOpenAI, ProviderDeepSeek, ProviderOllama:
	default:
		return fmt.Errorf("unsupported LLM provider %q", c.Provider)
	}

	if c.Model == "" {
		return errors.New("LLM model is required")
	}

	if c.Provider != ProviderOllama && c.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM temperature %.2f is out of range [0, 2]", c.Temperature)
	}

	return nil
}
