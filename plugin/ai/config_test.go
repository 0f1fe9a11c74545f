package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nlcal/internal/profile"
)

func defaultProfile() *profile.Profile {
	return &profile.Profile{
		LLMProvider:    "ollama",
		LLMModel:       "qwen3:8b",
		LLMTemperature: 0.7,
		LLMMaxTokens:   512,
		Quorum:         3,
		MaxAttempts:    21,
		Concurrency:    1,
		OracleTimeout:  time.Minute,
	}
}

// TestNewConfigFromProfile_Ollama tests the local default configuration.
func TestNewConfigFromProfile_Ollama(t *testing.T) {
	cfg := NewConfigFromProfile(defaultProfile())

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "qwen3:8b", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)

	assert.Equal(t, 3, cfg.Sampling.Quorum)
	assert.Equal(t, 21, cfg.Sampling.MaxAttempts)
	assert.Equal(t, 1, cfg.Sampling.Concurrency)
	assert.Equal(t, time.Minute, cfg.Sampling.AttemptTimeout)

	require.NoError(t, cfg.Validate())
}

// TestNewConfigFromProfile_BaseURL tests provider base URL defaults and overrides.
func TestNewConfigFromProfile_BaseURL(t *testing.T) {
	tests := []struct {
		provider string
		override string
		want     string
	}{
		{provider: "openai", want: "https://api.openai.com/v1"},
		{provider: "deepseek", want: "https://api.deepseek.com"},
		{provider: "ollama", want: "http://localhost:11434"},
		{provider: "openai", override: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+tt.override, func(t *testing.T) {
			p := defaultProfile()
			p.LLMProvider = tt.provider
			p.LLMBaseURL = tt.override

			cfg := NewConfigFromProfile(p)
			assert.Equal(t, tt.want, cfg.LLM.BaseURL)
		})
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*profile.Profile)
		wantErr string
	}{
		{name: "ollama needs no key", mutate: func(*profile.Profile) {}},
		{name: "openai with key", mutate: func(p *profile.Profile) {
			p.LLMProvider, p.LLMAPIKey = "openai", "sk-test"
		}},
		{name: "missing provider", mutate: func(p *profile.Profile) { p.LLMProvider = "" }, wantErr: "provider is required"},
		{name: "unknown provider", mutate: func(p *profile.Profile) { p.LLMProvider = "bard" }, wantErr: "unsupported LLM provider"},
		{name: "missing model", mutate: func(p *profile.Profile) { p.LLMModel = "" }, wantErr: "model is required"},
		{name: "deepseek without key", mutate: func(p *profile.Profile) { p.LLMProvider = "deepseek" }, wantErr: "API key is required"},
		{name: "temperature out of range", mutate: func(p *profile.Profile) { p.LLMTemperature = 3 }, wantErr: "temperature"},
		{name: "quorum above attempts", mutate: func(p *profile.Profile) { p.Quorum = 30 }, wantErr: "invalid sampling config"},
		{name: "negative rate limit", mutate: func(p *profile.Profile) { p.RateLimit = -1 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultProfile()
			tt.mutate(p)

			err := NewConfigFromProfile(p).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
