package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var nlcalEnvVars = []string{
	"NLCAL_LLM_PROVIDER",
	"NLCAL_LLM_MODEL",
	"NLCAL_LLM_BASE_URL",
	"NLCAL_LLM_API_KEY",
	"NLCAL_LLM_TEMPERATURE",
	"NLCAL_LLM_MAX_TOKENS",
	"NLCAL_QUORUM",
	"NLCAL_MAX_ATTEMPTS",
	"NLCAL_CONCURRENCY",
	"NLCAL_ORACLE_TIMEOUT",
	"NLCAL_RATE_LIMIT",
	"NLCAL_TIMEZONE",
	"NLCAL_CACHE_SIZE",
	"NLCAL_CACHE_TTL",
}

// clearEnv blanks every NLCAL_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range nlcalEnvVars {
		t.Setenv(key, "")
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{}
	if err := p.FromEnv(); err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if p.LLMProvider != "ollama" {
		t.Errorf("LLMProvider: expected ollama, got %q", p.LLMProvider)
	}
	if p.LLMModel != "qwen3:8b" {
		t.Errorf("LLMModel: expected qwen3:8b, got %q", p.LLMModel)
	}
	if p.LLMBaseURL != "" {
		t.Errorf("LLMBaseURL: expected empty, got %q", p.LLMBaseURL)
	}
	if p.LLMTemperature != 0.7 {
		t.Errorf("LLMTemperature: expected 0.7, got %v", p.LLMTemperature)
	}
	if p.LLMMaxTokens != 512 {
		t.Errorf("LLMMaxTokens: expected 512, got %d", p.LLMMaxTokens)
	}
	if p.Quorum != 3 || p.MaxAttempts != 21 || p.Concurrency != 1 {
		t.Errorf("sampling: expected 3/21/1, got %d/%d/%d", p.Quorum, p.MaxAttempts, p.Concurrency)
	}
	if p.OracleTimeout != 60*time.Second {
		t.Errorf("OracleTimeout: expected 60s, got %v", p.OracleTimeout)
	}
	if p.RateLimit != 0 {
		t.Errorf("RateLimit: expected 0, got %v", p.RateLimit)
	}
	if p.CacheSize != 256 || p.CacheTTL != 0 {
		t.Errorf("cache: expected 256/0s, got %d/%v", p.CacheSize, p.CacheTTL)
	}
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(*Profile) bool
	}{
		{"provider is lowercased", "NLCAL_LLM_PROVIDER", "DeepSeek", func(p *Profile) bool { return p.LLMProvider == "deepseek" }},
		{"model", "NLCAL_LLM_MODEL", "gpt-4o-mini", func(p *Profile) bool { return p.LLMModel == "gpt-4o-mini" }},
		{"base url", "NLCAL_LLM_BASE_URL", "http://localhost:11434/v1", func(p *Profile) bool { return p.LLMBaseURL == "http://localhost:11434/v1" }},
		{"api key", "NLCAL_LLM_API_KEY", "sk-test", func(p *Profile) bool { return p.LLMAPIKey == "sk-test" }},
		{"quorum", "NLCAL_QUORUM", "5", func(p *Profile) bool { return p.Quorum == 5 }},
		{"max attempts", "NLCAL_MAX_ATTEMPTS", "9", func(p *Profile) bool { return p.MaxAttempts == 9 }},
		{"concurrency", "NLCAL_CONCURRENCY", "4", func(p *Profile) bool { return p.Concurrency == 4 }},
		{"oracle timeout", "NLCAL_ORACLE_TIMEOUT", "1m30s", func(p *Profile) bool { return p.OracleTimeout == 90*time.Second }},
		{"rate limit", "NLCAL_RATE_LIMIT", "2.5", func(p *Profile) bool { return p.RateLimit == 2.5 }},
		{"cache ttl", "NLCAL_CACHE_TTL", "15m", func(p *Profile) bool { return p.CacheTTL == 15*time.Minute }},
		{"timezone", "NLCAL_TIMEZONE", "Europe/Berlin", func(p *Profile) bool { return p.Timezone == "Europe/Berlin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.envVar, tt.envValue)

			p := &Profile{}
			if err := p.FromEnv(); err != nil {
				t.Fatalf("FromEnv: %v", err)
			}
			if !tt.check(p) {
				t.Errorf("%s=%s was not applied: %+v", tt.envVar, tt.envValue, p)
			}
		})
	}
}

func TestProfileFromEnvRejectsMalformedNumbers(t *testing.T) {
	for _, key := range []string{"NLCAL_QUORUM", "NLCAL_LLM_TEMPERATURE", "NLCAL_ORACLE_TIMEOUT", "NLCAL_RATE_LIMIT", "NLCAL_CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "lots")

			p := &Profile{}
			if err := p.FromEnv(); err == nil {
				t.Errorf("expected an error for %s=lots", key)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	dir := t.TempDir()

	p := &Profile{Mode: "bogus", Data: dir}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("Mode: expected demo, got %q", p.Mode)
	}
	if p.Driver != "sqlite" {
		t.Errorf("Driver: expected sqlite, got %q", p.Driver)
	}
	if want := filepath.Join(dir, "nlcal_demo.db"); p.DSN != want {
		t.Errorf("DSN: expected %q, got %q", want, p.DSN)
	}
}

func TestProfileValidateErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name    string
		profile Profile
	}{
		{"unknown driver", Profile{Driver: "mysql"}},
		{"postgres without dsn", Profile{Driver: "postgres"}},
		{"missing data dir", Profile{Driver: "sqlite", Data: missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.profile.Validate(); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("Validate must not create %s", missing)
	}
}
