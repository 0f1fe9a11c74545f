package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/nlcal/plugin/ai/timeout"
)

// Profile is the configuration shared by the CLI and the HTTP server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where nlcal stores calendar entries
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of nlcal
	Version string

	// LLM configuration
	LLMProvider    string  // NLCAL_LLM_PROVIDER (default: ollama)
	LLMModel       string  // NLCAL_LLM_MODEL (default: qwen3:8b)
	LLMBaseURL     string  // NLCAL_LLM_BASE_URL (default: per provider)
	LLMAPIKey      string  // NLCAL_LLM_API_KEY
	LLMTemperature float32 // NLCAL_LLM_TEMPERATURE (default: 0.7)
	LLMMaxTokens   int     // NLCAL_LLM_MAX_TOKENS (default: 512)

	// Consensus sampling
	Quorum        int           // NLCAL_QUORUM (default: 3)
	MaxAttempts   int           // NLCAL_MAX_ATTEMPTS (default: 21)
	Concurrency   int           // NLCAL_CONCURRENCY (default: 1)
	OracleTimeout time.Duration // NLCAL_ORACLE_TIMEOUT (default: 60s)
	RateLimit     float64       // NLCAL_RATE_LIMIT, requests per second (default: 0, unlimited)

	// Extraction cache; a zero TTL turns it off
	CacheSize int           // NLCAL_CACHE_SIZE (default: 256)
	CacheTTL  time.Duration // NLCAL_CACHE_TTL (default: 0)

	// Timezone is the IANA name used for the reference instant (default: local)
	Timezone string // NLCAL_TIMEZONE
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads LLM and sampling configuration from NLCAL_* environment variables.
// Unset variables take their defaults; malformed numbers are reported as errors.
func (p *Profile) FromEnv() error {
	p.LLMProvider = strings.ToLower(getEnvOrDefault("NLCAL_LLM_PROVIDER", "ollama"))
	p.LLMModel = getEnvOrDefault("NLCAL_LLM_MODEL", "qwen3:8b")
	p.LLMBaseURL = os.Getenv("NLCAL_LLM_BASE_URL")
	p.LLMAPIKey = os.Getenv("NLCAL_LLM_API_KEY")
	p.Timezone = os.Getenv("NLCAL_TIMEZONE")

	temperature, err := strconv.ParseFloat(getEnvOrDefault("NLCAL_LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return errors.Wrap(err, "invalid NLCAL_LLM_TEMPERATURE")
	}
	p.LLMTemperature = float32(temperature)

	ints := []struct {
		key  string
		def  string
		dest *int
	}{
		{"NLCAL_LLM_MAX_TOKENS", "512", &p.LLMMaxTokens},
		{"NLCAL_QUORUM", "3", &p.Quorum},
		{"NLCAL_MAX_ATTEMPTS", "21", &p.MaxAttempts},
		{"NLCAL_CONCURRENCY", "1", &p.Concurrency},
		{"NLCAL_CACHE_SIZE", "256", &p.CacheSize},
	}
	for _, v := range ints {
		n, err := strconv.Atoi(getEnvOrDefault(v.key, v.def))
		if err != nil {
			return errors.Wrapf(err, "invalid %s", v.key)
		}
		*v.dest = n
	}

	p.OracleTimeout, err = time.ParseDuration(getEnvOrDefault("NLCAL_ORACLE_TIMEOUT", timeout.OracleTimeout.String()))
	if err != nil {
		return errors.Wrap(err, "invalid NLCAL_ORACLE_TIMEOUT")
	}

	p.RateLimit, err = strconv.ParseFloat(getEnvOrDefault("NLCAL_RATE_LIMIT", "0"), 64)
	if err != nil {
		return errors.Wrap(err, "invalid NLCAL_RATE_LIMIT")
	}

	p.CacheTTL, err = time.ParseDuration(getEnvOrDefault("NLCAL_CACHE_TTL", "0s"))
	if err != nil {
		return errors.Wrap(err, "invalid NLCAL_CACHE_TTL")
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Driver == "postgres" {
		if p.DSN == "" {
			return errors.New("postgres driver requires a DSN")
		}
		return nil
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		dbFile := fmt.Sprintf("nlcal_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
