// Package oracle turns chat-completion backends into consensus oracles that
// answer with one JSON document per call.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/hrygo/nlcal/plugin/ai"
)

// Request is a single structured-generation call.
type Request struct {
	// System is the system prompt describing the expected output.
	System string
	// Prompt is the user message.
	Prompt string
	// SchemaName names the response schema, e.g. "when".
	SchemaName string
	// Schema constrains the response. Backends without schema support
	// fall back to plain JSON mode.
	Schema *jsonschema.Definition
}

// Completer returns the raw text of one model response.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f(ctx, req).
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewCompleter builds the completer for cfg.LLM, wrapped in a rate limiter
// when cfg.RateLimit is positive.
func NewCompleter(cfg *ai.Config, logger *slog.Logger) (Completer, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	var c Completer
	switch cfg.LLM.Provider {
	case ai.ProviderOllama:
		oc, err := NewOllamaCompleter(cfg.LLM, http.DefaultClient)
		if err != nil {
			return nil, err
		}
		c = oc
	case ai.ProviderOpenAI, ai.ProviderDeepSeek:
		c = NewOpenAICompleter(cfg.LLM)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}

	if cfg.RateLimit > 0 {
		c = RateLimited(c, cfg.RateLimit, 1)
	}
	if logger != nil {
		logger.Info("LLM completer ready",
			slog.String("provider", cfg.LLM.Provider),
			slog.String("model", cfg.LLM.Model),
			slog.String("base_url", cfg.LLM.BaseURL),
			slog.Float64("rate_limit", cfg.RateLimit))
	}
	return c, nil
}
