package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/hrygo/nlcal/plugin/ai"
)

// OllamaCompleter uses Ollama's native chat API, which accepts a JSON schema
// in the request's format field.
type OllamaCompleter struct {
	client      *ollama.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOllamaCompleter creates a completer for the Ollama server at cfg.BaseURL.
func NewOllamaCompleter(cfg ai.LLMConfig, httpClient *http.Client) (*OllamaCompleter, error) {
	base := cfg.BaseURL
	if base == "" {
		base = ai.DefaultBaseURL(ai.ProviderOllama)
	}
	// The native API lives at the root; tolerate an OpenAI-style /v1 suffix.
	base = strings.TrimSuffix(strings.TrimRight(base, "/"), "/v1")

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", cfg.BaseURL, err)
	}

	return &OllamaCompleter{
		client:      ollama.NewClient(u, httpClient),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete runs one non-streaming chat and returns the assistant message.
func (c *OllamaCompleter) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]ollama.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: req.Prompt})

	format := json.RawMessage(`"json"`)
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("marshal %s schema: %w", req.SchemaName, err)
		}
		format = raw
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Format:   format,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var content strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp ollama.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return content.String(), nil
}
