package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/hrygo/nlcal/plugin/ai/consensus"
)

// Schema describes a value type V to the model and reads it back.
type Schema[V comparable] struct {
	Name        string
	Description string
	Definition  jsonschema.Definition
	// Decode converts one JSON document into V. Nil means json.Unmarshal.
	// Returning an error wrapping consensus.ErrNoCandidate marks an answer
	// that is well-formed but carries no value.
	Decode func(data []byte) (V, error)
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Bind turns c into a consensus oracle for V. Each call sends system and
// the prompt under schema and decodes exactly one candidate.
func Bind[V comparable](c Completer, system string, schema Schema[V]) consensus.Oracle[V] {
	return func(ctx context.Context, prompt string) (V, error) {
		var zero V

		def := schema.Definition
		raw, err := c.Complete(ctx, Request{
			System:     system,
			Prompt:     prompt,
			SchemaName: schema.Name,
			Schema:     &def,
		})
		if err != nil {
			return zero, err
		}

		content := extractJSON(raw)
		if content == "" || content == "null" {
			return zero, consensus.ErrNoCandidate
		}

		v, err := schema.decode([]byte(content))
		if err != nil {
			if errors.Is(err, consensus.ErrNoCandidate) {
				return zero, err
			}
			return zero, fmt.Errorf("%w: %s: %v", consensus.ErrSchemaMismatch, schema.Name, err)
		}
		return v, nil
	}
}

func (s Schema[V]) decode(data []byte) (V, error) {
	if s.Decode != nil {
		return s.Decode(data)
	}
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}

// extractJSON trims the response and unwraps a markdown code fence.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if m := codeFence.FindStringSubmatch(content); len(m) > 1 {
			content = strings.TrimSpace(m[1])
		}
	}
	return content
}
