package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/cache"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/oracle"
)

const (
	// Validation constants
	MaxInputLength = 500 // characters
)

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrInputTooLong = errors.New("input too long")
	ErrNoCompleter  = errors.New("completer is required")
	ErrNoSampler    = errors.New("sampler is required")
)

// Parser extracts schedule information from natural language by sampling
// the model until its answers agree.
type Parser struct {
	when    consensus.Oracle[aitime.When]
	event   consensus.Oracle[Event]
	sampler *consensus.Sampler

	// Agreed results by prompt; nil when caching is off.
	whenCache  *cache.LRU[consensus.Result[aitime.When]]
	eventCache *cache.LRU[consensus.Result[Event]]
}

// NewParser creates a new schedule parser.
func NewParser(completer oracle.Completer, sampler *consensus.Sampler) (*Parser, error) {
	if completer == nil {
		return nil, ErrNoCompleter
	}
	if sampler == nil {
		return nil, ErrNoSampler
	}
	return &Parser{
		when:    oracle.Bind(completer, WhenSystemPrompt(), WhenSchema()),
		event:   oracle.Bind(completer, EventSystemPrompt(), EventSchema()),
		sampler: sampler,
	}, nil
}

// NewParserWithOracles creates a parser over prebuilt oracles.
func NewParserWithOracles(when consensus.Oracle[aitime.When], event consensus.Oracle[Event], sampler *consensus.Sampler) *Parser {
	return &Parser{when: when, event: event, sampler: sampler}
}

// WithCache makes the parser remember agreed results for ttl. The prompt
// carries the reference date, so a hit never crosses midnight.
func (p *Parser) WithCache(capacity int, ttl time.Duration) *Parser {
	p.whenCache = cache.New[consensus.Result[aitime.When]](capacity, ttl)
	p.eventCache = cache.New[consensus.Result[Event]](capacity, ttl)
	return p
}

// ParseWhen extracts the symbolic date the text refers to.
func (p *Parser) ParseWhen(ctx context.Context, text string, ref aitime.Reference) (consensus.Result[aitime.When], error) {
	prompt, err := p.prompt(text, ref)
	if err != nil {
		return consensus.Result[aitime.When]{}, err
	}
	return extractCached(ctx, p.sampler, p.when, p.whenCache, prompt)
}

// ParseEvent extracts the entry title and time of day.
func (p *Parser) ParseEvent(ctx context.Context, text string, ref aitime.Reference) (consensus.Result[Event], error) {
	prompt, err := p.prompt(text, ref)
	if err != nil {
		return consensus.Result[Event]{}, err
	}
	return extractCached(ctx, p.sampler, p.event, p.eventCache, prompt)
}

// extractCached serves agreed results from c. A hit reports zero attempts
// since no oracle call was made. Disagreements are never cached.
func extractCached[V comparable](ctx context.Context, s *consensus.Sampler, o consensus.Oracle[V], c *cache.LRU[consensus.Result[V]], prompt string) (consensus.Result[V], error) {
	if c != nil {
		if res, ok := c.Get(prompt); ok {
			res.Attempts = 0
			return res, nil
		}
	}
	res, err := consensus.Extract(ctx, s, o, prompt)
	if err == nil && res.Agreed && c != nil {
		c.Set(prompt, res)
	}
	return res, err
}

func (p *Parser) prompt(text string, ref aitime.Reference) (string, error) {
	if err := ValidateInput(text); err != nil {
		return "", err
	}
	return BuildPrompt(text, ref), nil
}

// ValidateInput rejects blank or oversized requests before any model call.
func ValidateInput(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if n := utf8.RuneCountInString(text); n > MaxInputLength {
		return fmt.Errorf("%w: maximum %d characters, got %d", ErrInputTooLong, MaxInputLength, n)
	}
	return nil
}
