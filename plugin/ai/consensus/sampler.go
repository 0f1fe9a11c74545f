// Package consensus extracts a structured value from a noisy oracle by
// sampling it repeatedly and accepting a value only once a quorum of
// attempts agree on it exactly.
package consensus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQuorum is the number of identical samples needed to agree.
	DefaultQuorum = 3
	// DefaultMaxAttempts caps the oracle calls made for one extraction.
	DefaultMaxAttempts = 21
)

// Oracle produces at most one candidate value per call.
// It returns ErrNoCandidate when it answered without a value and
// ErrSchemaMismatch when its output could not be read as V.
type Oracle[V comparable] func(ctx context.Context, prompt string) (V, error)

// Config holds the sampling policy.
type Config struct {
	Quorum      int
	MaxAttempts int
	// Concurrency is the number of oracle calls allowed in flight.
	// 1 samples strictly sequentially.
	Concurrency int
	// AttemptTimeout bounds a single oracle call; 0 leaves timeouts to the oracle.
	AttemptTimeout time.Duration
}

// DefaultConfig returns the default sampling policy.
func DefaultConfig() Config {
	return Config{
		Quorum:      DefaultQuorum,
		MaxAttempts: DefaultMaxAttempts,
		Concurrency: 1,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Quorum < 1 {
		return fmt.Errorf("quorum must be at least 1, got %d", c.Quorum)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.Quorum > c.MaxAttempts {
		return fmt.Errorf("quorum %d can never be reached within %d attempts", c.Quorum, c.MaxAttempts)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.AttemptTimeout < 0 {
		return fmt.Errorf("attempt timeout must not be negative")
	}
	return nil
}

// Result is the outcome of one extraction.
type Result[V comparable] struct {
	// Value is the agreed value, or the zero V when Agreed is false.
	Value V
	// Agreed reports whether some value reached the quorum.
	Agreed bool
	// Votes is the agreed value's count.
	Votes int
	// Attempts is the number of oracle calls made.
	Attempts int
	// Samples is the number of usable samples received.
	Samples int
	// Tally is the candidate pool as it stood when sampling stopped.
	Tally []Candidate[V]

	// unreachable counts attempts that failed without any answer.
	unreachable int
}

// Sampler runs extractions under a fixed policy.
// It holds no per-call state and is safe for concurrent use.
type Sampler struct {
	cfg    Config
	logger *slog.Logger
}

// NewSampler creates a new Sampler. A nil logger falls back to slog.Default.
func NewSampler(cfg Config, logger *slog.Logger) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{cfg: cfg, logger: logger}, nil
}

// Config returns the sampling policy.
func (s *Sampler) Config() Config {
	return s.cfg
}

// WithLogger returns a copy of the sampler that logs to logger.
func (s *Sampler) WithLogger(logger *slog.Logger) *Sampler {
	return &Sampler{cfg: s.cfg, logger: logger}
}

type loggerKey struct{}

// ContextWithLogger makes every extraction run under ctx log to logger
// instead of the sampler's own, so sampling lines carry the caller's fields.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Extract samples oracle with prompt until one value has been produced
// Quorum times or MaxAttempts calls have been made.
//
// Failed attempts are skipped and never counted. Reaching the quorum stops
// sampling immediately. Running out of attempts returns Agreed=false with
// the zero value, never a plurality winner. ErrOracleExhausted is returned
// only when no attempt yielded a usable sample. Cancelling ctx aborts the
// extraction with ctx's error.
func Extract[V comparable](ctx context.Context, s *Sampler, oracle Oracle[V], prompt string) (Result[V], error) {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		s = s.WithLogger(logger)
	}

	var (
		res Result[V]
		err error
	)
	start := time.Now()
	if s.cfg.Concurrency > 1 {
		res, err = extractConcurrent(ctx, s, oracle, prompt)
	} else {
		res, err = extractSequential(ctx, s, oracle, prompt)
	}
	if err != nil {
		return res, err
	}

	attrs := []slog.Attr{
		slog.Int("attempts", res.Attempts),
		slog.Int("samples", res.Samples),
		slog.Int("candidates", len(res.Tally)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	switch {
	case res.Agreed:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "consensus reached",
			append(attrs, slog.Any("value", res.Value), slog.Int("votes", res.Votes))...)
	case res.Samples == 0:
		s.logger.LogAttrs(ctx, slog.LevelWarn, "oracle exhausted",
			append(attrs, slog.Int("unreachable", res.unreachable))...)
		if res.unreachable == res.Attempts {
			return res, fmt.Errorf("%w after %d attempts: %w", ErrOracleExhausted, res.Attempts, ErrOracleUnavailable)
		}
		return res, fmt.Errorf("%w after %d attempts", ErrOracleExhausted, res.Attempts)
	default:
		s.logger.LogAttrs(ctx, slog.LevelWarn, "no consensus within attempt budget", attrs...)
	}
	return res, nil
}

func extractSequential[V comparable](ctx context.Context, s *Sampler, oracle Oracle[V], prompt string) (Result[V], error) {
	var res Result[V]
	p := newPool[V]()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			res.Tally = p.snapshot()
			return res, fmt.Errorf("extraction canceled: %w", err)
		}

		res.Attempts++
		v, err := call(ctx, s.cfg.AttemptTimeout, oracle, prompt)
		if err != nil {
			if ctx.Err() != nil {
				res.Tally = p.snapshot()
				return res, fmt.Errorf("extraction canceled: %w", ctx.Err())
			}
			if s.skip(ctx, attempt, err) {
				res.unreachable++
			}
			continue
		}

		res.Samples++
		votes := p.add(v)
		s.logger.LogAttrs(ctx, slog.LevelDebug, "sample received",
			slog.Int("attempt", attempt), slog.Any("value", v), slog.Int("votes", votes))
		if votes >= s.cfg.Quorum {
			res.Value, res.Agreed, res.Votes = v, true, votes
			break
		}
	}

	res.Tally = p.snapshot()
	return res, nil
}

// extractConcurrent keeps up to Concurrency attempts in flight. The pool
// update and quorum check share one lock, and no attempt starts after the
// quorum is reached. Samples from attempts still in flight at that point
// are discarded.
func extractConcurrent[V comparable](ctx context.Context, s *Sampler, oracle Oracle[V], prompt string) (Result[V], error) {
	var (
		mu  sync.Mutex
		res Result[V]
		p   = newPool[V]()
	)

	sampleCtx, stop := context.WithCancel(ctx)
	defer stop()

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		mu.Lock()
		done := res.Agreed
		mu.Unlock()
		if done || sampleCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			mu.Lock()
			if res.Agreed {
				mu.Unlock()
				return nil
			}
			res.Attempts++
			mu.Unlock()

			v, err := call(sampleCtx, s.cfg.AttemptTimeout, oracle, prompt)

			mu.Lock()
			defer mu.Unlock()
			if res.Agreed {
				return nil
			}
			if err != nil {
				if sampleCtx.Err() == nil && s.skip(ctx, attempt, err) {
					res.unreachable++
				}
				return nil
			}
			res.Samples++
			votes := p.add(v)
			s.logger.LogAttrs(ctx, slog.LevelDebug, "sample received",
				slog.Int("attempt", attempt), slog.Any("value", v), slog.Int("votes", votes))
			if votes >= s.cfg.Quorum {
				res.Value, res.Agreed, res.Votes = v, true, votes
				stop()
			}
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	res.Tally = p.snapshot()
	if !res.Agreed && ctx.Err() != nil {
		return res, fmt.Errorf("extraction canceled: %w", ctx.Err())
	}
	return res, nil
}

// call invokes the oracle once, bounded by AttemptTimeout when set.
func call[V comparable](ctx context.Context, timeout time.Duration, oracle Oracle[V], prompt string) (V, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return oracle(ctx, prompt)
}

// skip logs a failed attempt and reports whether the oracle gave no answer at all.
func (s *Sampler) skip(ctx context.Context, attempt int, err error) bool {
	class := failureClass(err)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "attempt skipped",
		slog.Int("attempt", attempt),
		slog.String("reason", class),
		slog.String("error", err.Error()))
	return class == classOracleError || class == classTimeout
}
