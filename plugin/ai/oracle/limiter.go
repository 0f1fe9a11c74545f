package oracle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

// RateLimited wraps c so that at most perSecond requests start each second,
// with bursts of up to burst requests. Waiting honours ctx.
func RateLimited(c Completer, perSecond float64, burst int) Completer {
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{
		next:    c,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *rateLimited) Complete(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Complete(ctx, req)
}
