package port

import (
	"context"
	"time"
)

// RateDecision is the verdict for one request against a rate limit.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter abstracts a shared request limiter keyed by caller.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
