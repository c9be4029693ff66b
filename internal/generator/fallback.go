package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/port"
)

// circuit tracks rate-limit backoff for one generator.
type circuit struct {
	mu      sync.RWMutex
	resetAt time.Time // zero means closed
}

func (c *circuit) openUntil(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuit) trip(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Named pairs a generator with the label used in logs.
type Named struct {
	Name      string
	Generator port.Generator
}

// FallbackGenerator opens a stream on the first generator whose circuit is
// closed. A generator that rate limits is skipped until its Retry-After
// passes. Once a stream is open its failures are returned as-is; fragments
// already delivered cannot be replayed on another model.
type FallbackGenerator struct {
	members  []Named
	circuits []*circuit
	log      *zap.Logger
	now      func() time.Time
}

// NewFallbackGenerator creates a FallbackGenerator trying members in order.
func NewFallbackGenerator(log *zap.Logger, members ...Named) *FallbackGenerator {
	circuits := make([]*circuit, len(members))
	for i := range circuits {
		circuits[i] = &circuit{}
	}
	return &FallbackGenerator{
		members:  members,
		circuits: circuits,
		log:      log,
		now:      time.Now,
	}
}

// Model reports the primary member's model.
func (f *FallbackGenerator) Model() string {
	if len(f.members) == 0 {
		return ""
	}
	return f.members[0].Generator.Model()
}

func (f *FallbackGenerator) Stream(ctx context.Context, input port.GenerateInput) (port.FragmentStream, error) {
	now := f.now()
	var (
		lastErr        error
		allRateLimited = true
		earliestReset  time.Time
	)
	noteReset := func(at time.Time) {
		if earliestReset.IsZero() || at.Before(earliestReset) {
			earliestReset = at
		}
	}

	for i, m := range f.members {
		if resetAt, open := f.circuits[i].openUntil(now); open {
			f.log.Debug("skipping rate limited generator",
				zap.String("generator", m.Name), zap.Time("until", resetAt))
			noteReset(resetAt)
			continue
		}

		stream, err := m.Generator.Stream(ctx, input)
		if err == nil {
			return stream, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		f.log.Warn("generator failed to open stream", zap.String("generator", m.Name), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].trip(resetAt)
			noteReset(resetAt)
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, &RateLimitError{
			Err:        fmt.Errorf("all generators rate limited"),
			RetryAfter: retryAfter,
			Provider:   "all",
		}
	}
	return nil, fmt.Errorf("all generators failed: %w", lastErr)
}

// NewFromConfig builds the configured generator. When a fallback provider is
// configured and has a key, the result is a FallbackGenerator over both.
func NewFromConfig(cfg *config.GeneratorConfig, log *zap.Logger) (port.Generator, error) {
	primary, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	secondaryCfg, ok := cfg.Secondary()
	if !ok {
		return primary, nil
	}
	secondary, err := NewGenerator(&secondaryCfg)
	if err != nil {
		if errors.Is(err, domain.ErrGeneratorNotConfigured) {
			log.Warn("fallback generator has no API key; running without it",
				zap.String("provider", secondaryCfg.Provider))
			return primary, nil
		}
		return nil, fmt.Errorf("fallback generator: %w", err)
	}
	return NewFallbackGenerator(log,
		Named{Name: cfg.Provider, Generator: primary},
		Named{Name: secondaryCfg.Provider, Generator: secondary},
	), nil
}
