package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"internradar/internal/model"
)

// Politeness holds crawl-etiquette knobs. Zero values fall back to the
// defaults below.
type Politeness struct {
	MinDelay         time.Duration // lower bound of the random pre-fetch delay
	MaxDelay         time.Duration // upper bound of the random pre-fetch delay
	RateLimitBackoff time.Duration // wait after a 429 without Retry-After
}

const (
	defaultMinDelay         = 1 * time.Second
	defaultMaxDelay         = 3 * time.Second
	defaultRateLimitBackoff = 30 * time.Second
)

func (p Politeness) withDefaults() Politeness {
	if p.MinDelay <= 0 {
		p.MinDelay = defaultMinDelay
	}
	if p.MaxDelay < p.MinDelay {
		p.MaxDelay = p.MinDelay + (defaultMaxDelay - defaultMinDelay)
	}
	if p.RateLimitBackoff <= 0 {
		p.RateLimitBackoff = defaultRateLimitBackoff
	}
	return p
}

// PoliteSource is a decorator that spaces out requests to the wrapped source:
// a random delay before every fetch, and a single backed-off retry when the
// server answers 429.
type PoliteSource struct {
	inner  model.Source
	cfg    Politeness
	logger *slog.Logger

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration) error
	rand  func(min, max time.Duration) time.Duration
}

// NewPoliteSource wraps a source with politeness delays.
func NewPoliteSource(inner model.Source, cfg Politeness, logger *slog.Logger) *PoliteSource {
	return &PoliteSource{
		inner:  inner,
		cfg:    cfg.withDefaults(),
		logger: logger,
		sleep:  sleepCtx,
		rand:   randBetween,
	}
}

// Fetch delays, delegates, and on a 429 waits out the backoff (honoring
// Retry-After when present) before one more attempt.
func (s *PoliteSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	if err := s.sleep(ctx, s.rand(s.cfg.MinDelay, s.cfg.MaxDelay)); err != nil {
		return nil, err
	}

	candidates, err := s.inner.Fetch(ctx)
	if err == nil {
		return candidates, nil
	}

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		return nil, err
	}

	backoff := s.cfg.RateLimitBackoff
	if httpErr.RetryAfter > 0 {
		backoff = httpErr.RetryAfter
	}
	s.logger.Warn("rate limited, backing off", "backoff", backoff)
	if err := s.sleep(ctx, backoff); err != nil {
		return nil, err
	}
	return s.inner.Fetch(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("politeness wait: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

func randBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}
