// Package ratelimit paces outbound requests so the collector never
// hammers a content source.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PoliteLimiter enforces the fixed inter-request delay of a collection
// run. The first request passes immediately; each later request waits
// until one full delay has elapsed since the previous one. It is a
// fixed politeness pause, not adaptive backoff.
type PoliteLimiter struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPoliteLimiter creates a limiter for the given delay. A zero or
// negative delay disables pacing entirely.
func NewPoliteLimiter(delay time.Duration) *PoliteLimiter {
	if delay <= 0 {
		return &PoliteLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &PoliteLimiter{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		delay:   delay,
	}
}

// Wait blocks until the next request is allowed or ctx is cancelled.
func (p *PoliteLimiter) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Delay returns the configured inter-request delay.
func (p *PoliteLimiter) Delay() time.Duration {
	return p.delay
}
