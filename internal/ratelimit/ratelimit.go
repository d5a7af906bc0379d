// Package ratelimit enforces minimum call spacing over golang.org/x/time/rate.
package ratelimit

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits one call per interval with burst 1.
type Limiter struct {
	limiter *rate.Limiter
}

// NewSpacing creates a limiter that admits one call per interval.
// A zero interval admits every call immediately.
func NewSpacing(interval time.Duration) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(limitFor(interval), 1),
	}
}

// ReserveDelay reserves the next slot and returns how long the caller must wait for it.
func (l *Limiter) ReserveDelay() time.Duration {
	r := l.limiter.Reserve()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}

// SetInterval updates the minimum spacing between calls.
func (l *Limiter) SetInterval(interval time.Duration) {
	limit := limitFor(interval)
	if l.limiter.Limit() != limit {
		l.limiter.SetLimit(limit)
	}
}

// Interval returns the current spacing; zero when unlimited.
func (l *Limiter) Interval() time.Duration {
	limit := l.limiter.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(time.Second) / float64(limit)))
}

func limitFor(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}
