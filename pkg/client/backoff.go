package client

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines how long to wait before retry attempt n.
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff waits Base*Factor^attempt, capped at Max, then spread
// by +/- Jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64 // 0.0 to 1.0
}

// DefaultBackoff returns Base 100ms, Max 5s, Factor 2, Jitter 0.2.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:   100 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// Next calculates the wait duration for the given attempt (0-based).
func (b *ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(b.Base) * math.Pow(b.Factor, float64(attempt))
	if delay > float64(b.Max) || math.IsInf(delay, 0) {
		delay = float64(b.Max)
	}
	if b.Jitter > 0 {
		delay += delay * (rand.Float64()*2 - 1) * b.Jitter
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// NoBackoff retries immediately.
type NoBackoff struct{}

func (NoBackoff) Next(int) time.Duration { return 0 }
