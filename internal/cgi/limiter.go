package cgi

import (
	"context"

	"go.uber.org/atomic"

	"github.com/coldforge/originhttpd/internal/metrics"
)

// Limiter bounds concurrent CGI subprocess execution with a token
// semaphore and tracks how many callers are currently blocked waiting
// for a token, so queueing is observable rather than just enforced.
type Limiter struct {
	tokens  chan struct{}
	waiters atomic.Int64
}

// NewLimiter creates a Limiter allowing at most maxConcurrent
// acquisitions at once. maxConcurrent <= 0 is normalized to 1.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Limiter{tokens: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a token is available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.waiters.Inc()
	metrics.CgiWaitersGauge.Set(float64(l.waiters.Load()))
	defer func() {
		l.waiters.Dec()
		metrics.CgiWaitersGauge.Set(float64(l.waiters.Load()))
	}()

	select {
	case l.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a token to the pool.
func (l *Limiter) Release() {
	<-l.tokens
}

// Waiters reports how many callers are currently blocked in Acquire.
func (l *Limiter) Waiters() int64 {
	return l.waiters.Load()
}
