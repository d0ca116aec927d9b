package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the default request rate (requests per second).
	ProactiveRate = 1.2

	// MinBuffer is the remaining-request floor below which calls wait for the reset.
	MinBuffer = 100

	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// RateLimiter throttles requests and backs off when the API quota runs low.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		perSecond = ProactiveRate
	}
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(rate.Limit(perSecond), 1),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, resetTime := r.remaining, r.resetTime
	r.mu.Unlock()

	if remaining >= 0 && remaining < r.minBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// UpdateFromResponse records the quota reported by a response.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, err := strconv.Atoi(resp.Header.Get(headerRateRemaining)); err == nil {
		r.remaining = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get(headerRateReset), 10, 64); err == nil {
		r.resetTime = time.Unix(v, 0)
	}
}

// Remaining returns the last reported quota, or -1 if none was seen.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}
