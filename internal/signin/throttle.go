package signin

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// Throttle rate limits OTP dispatch per full mobile number.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	every    rate.Limit
	burst    int
	now      func() time.Time
}

// NewThrottle allows burst sends per key, refilling one every interval.
func NewThrottle(interval time.Duration, burst int) *Throttle {
	if burst <= 0 {
		burst = 1
	}
	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}
	return &Throttle{
		limiters: map[string]*keyLimiter{},
		every:    every,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for key and reports whether the send may go ahead.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kl, ok := t.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(t.every, t.burst)}
		t.limiters[key] = kl
	}
	kl.last = now
	return kl.limiter.AllowN(now, 1)
}

// Cleanup forgets keys idle for longer than maxIdle and returns how many were dropped.
func (t *Throttle) Cleanup(maxIdle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	n := 0
	for k, kl := range t.limiters {
		if now.Sub(kl.last) > maxIdle {
			delete(t.limiters, k)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is done.
func (t *Throttle) Run(ctx context.Context, interval, maxIdle time.Duration) {
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Cleanup(maxIdle)
		}
	}
}
