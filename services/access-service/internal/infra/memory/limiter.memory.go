package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a per-key token bucket: `attempts` burst, refilled evenly over `window`.
// Used when no Redis is configured; limits are per process.
type Limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	entries map[string]*limiterEntry
	now     func() time.Time
	sweeps  int
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLimiter(attempts int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   rate.Limit(float64(attempts) / window.Seconds()),
		burst:   attempts,
		idleTTL: window,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1), nil
}

// sweep drops idle buckets every 256 calls; an idle bucket is full again anyway.
func (l *Limiter) sweep(now time.Time) {
	l.sweeps++
	if l.sweeps%256 != 0 {
		return
	}
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.entries, key)
		}
	}
}
