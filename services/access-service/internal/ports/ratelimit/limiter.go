// services/access-service/internal/ports/ratelimit/limiter.go
package ratelimit

import "context"

// Limiter counts attempts per key (e.g. "login:ip:10.0.0.1").
// Allow returns false once the key exhausted its budget for the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Noop never limits. Used when hardening is disabled (limit <= 0).
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }
