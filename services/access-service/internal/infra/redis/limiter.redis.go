// services/access-service/internal/infra/redis/limiter.redis.go
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// incrWindow bumps the counter and makes sure it expires. Checking PTTL as well
// as the first hit repairs a key that lost its TTL, which would otherwise lock
// the email out for good. Plain INCR/PEXPIRE/PTTL keeps it on any Redis version.
var incrWindow = goredis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Limiter is a fixed-window counter shared by every access-service replica.
type Limiter struct {
	client   goredis.Scripter
	prefix   string
	attempts int64
	window   time.Duration
}

// NewClient parses a redis:// or rediss:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func NewLimiter(client goredis.Scripter, attempts int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		prefix:   "rl:",
		attempts: int64(attempts),
		window:   window,
	}
}

// Allow increments the key's counter; the first hit of a window sets its TTL.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("redis: rate limit %s: %w", key, err)
	}
	return n <= l.attempts, nil
}
