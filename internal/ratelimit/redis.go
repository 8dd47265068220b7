// internal/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the window counter unless it already reached the
// limit. The key lives one millisecond past the window, so the count
// resets only once the window is exceeded.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
  return 0
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter shares windows between processes through redis.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	window time.Duration
}

func NewRedisLimiter(client redis.Scripter, prefix string, length time.Duration) *RedisLimiter {
	if length <= 0 {
		length = DefaultWindow
	}
	return &RedisLimiter{client: client, prefix: prefix, window: length}
}

func (l *RedisLimiter) key(provider string) string {
	return fmt.Sprintf("%s:%s", l.prefix, provider)
}

func (l *RedisLimiter) Allow(ctx context.Context, provider string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	n, err := allowScript.Run(ctx, l.client, []string{l.key(provider)}, limit, l.window.Milliseconds()+1).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check for %s: %w", provider, err)
	}
	return n == 1, nil
}
