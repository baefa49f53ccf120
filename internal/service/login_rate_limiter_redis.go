package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// El primer fallo de la ventana fija el TTL; el contador expira solo.
const redisLoginFailScript = `
local failures = redis.call("INCR", KEYS[1])
if failures == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return failures
`

// redisLoginClient es el subconjunto de *redis.Client que usa el limiter.
type redisLoginClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisLoginRateLimiter guarda un contador de fallos por usuario en
// login:fail:<username>. Los errores de redis no bloquean el login.
type redisLoginRateLimiter struct {
	client redisLoginClient
	window time.Duration
	max    int
}

func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{client: client, window: window, max: max}
}

func (l *redisLoginRateLimiter) Blocked(ctx context.Context, key string) bool {
	redisKey, ok := loginFailureKey(key)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	failures, err := l.client.Get(ctx, redisKey).Int()
	if err != nil {
		// redis.Nil: sin fallos registrados
		return false
	}
	return failures >= l.max
}

func (l *redisLoginRateLimiter) Fail(ctx context.Context, key string) {
	redisKey, ok := loginFailureKey(key)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	_ = l.client.Eval(ctx, redisLoginFailScript, []string{redisKey}, seconds).Err()
}

func (l *redisLoginRateLimiter) Reset(ctx context.Context, key string) {
	redisKey, ok := loginFailureKey(key)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	_ = l.client.Del(ctx, redisKey).Err()
}

func loginFailureKey(username string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" {
		return "", false
	}
	return "login:fail:" + normalized, true
}
