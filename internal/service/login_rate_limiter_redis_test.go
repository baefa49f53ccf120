package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeLoginRedis simula contador + TTL en memoria; err fuerza fallos en todas las llamadas.
type fakeLoginRedis struct {
	counters map[string]int64
	ttls     map[string]interface{}
	err      error
}

func newFakeLoginRedis() *fakeLoginRedis {
	return &fakeLoginRedis{counters: map[string]int64{}, ttls: map[string]interface{}{}}
}

func (f *fakeLoginRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	n, ok := f.counters[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(strconv.FormatInt(n, 10))
	return cmd
}

func (f *fakeLoginRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.counters[keys[0]]++
	if f.counters[keys[0]] == 1 {
		f.ttls[keys[0]] = args[0]
	}
	cmd.SetVal(f.counters[keys[0]])
	return cmd
}

func (f *fakeLoginRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var removed int64
	for _, k := range keys {
		if _, ok := f.counters[k]; ok {
			removed++
		}
		delete(f.counters, k)
		delete(f.ttls, k)
	}
	cmd.SetVal(removed)
	return cmd
}

func TestRedisLoginRateLimiter_CountsOnlyFailures(t *testing.T) {
	ctx := context.Background()
	fake := newFakeLoginRedis()
	l := &redisLoginRateLimiter{client: fake, window: 2 * time.Minute, max: 3}

	for i := 0; i < 3; i++ {
		if l.Blocked(ctx, " Ada ") {
			t.Fatalf("blocked before failure %d", i+1)
		}
		l.Fail(ctx, " Ada ")
	}
	if got := fake.counters["login:fail:ada"]; got != 3 {
		t.Fatalf("expected 3 failures under normalized key, got %d (%v)", got, fake.counters)
	}
	if fake.ttls["login:fail:ada"] != 120 {
		t.Fatalf("expected window TTL of 120s on first failure, got %v", fake.ttls["login:fail:ada"])
	}
	if !l.Blocked(ctx, "ada") {
		t.Fatalf("expected ada blocked after 3 failures")
	}
	if l.Blocked(ctx, "bob") {
		t.Fatalf("expected other user unaffected")
	}

	l.Reset(ctx, "ada")
	if l.Blocked(ctx, "ada") {
		t.Fatalf("expected reset to clear failures")
	}
	if _, ok := fake.counters["login:fail:ada"]; ok {
		t.Fatalf("expected key deleted on reset")
	}
}

func TestRedisLoginRateLimiter_EmptyKeyAndErrors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeLoginRedis()
	l := &redisLoginRateLimiter{client: fake, window: time.Minute, max: 1}

	l.Fail(ctx, "   ")
	if len(fake.counters) != 0 {
		t.Fatalf("expected empty key ignored, got %v", fake.counters)
	}

	l.Fail(ctx, "ada")
	fake.err = errors.New("redis down")
	if l.Blocked(ctx, "ada") {
		t.Fatalf("expected fail-open while redis is down")
	}
	l.Fail(ctx, "ada")
	l.Reset(ctx, "ada")
}

func TestNewRedisLoginRateLimiter_NilClient(t *testing.T) {
	if l := NewRedisLoginRateLimiter(nil, time.Minute, 5); l != nil {
		t.Fatalf("expected nil limiter without client")
	}
}
