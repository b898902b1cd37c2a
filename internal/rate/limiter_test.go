package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, New(client, cfg)
}

func TestAllowFixedWindow(t *testing.T) {
	mr, l := newTestLimiter(t, Config{Limit: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Allow(ctx, "k"); err != nil {
			t.Fatalf("hit %d: %v", i, err)
		}
	}
	if err := l.Allow(ctx, "k"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if ttl := mr.TTL("k"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected window TTL, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := l.Allow(ctx, "k"); err != nil {
		t.Fatalf("new window should admit: %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	mr, l := newTestLimiter(t, Config{Limit: 1, Window: time.Minute})
	ctx := context.Background()

	if err := l.Allow(ctx, "a"); err != nil {
		t.Fatalf("a: %v", err)
	}
	if err := l.Allow(ctx, "b"); err != nil {
		t.Fatalf("b shares no budget with a: %v", err)
	}
	if got, _ := mr.Get("a"); got != "1" {
		t.Fatalf("counter a = %q", got)
	}
}

func TestDisabledLimiterAdmitsEverything(t *testing.T) {
	_, l := newTestLimiter(t, Config{})
	for i := 0; i < 10; i++ {
		if err := l.Allow(context.Background(), "k"); err != nil {
			t.Fatalf("disabled limiter rejected: %v", err)
		}
	}
	var nilLimiter *Limiter
	if nilLimiter.Enabled() {
		t.Fatal("nil limiter must report disabled")
	}
}

func TestRedisFailureWrapped(t *testing.T) {
	mr, l := newTestLimiter(t, Config{Limit: 1, Window: time.Minute})
	mr.Close()
	if err := l.Allow(context.Background(), "k"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
