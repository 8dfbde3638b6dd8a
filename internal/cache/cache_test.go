package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNoopProvider(t *testing.T) {
	var p Provider = NoopProvider{}
	if _, err := p.Get(context.Background(), "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	ok, err := p.SetNX(context.Background(), KeyRefreshLease, []byte("a"), time.Second)
	if err != nil || !ok {
		t.Fatalf("noop provider should always grant SetNX")
	}
}

func TestMemoryProviderExpiry(t *testing.T) {
	p := NewMemoryProvider()
	now := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	if err := p.Set(ctx, KeyLatestSnapshot, []byte("snap"), 15*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := p.Get(ctx, KeyLatestSnapshot)
	if err != nil || string(got) != "snap" {
		t.Fatalf("expected snap, got %q err %v", got, err)
	}

	now = now.Add(16 * time.Second)
	if _, err := p.Get(ctx, KeyLatestSnapshot); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryProviderSetNX(t *testing.T) {
	p := NewMemoryProvider()
	now := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := p.SetNX(ctx, KeyRefreshLease, []byte("replica-a"), 5*time.Second)
	if !ok {
		t.Fatalf("first SetNX should win")
	}
	ok, _ = p.SetNX(ctx, KeyRefreshLease, []byte("replica-b"), 5*time.Second)
	if ok {
		t.Fatalf("second SetNX should lose while lease is live")
	}
	now = now.Add(6 * time.Second)
	ok, _ = p.SetNX(ctx, KeyRefreshLease, []byte("replica-b"), 5*time.Second)
	if !ok {
		t.Fatalf("SetNX should win after expiry")
	}
	if err := p.Del(ctx, KeyRefreshLease); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := p.Get(ctx, KeyRefreshLease); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryProviderCopiesValues(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()
	buf := []byte("abc")
	_ = p.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _ := p.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value must not alias caller buffer, got %q", got)
	}
}

func TestWeatherKey(t *testing.T) {
	if got := WeatherKey("Singapore Port"); got != "surgeops:weather:Singapore Port" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewRedisProviderRequiresAddr(t *testing.T) {
	if _, err := NewRedisProvider(RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestRedisProviderRoundTrip(t *testing.T) {
	addr := os.Getenv("SURGEOPS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SURGEOPS_TEST_REDIS_ADDR not set")
	}
	p, err := NewRedisProvider(RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()

	ctx := context.Background()
	key := "surgeops:test:" + time.Now().Format(time.RFC3339Nano)
	if _, err := p.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if ok, err := p.SetNX(ctx, key, []byte("v"), time.Minute); err != nil || !ok {
		t.Fatalf("setnx: ok=%v err=%v", ok, err)
	}
	if ok, _ := p.SetNX(ctx, key, []byte("w"), time.Minute); ok {
		t.Fatalf("second setnx should fail")
	}
	got, err := p.Get(ctx, key)
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q err %v", got, err)
	}
	if err := p.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
}
