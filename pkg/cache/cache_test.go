package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Add(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

type transcript struct {
	Session string   `json:"session"`
	Turns   []string `json:"turns"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	in := transcript{Session: "s1", Turns: []string{"hi", "hello"}}
	if err := mc.Set(ctx, "t:s1", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out transcript
	if err := mc.Get(ctx, "t:s1", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Session != "s1" || len(out.Turns) != 2 || out.Turns[1] != "hello" {
		t.Fatalf("unexpected value %+v", out)
	}

	var s string
	_ = mc.Set(ctx, "raw", "plain", 0)
	if err := mc.Get(ctx, "raw", &s); err != nil || s != "plain" {
		t.Fatalf("string round trip: %q %v", s, err)
	}

	if err := mc.Get(ctx, "missing", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeNow{t: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryClock(clk.Now))
	defer mc.Close()

	_ = mc.Set(ctx, "k", 1, time.Second)
	clk.Add(999 * time.Millisecond)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatal("expired too early")
	}
	clk.Add(2 * time.Millisecond)
	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}

	_ = mc.Set(ctx, "k2", 1, time.Second)
	if ok, _ := mc.Expire(ctx, "k2", time.Hour); !ok {
		t.Fatal("Expire on live key returned false")
	}
	clk.Add(time.Minute)
	if ok, _ := mc.Exists(ctx, "k2"); !ok {
		t.Fatal("Expire did not extend ttl")
	}
}

func TestMemoryCacheLockAndCounter(t *testing.T) {
	ctx := context.Background()
	clk := &fakeNow{t: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryClock(clk.Now))
	defer mc.Close()

	ok, _ := mc.TryLock(ctx, "lock", time.Second)
	if !ok {
		t.Fatal("first TryLock failed")
	}
	if ok, _ := mc.TryLock(ctx, "lock", time.Second); ok {
		t.Fatal("second TryLock succeeded while held")
	}
	clk.Add(2 * time.Second)
	if ok, _ := mc.TryLock(ctx, "lock", time.Second); !ok {
		t.Fatal("TryLock after ttl failed")
	}
	_ = mc.Unlock(ctx, "lock")
	if ok, _ := mc.TryLock(ctx, "lock", time.Second); !ok {
		t.Fatal("TryLock after Unlock failed")
	}

	for want := int64(1); want <= 3; want++ {
		got, err := mc.Increment(ctx, "n")
		if err != nil || got != want {
			t.Fatalf("Increment = %d, %v; want %d", got, err, want)
		}
	}
	_ = mc.Set(ctx, "s", "text", 0)
	if _, err := mc.Increment(ctx, "s"); err == nil {
		t.Fatal("Increment on a string should fail")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clk := &fakeNow{t: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clk.Now))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, 0)
	clk.Add(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, 0)
	clk.Add(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v)
	clk.Add(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, 0)

	if mc.Len() != 2 {
		t.Fatalf("len = %d", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatal("least recently used key survived")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatal("recent keys evicted")
	}
}

func TestLayeredCacheAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rc, err := NewRedisCache(WithRedisAddr(addr), WithRedisPrefix("yijinjing-test"))
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	lc, err := NewLayeredCache(rc, WithLayeredMaxCost(1<<20), WithLayeredTTL(time.Second))
	if err != nil {
		t.Fatalf("layered: %v", err)
	}
	defer lc.Close()

	in := transcript{Session: "s2", Turns: []string{"x"}}
	if err := lc.Set(ctx, "t:s2", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	lc.l1.Wait()
	lc.l1.Del("t:s2")

	var out transcript
	if err := lc.Get(ctx, "t:s2", &out); err != nil || out.Session != "s2" {
		t.Fatalf("Get through L2: %+v %v", out, err)
	}
	_ = lc.Delete(ctx, "t:s2")
	if err := lc.Get(ctx, "t:s2", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}
