package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestMemory(t *testing.T) (*Memory, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := newMemory(time.Hour, clock.Now)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestMemory_TTL(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer c.Close()

	ctx := context.Background()
	key := "test:key"
	val := []byte("hello")

	if err := c.Set(ctx, key, val, 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit immediately after Set")
	}
	if string(got) != "hello" {
		t.Fatalf("expected 'hello', got %q", got)
	}

	// Wait for TTL to expire
	time.Sleep(30 * time.Millisecond)

	_, hit, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after TTL failed: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestMemory_ExpiredEntryIsEvictedOnGet(t *testing.T) {
	c, clock := newTestMemory(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(999 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatalf("expected hit before TTL")
	}

	clock.Advance(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("expected miss after TTL")
	}
	if n := c.Len(); n != 0 {
		t.Fatalf("expected expired entry to be removed, len=%d", n)
	}
}

func TestMemory_OverwriteReplacesValueAndTTL(t *testing.T) {
	c, clock := newTestMemory(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v1"), time.Second)
	_ = c.Set(ctx, "k", []byte("v2"), time.Minute)

	clock.Advance(30 * time.Second)
	got, hit, _ := c.Get(ctx, "k")
	if !hit || string(got) != "v2" {
		t.Fatalf("expected v2 with the later ttl, got %q hit=%v", got, hit)
	}
}

func TestMemory_NonPositiveTTLLeavesKeyAbsent(t *testing.T) {
	c, _ := newTestMemory(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	for _, ttl := range []time.Duration{0, -time.Second} {
		if err := c.Set(ctx, "k", []byte("x"), ttl); err != nil {
			t.Fatalf("Set(ttl=%v) failed: %v", ttl, err)
		}
		if _, hit, _ := c.Get(ctx, "k"); hit {
			t.Fatalf("expected miss after Set with ttl=%v", ttl)
		}
	}
}

func TestMemory_DeleteAndClear(t *testing.T) {
	c, _ := newTestMemory(t)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Fatalf("expected a to be deleted")
	}
	if _, hit, _ := c.Get(ctx, "b"); !hit {
		t.Fatalf("expected b to survive deleting a")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Fatalf("expected b to be cleared")
	}
}

func TestMemory_SetCopiesValue(t *testing.T) {
	c, _ := newTestMemory(t)
	ctx := context.Background()

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed with caller buffer: %q", got)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	c, _ := newTestMemory(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("abc"), time.Minute)
	got, _, _ := c.Get(ctx, "k")
	got[0] = 'X'

	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through Get result: %q", again)
	}
}

func TestMemory_SweepRemovesExpired(t *testing.T) {
	c := NewMemory(5 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("v"), time.Millisecond)
	_ = c.Set(ctx, "long", []byte("v"), time.Hour)

	deadline := time.Now().Add(time.Second)
	for c.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep did not remove expired entry, len=%d", c.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	c := NewMemory(time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := c.Set(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set after Close failed: %v", err)
	}
	if _, hit, _ := c.Get(context.Background(), "k"); !hit {
		t.Fatalf("expected cache usable after Close")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				switch i % 4 {
				case 0:
					_ = c.Set(ctx, key, []byte{byte(g)}, time.Millisecond*time.Duration(i%3))
				case 1:
					_, _, _ = c.Get(ctx, key)
				case 2:
					_ = c.Delete(ctx, key)
				default:
					_ = c.Set(ctx, key, []byte{byte(i)}, time.Minute)
				}
			}
		}(g)
	}
	wg.Wait()
}
