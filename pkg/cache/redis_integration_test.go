//go:build integration

package cache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// TestRedisCache_Integration exercises the Redis backend against a real
// instance. Point REDIS_ADDR at a disposable server; keys are prefixed with
// a per-run namespace and removed afterwards.
func TestRedisCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	keyer := NewScopedKeyer(nil, fmt.Sprintf("it%d:", time.Now().UnixNano()))
	key := keyer.TableKey(3, 4)
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get() before Set = (hit=%v, err=%v), want miss", hit, err)
	}

	payload := []byte("table-bytes")
	if err := c.Set(ctx, key, payload, TTLTable); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !hit || !bytes.Equal(data, payload) {
		t.Errorf("Get() = (%q, %v), want stored payload", data, hit)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get() after Delete still hits")
	}

	// A short TTL must actually expire the entry.
	ttlKey := keyer.TableKey(3, 5)
	defer c.Delete(ctx, ttlKey)
	if err := c.Set(ctx, ttlKey, payload, 50*time.Millisecond); err != nil {
		t.Fatalf("Set() with ttl error: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, ttlKey); hit {
		t.Error("entry with 50ms ttl survived 150ms")
	}
}
