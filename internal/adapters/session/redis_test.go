package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisCache(t *testing.T) {
	// 1. Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewRedisCache(mr.Addr(), "", 0)
	ctx := context.Background()

	// 2. Test Set and Get
	cache.Set(ctx, "sess-1", "token-abc", 10*time.Second)

	token, found := cache.Get(ctx, "sess-1")
	if !found {
		t.Errorf("Expected session key to be found")
	}
	if token != "token-abc" {
		t.Errorf("Expected token-abc, got %s", token)
	}

	// 3. Test Get missing key
	if _, found := cache.Get(ctx, "nonexistent"); found {
		t.Errorf("Expected nonexistent session to not be found")
	}

	// 4. Test Delete
	cache.Delete(ctx, "sess-1")
	if _, found := cache.Get(ctx, "sess-1"); found {
		t.Errorf("Expected deleted session to not be found")
	}

	// 5. Test TTL expiry
	cache.Set(ctx, "sess-2", "token-xyz", time.Second)
	mr.FastForward(2 * time.Second)
	if _, found := cache.Get(ctx, "sess-2"); found {
		t.Errorf("Expected expired session to not be found")
	}
}

func TestRedisCache_Ping(t *testing.T) {
	mr, _ := miniredis.Run()
	defer mr.Close()
	cache := NewRedisCache(mr.Addr(), "", 0)
	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
