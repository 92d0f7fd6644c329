package service

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRedisRevocationStoreRevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	store := NewRedisRevocationStore(client, "revoked_test")

	revoked, err := store.IsRevoked(ctx, "tok")
	if err != nil {
		t.Fatalf("initial lookup: %v", err)
	}
	if revoked {
		t.Fatal("expected token not revoked initially")
	}

	if err := store.Revoke(ctx, "tok", 2*time.Second); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "tok")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked()=%v,%v want true,nil", revoked, err)
	}
	if ttl := server.TTL(store.key("tok")); ttl <= 0 || ttl > 2*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}
	if got, _ := server.Get(store.key("tok")); got != "1" {
		t.Fatalf("expected marker value, got %q", got)
	}


	server.FastForward(3 * time.Second)
	revoked, err = store.IsRevoked(ctx, "tok")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() after expiry=%v,%v want false,nil", revoked, err)
	}
}

func TestRedisRevocationStoreSkipsDeadTokens(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	store := NewRedisRevocationStore(client, "")

	if err := store.Revoke(ctx, "tok", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if keys := server.Keys(); len(keys) != 0 {
		t.Fatalf("expected nothing written for non-positive ttl, got %v", keys)
	}
}

func TestRedisRevocationStoreReportsOutage(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	store := NewRedisRevocationStore(client, "")
	server.Close()

	if _, err := store.IsRevoked(ctx, "tok"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestInMemoryRevocationStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRevocationStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Revoke(ctx, "tok", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "tok"); !revoked {
		t.Fatal("expected revoked within ttl")
	}
	now = now.Add(time.Minute)
	if revoked, _ := store.IsRevoked(ctx, "tok"); revoked {
		t.Fatal("expected entry to lapse at ttl")
	}
}

func TestInMemoryRevocationStoreEvictsUnseenExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRevocationStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := range 1000 {
		if err := store.Revoke(ctx, fmt.Sprintf("short-%d", i), time.Millisecond); err != nil {
			t.Fatalf("revoke %d: %v", i, err)
		}
	}
	if err := store.Revoke(ctx, "long", time.Hour); err != nil {
		t.Fatalf("revoke long: %v", err)
	}
	now = now.Add(20 * time.Millisecond)
	if err := store.Revoke(ctx, "fresh", time.Minute); err != nil {
		t.Fatalf("revoke fresh: %v", err)
	}

	if got := store.Len(); got != 2 {
		t.Fatalf("expected only the two live revocations kept, len=%d", got)
	}
	if store.expires.Len() != 2 {
		t.Fatalf("expected expiry index trimmed too, got %d", store.expires.Len())
	}
	for _, tok := range []string{"long", "fresh"} {
		if revoked, _ := store.IsRevoked(ctx, tok); !revoked {
			t.Fatalf("expected %s still revoked", tok)
		}
	}
}

func TestInMemoryRevocationStoreRevokeAgainExtends(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRevocationStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Revoke(ctx, "tok", time.Second)
	_ = store.Revoke(ctx, "tok", time.Minute)
	now = now.Add(2 * time.Second)
	_ = store.Revoke(ctx, "other", time.Minute)

	if revoked, _ := store.IsRevoked(ctx, "tok"); !revoked {
		t.Fatal("stale expiry must not evict the extended revocation")
	}
	if store.Len() != 2 {
		t.Fatalf("expected two entries, len=%d", store.Len())
	}
}
