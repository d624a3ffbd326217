package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type mapCache struct{ m map[string][]byte }

func newMapCache() *mapCache { return &mapCache{m: make(map[string][]byte)} }

func (c *mapCache) Get(k string) ([]byte, bool) { v, ok := c.m[k]; return v, ok }

func (c *mapCache) Set(k string, v []byte, ttl time.Duration) { c.m[k] = v }

func (c *mapCache) Delete(k string) { delete(c.m, k) }

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(newMapCache(), time.Hour)
	ctx := context.Background()

	sess := &Session{Subject: "alice", ACR: "urn:grantkit:loa:1", AMR: []string{"pwd", "otp"}}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatalf("Create did not assign an ID")
	}
	if sess.AuthTime == 0 {
		t.Fatalf("Create did not stamp AuthTime")
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("ExpiresAt not in the future: %v", sess.ExpiresAt)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subject != "alice" || got.ACR != "urn:grantkit:loa:1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.AMR) != 2 || got.AMR[0] != "pwd" {
		t.Fatalf("AMR lost in round trip: %+v", got.AMR)
	}
}

func TestStoreCreateKeepsExplicitAuthTime(t *testing.T) {
	store := NewStore(newMapCache(), time.Hour)
	past := time.Now().UTC().Add(-10 * time.Minute).Unix()

	sess := &Session{Subject: "alice", AuthTime: past}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.AuthTime != past {
		t.Fatalf("Create overwrote AuthTime: got %d want %d", sess.AuthTime, past)
	}
}

func TestStoreCreateRequiresSubject(t *testing.T) {
	store := NewStore(newMapCache(), time.Hour)
	if err := store.Create(context.Background(), &Session{}); err == nil {
		t.Fatalf("expected error for session without subject")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore(newMapCache(), time.Hour)
	ctx := context.Background()

	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty id: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestStoreGetExpired(t *testing.T) {
	cache := newMapCache()
	store := NewStore(cache, time.Hour)

	stale := Session{ID: "old", Subject: "alice", ExpiresAt: time.Now().UTC().Add(-time.Minute)}
	raw, _ := json.Marshal(stale)
	cache.Set("sid:old", raw, time.Hour)

	if _, err := store.Get(context.Background(), "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session served: %v", err)
	}
	if _, ok := cache.Get("sid:old"); ok {
		t.Fatalf("expired entry not evicted")
	}
}

func TestStoreGetPoisonedEntry(t *testing.T) {
	cache := newMapCache()
	store := NewStore(cache, time.Hour)
	cache.Set("sid:bad", []byte("{not json"), time.Hour)

	if _, err := store.Get(context.Background(), "bad"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("poisoned session served: %v", err)
	}
	if _, ok := cache.Get("sid:bad"); ok {
		t.Fatalf("poisoned entry not evicted")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(newMapCache(), time.Hour)
	ctx := context.Background()

	sess := &Session{Subject: "alice"}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.Delete(ctx, sess.ID)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("session survived delete: %v", err)
	}
}
