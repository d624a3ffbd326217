package cache

import (
	"testing"
	"time"
)

func TestMemoryGetSetDelete(t *testing.T) {
	c := NewMemory(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get on empty cache must miss")
	}

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("Get after Delete must miss")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry must expire after its TTL")
	}
}

func TestOpenDefaultsToMemory(t *testing.T) {
	var cfg Config
	cfg.Kind = "bogus"
	c, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("Open(%q) = %T; want *Memory", cfg.Kind, c)
	}
}
