package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	c := NewMemory()
	if _, ok, err := c.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 300*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(299 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("entry survived past its TTL")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	if err := c.Delete(ctx, "a", "b", "absent"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("key a not deleted")
	}
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("key b not deleted")
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("abc"), time.Minute)
	got, _, _ := c.Get(ctx, "k")
	got[0] = 'x'

	again, _, _ := c.Get(ctx, "k")
	if !bytes.Equal(again, []byte("abc")) {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}
