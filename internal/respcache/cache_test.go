package respcache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	c, err := New(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), ttl)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "/position/1"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	want := Entry{Status: 200, Body: json.RawMessage(`{"positionID":"1"}`)}
	if err := c.Set(ctx, "/position/1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "/position/1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Status != 200 || string(got.Body) != `{"positionID":"1"}` {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	if err := c.Set(ctx, "/x", Entry{Status: 404, Body: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "/x"); ttl != 30*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}
	mr.FastForward(31 * time.Second)
	if _, ok, _ := c.Get(ctx, "/x"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "not a url", time.Minute); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewDefaultTTL(t *testing.T) {
	c, _ := newTestCache(t, 0)
	if c.ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", c.ttl)
	}
}
