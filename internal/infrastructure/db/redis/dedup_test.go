package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestDedupChecker_Claim(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewDedupChecker(client)
	ctx := context.Background()

	first, err := d.Claim(ctx, "abc")
	if err != nil || !first {
		t.Fatalf("first claim = %v, %v", first, err)
	}
	again, err := d.Claim(ctx, "abc")
	if err != nil || again {
		t.Fatalf("second claim = %v, %v", again, err)
	}
	if other, _ := d.Claim(ctx, "xyz"); !other {
		t.Error("distinct token reported as duplicate")
	}

	mr.FastForward(dedupTTL + time.Second)
	if expired, _ := d.Claim(ctx, "abc"); !expired {
		t.Error("token still claimed after TTL")
	}
}

func TestDedupChecker_ClaimError(t *testing.T) {
	mr, client := newTestClient(t)
	mr.Close()

	if _, err := NewDedupChecker(client).Claim(context.Background(), "abc"); err == nil {
		t.Fatal("expected error with redis down")
	}
}

func TestPinger(t *testing.T) {
	_, client := newTestClient(t)
	if err := (Pinger{Client: client}).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
