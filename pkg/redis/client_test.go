package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = toString(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, exists := f.values[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = toString(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return "1"
}

func TestCheckoutLatchSingleHolder(t *testing.T) {
	client := &Client{store: newFakeStore()}
	ctx := context.Background()

	ok, err := client.AcquireCheckoutLatch(ctx, "cust-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed: ok=%v err=%v", ok, err)
	}
	ok, err = client.AcquireCheckoutLatch(ctx, "cust-1", time.Minute)
	if err != nil || ok {
		t.Fatalf("second acquire should be rejected: ok=%v err=%v", ok, err)
	}
	if err := client.ReleaseCheckoutLatch(ctx, "cust-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = client.AcquireCheckoutLatch(ctx, "cust-1", time.Minute)
	if !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	client := &Client{store: newFakeStore()}
	if got := client.IdempotencyKey("cust|POST|/checkout", "abc"); got != "velora:idempotency:cust|POST|/checkout:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := client.CheckoutLatchKey("cust-1"); got != "velora:checkout_latch:cust-1" {
		t.Fatalf("unexpected latch key %q", got)
	}
}
