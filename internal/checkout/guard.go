package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/veloramarket/storefront-checkout/pkg/redis"
)

// Guard is the double-submit latch. TryAcquire must decide synchronously
// from the caller's point of view: two submits racing for the same customer
// get exactly one true between them.
type Guard interface {
	TryAcquire(ctx context.Context, customerID string) (bool, error)
	Release(ctx context.Context, customerID string) error
}

// LocalGuard keeps the latch in process memory. Good for tests and
// single-instance deployments.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

func (g *LocalGuard) TryAcquire(_ context.Context, customerID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.held[customerID]; taken {
		return false, nil
	}
	g.held[customerID] = struct{}{}
	return true, nil
}

func (g *LocalGuard) Release(_ context.Context, customerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, customerID)
	return nil
}

// Held reports whether the latch is currently taken for the customer.
func (g *LocalGuard) Held(customerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.held[customerID]
	return taken
}

// RedisGuard backs the latch with SETNX so it holds across instances. The
// TTL is the safety valve for latches that are never explicitly released:
// a successful checkout leaves its latch to expire rather than releasing it,
// so a stale success can never re-open the submit window early.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) TryAcquire(ctx context.Context, customerID string) (bool, error) {
	return g.client.AcquireCheckoutLatch(ctx, customerID, g.ttl)
}

func (g *RedisGuard) Release(ctx context.Context, customerID string) error {
	return g.client.ReleaseCheckoutLatch(ctx, customerID)
}
