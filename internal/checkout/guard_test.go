package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLocalGuardSingleWinnerUnderContention(t *testing.T) {
	guard := NewLocalGuard()

	const racers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := guard.TryAcquire(context.Background(), "cust-1")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}

func TestLocalGuardReleaseReopens(t *testing.T) {
	guard := NewLocalGuard()
	ctx := context.Background()

	if ok, _ := guard.TryAcquire(ctx, "cust-1"); !ok {
		t.Fatalf("first acquire must win")
	}
	if ok, _ := guard.TryAcquire(ctx, "cust-1"); ok {
		t.Fatalf("held latch must reject")
	}

	// Different customers never contend.
	if ok, _ := guard.TryAcquire(ctx, "cust-2"); !ok {
		t.Fatalf("latch is per customer")
	}

	if err := guard.Release(ctx, "cust-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := guard.TryAcquire(ctx, "cust-1"); !ok {
		t.Fatalf("released latch must reopen")
	}
}
