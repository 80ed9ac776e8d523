package checkout

import (
	"testing"

	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	legal := [][2]enums.CheckoutState{
		{enums.CheckoutStateIdle, enums.CheckoutStateCreatingOrder},
		{enums.CheckoutStateCreatingOrder, enums.CheckoutStateAwaitingGateway},
		{enums.CheckoutStateCreatingOrder, enums.CheckoutStateDone},
		{enums.CheckoutStateCreatingOrder, enums.CheckoutStateFailed},
		{enums.CheckoutStateAwaitingGateway, enums.CheckoutStateVerifying},
		{enums.CheckoutStateAwaitingGateway, enums.CheckoutStateFailed},
		{enums.CheckoutStateVerifying, enums.CheckoutStateDone},
		{enums.CheckoutStateVerifying, enums.CheckoutStatePendingReview},
	}
	for _, edge := range legal {
		session := newSession("cust-1")
		session.State = edge[0]
		if err := session.transition(edge[1]); err != nil {
			t.Fatalf("%s -> %s should be legal: %v", edge[0], edge[1], err)
		}
	}

	illegal := [][2]enums.CheckoutState{
		{enums.CheckoutStateIdle, enums.CheckoutStateAwaitingGateway},
		{enums.CheckoutStateIdle, enums.CheckoutStateDone},
		{enums.CheckoutStateVerifying, enums.CheckoutStateFailed},
		{enums.CheckoutStateDone, enums.CheckoutStateVerifying},
		{enums.CheckoutStateFailed, enums.CheckoutStateCreatingOrder},
		{enums.CheckoutStatePendingReview, enums.CheckoutStateDone},
	}
	for _, edge := range illegal {
		session := newSession("cust-1")
		session.State = edge[0]
		err := session.transition(edge[1])
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("%s -> %s should conflict, got %v", edge[0], edge[1], err)
		}
		if session.State != edge[0] {
			t.Fatalf("failed transition must not move the state")
		}
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()
	session := newSession("cust-1")
	store.Save(session)

	got, ok := store.Get(session.ID)
	if !ok || got.ID != session.ID {
		t.Fatalf("session not retrievable")
	}

	store.Evict(session.ID)
	if _, ok := store.Get(session.ID); ok {
		t.Fatalf("evicted session must be gone")
	}
}
