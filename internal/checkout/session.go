package checkout

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veloramarket/storefront-checkout/internal/gateway"
	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
)

// Session is one checkout attempt. It is born idle, walks the transition
// table below, and parks in a terminal state. A new attempt means a new
// session, never a reset one.
//
// The mutable fields are guarded by mu: gateway callbacks and status reads
// for the same attempt can land concurrently. Readers get a Snapshot, never
// the live pointer.
type Session struct {
	mu sync.Mutex

	ID         string                  `json:"id"`
	CustomerID string                  `json:"customer_id"`
	OrderID    string                  `json:"order_id,omitempty"`
	State      enums.CheckoutState     `json:"state"`
	Intent     *gateway.CheckoutIntent `json:"intent,omitempty"`
	NavLocked  bool                    `json:"nav_locked"`
	Reason     string                  `json:"reason,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func newSession(customerID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		State:      enums.CheckoutStateIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// allowedTransitions is the single source of truth for attempt flow.
// Verifying deliberately has no edge to failed: once the provider reported
// success, an inconclusive verification parks in pending_review so the
// shopper is never told a possibly-charged payment failed.
var allowedTransitions = map[enums.CheckoutState][]enums.CheckoutState{
	enums.CheckoutStateIdle:            {enums.CheckoutStateCreatingOrder},
	enums.CheckoutStateCreatingOrder:   {enums.CheckoutStateAwaitingGateway, enums.CheckoutStateDone, enums.CheckoutStateFailed},
	enums.CheckoutStateAwaitingGateway: {enums.CheckoutStateVerifying, enums.CheckoutStateFailed},
	enums.CheckoutStateVerifying:       {enums.CheckoutStateDone, enums.CheckoutStatePendingReview},
}

// transition is atomic: of two concurrent callers racing for the same edge,
// exactly one wins and the other gets a state conflict.
func (s *Session) transition(to enums.CheckoutState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, candidate := range allowedTransitions[s.State] {
		if candidate == to {
			s.State = to
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("checkout cannot move from %s to %s", s.State, to))
}

func (s *Session) setOrderID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OrderID = id
}

func (s *Session) setIntent(intent *gateway.CheckoutIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Intent = intent
}

func (s *Session) setReason(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reason = reason
}

func (s *Session) setNavLocked(locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NavLocked = locked
}

// Snapshot returns a copy safe to marshal while the live session keeps
// moving under its own lock.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Session{
		ID:         s.ID,
		CustomerID: s.CustomerID,
		OrderID:    s.OrderID,
		State:      s.State,
		Intent:     s.Intent,
		NavLocked:  s.NavLocked,
		Reason:     s.Reason,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SessionStore holds live sessions in memory. Terminal sessions stay
// readable until evicted so the storefront can render their outcome.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Save(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Evict drops a session. Called after the storefront acknowledges a
// terminal state.
func (s *SessionStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
