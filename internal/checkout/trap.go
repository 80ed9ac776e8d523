package checkout

// NavigationTrap arms the storefront's back-navigation shield while a
// payment is in flight. Install is idempotent; Remove is safe to call on a
// trap that was never installed.
//
// The service only decides WHEN the trap is armed. What "armed" means is up
// to the implementation: the default just mirrors the flag onto the session
// so the storefront can honor it.
type NavigationTrap interface {
	Install(session *Session)
	Remove(session *Session)
}

// SessionTrap flags the session itself. The storefront reads NavLocked and
// blocks history navigation while it is set.
type SessionTrap struct{}

func (SessionTrap) Install(session *Session) {
	if session != nil {
		session.setNavLocked(true)
	}
}

func (SessionTrap) Remove(session *Session) {
	if session != nil {
		session.setNavLocked(false)
	}
}
