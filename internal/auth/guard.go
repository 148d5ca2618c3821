package auth

import (
	"context"
	"sync"
)

// GuardState is the session guard's view of one operator session.
type GuardState int

const (
	// StateUnknown means the initial verification has not resolved yet.
	// Access is neither granted nor denied while here.
	StateUnknown GuardState = iota
	StateAuthenticated
	StateUnauthenticated
)

// Guard tracks the auth state of a single session token for the lifetime of
// a protected view (for example an operator's live stream connection). It
// starts Unknown, resolves through the provider, and follows sign-out
// notifications so a revoked session is denied without waiting for the next
// request. onDeny fires once, on the transition to Unauthenticated — the
// redirect-to-login equivalent.
type Guard struct {
	provider Provider
	token    string
	onDeny   func()

	mu        sync.Mutex
	state     GuardState
	principal *Principal
	unsub     func()
	denied    bool
}

// NewGuard creates a guard for the given session token. onDeny may be nil.
func NewGuard(provider Provider, token string, onDeny func()) *Guard {
	return &Guard{provider: provider, token: token, onDeny: onDeny}
}

// Start subscribes to provider notifications and resolves the initial
// state. Until it returns, State reports StateUnknown.
func (g *Guard) Start(ctx context.Context) {
	g.mu.Lock()
	if g.unsub == nil {
		g.unsub = g.provider.OnStateChange(g.handleChange)
	}
	g.mu.Unlock()

	principal, err := g.provider.Verify(ctx, g.token)
	if err != nil {
		g.deny()
		return
	}

	g.mu.Lock()
	// A sign-out notification may have raced the verification.
	if g.state != StateUnauthenticated {
		g.state = StateAuthenticated
		g.principal = principal
	}
	g.mu.Unlock()
}

// Stop deregisters the provider listener. Must be called on every exit path
// of the owning view, error paths included.
func (g *Guard) Stop() {
	g.mu.Lock()
	unsub := g.unsub
	g.unsub = nil
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// State returns the current guard state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Principal returns the authenticated principal, or nil unless the state is
// StateAuthenticated.
func (g *Guard) Principal() *Principal {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return nil
	}
	return g.principal
}

func (g *Guard) handleChange(change StateChange) {
	if change.Token != g.token {
		return
	}
	if change.Principal == nil {
		g.deny()
		return
	}

	g.mu.Lock()
	g.state = StateAuthenticated
	g.principal = change.Principal
	g.mu.Unlock()
}

func (g *Guard) deny() {
	g.mu.Lock()
	g.state = StateUnauthenticated
	g.principal = nil
	first := !g.denied
	g.denied = true
	g.mu.Unlock()

	if first && g.onDeny != nil {
		g.onDeny()
	}
}
