package auth

import (
	"context"
	"log"
	"sync"
	"time"
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	ExpiresIn int       `json:"expires_in"` // seconds
}

// StateChange is an auth-state notification: Principal is set on sign-in
// and nil when the session behind Token was signed out.
type StateChange struct {
	Token     string
	Principal *Principal
}

// Provider is the authentication provider contract the rest of the service
// consumes. Implementations must deliver state changes to every registered
// listener; the returned function deregisters a listener.
type Provider interface {
	SignIn(ctx context.Context, email, secret string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*Principal, error)
	OnStateChange(fn func(change StateChange)) func()
}

// Tokens is the session token backend used by Service.
type Tokens interface {
	Issue(ctx context.Context, p *Principal) (string, error)
	Verify(ctx context.Context, token string) (*Principal, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

// Service implements Provider on a staff account repository and a token
// backend.
type Service struct {
	staff  StaffRepository
	tokens Tokens

	mu        sync.Mutex
	listeners map[int]func(StateChange)
	nextID    int
}

// NewService creates the auth provider.
func NewService(staff StaffRepository, tokens Tokens) *Service {
	return &Service{
		staff:     staff,
		tokens:    tokens,
		listeners: map[int]func(StateChange){},
	}
}

// SignIn checks credentials and opens a session. Credential failures come
// back as domain.ErrUnauthorized with no further detail.
func (s *Service) SignIn(ctx context.Context, email, secret string) (*Session, error) {
	principal, err := s.staff.Authenticate(ctx, email, secret)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, principal)
	if err != nil {
		return nil, err
	}

	log.Printf("[Auth] %s signed in", principal.Email)
	s.notify(StateChange{Token: token, Principal: principal})

	return &Session{
		Token:     token,
		Principal: *principal,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}

// SignOut revokes the session and notifies listeners.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	s.notify(StateChange{Token: token, Principal: nil})
	return nil
}

// Verify resolves a token to its principal.
func (s *Service) Verify(ctx context.Context, token string) (*Principal, error) {
	return s.tokens.Verify(ctx, token)
}

// OnStateChange registers a listener for sign-in/sign-out events.
func (s *Service) OnStateChange(fn func(change StateChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(change StateChange) {
	s.mu.Lock()
	listeners := make([]func(StateChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}
