package auth

import (
	"context"
	"sync"
	"time"
)

type StateEvent string

const (
	StateSignedIn  StateEvent = "signed_in"
	StateSignedOut StateEvent = "signed_out"
)

// AuthState is delivered to OnAuthStateChange listeners.
type AuthState struct {
	SubjectID string
	Event     StateEvent
	At        time.Time
}

// IdentityProvider authenticates subjects. Implementations report failures
// with ErrInvalidCredentials, ErrEmailInUse, ErrWeakPassword and
// ErrInvalidEmail, and wrap transport failures as UpstreamUnavailable.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (subjectID string, err error)
	SignUp(ctx context.Context, email, password string) (subjectID string, err error)
	SignOut(ctx context.Context, subjectID string) error
	OnAuthStateChange(fn func(AuthState)) (unsubscribe func())
}

// StateListeners implements OnAuthStateChange for providers that embed it.
type StateListeners struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(AuthState)
}

func (l *StateListeners) OnAuthStateChange(fn func(AuthState)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listeners == nil {
		l.listeners = make(map[int]func(AuthState))
	}
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

// Notify calls every registered listener synchronously.
func (l *StateListeners) Notify(state AuthState) {
	l.mu.RLock()
	fns := make([]func(AuthState), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(state)
	}
}
