// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"

	"tasknova/internal/service"
)

type fakeUser struct {
	id       string
	password string
}

// FakeAuth is an in-memory implementation of service.AuthProvider for testing.
type FakeAuth struct {
	mu        sync.Mutex
	users     map[string]fakeUser // email -> user
	current   *service.Session
	listeners map[int]func(*service.Session)
	nextID    int

	// deliver serializes listener callbacks.
	deliver sync.Mutex

	// ManualDelivery holds back the initial notification made by
	// OnSessionChange until Emit is called.
	ManualDelivery bool

	// Resets records every email a password reset was sent to.
	Resets []string

	// Error injection for testing
	SignInErr  error
	SignUpErr  error
	SignOutErr error
	ResetErr   error
}

// NewFakeAuth creates a FakeAuth with no accounts and nobody signed in.
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{
		users:     make(map[string]fakeUser),
		listeners: make(map[int]func(*service.Session)),
	}
}

// AddUser registers an account without signing it in.
func (f *FakeAuth) AddUser(id, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(email)] = fakeUser{id: id, password: password}
}

// SetSession replaces the current session and notifies listeners, as if the
// provider had restored or dropped it on its own.
func (f *FakeAuth) SetSession(s *service.Session) {
	f.mu.Lock()
	f.current = s
	f.mu.Unlock()
	f.Emit()
}

// Listeners returns the number of registered session listeners.
func (f *FakeAuth) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Emit delivers the current session to every listener.
func (f *FakeAuth) Emit() {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	s := f.current
	fns := make([]func(*service.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(service.CopySession(s))
	}
}

// SignIn implements service.AuthProvider.
func (f *FakeAuth) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	if f.SignInErr != nil {
		return service.Session{}, f.SignInErr
	}
	f.mu.Lock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok || u.password != password {
		f.mu.Unlock()
		return service.Session{}, &service.AuthError{Op: "sign in", Message: "invalid email or password"}
	}
	s := service.Session{UserID: u.id, Email: email}
	f.current = &s
	f.mu.Unlock()
	f.Emit()
	return s, nil
}

// SignUp implements service.AuthProvider.
func (f *FakeAuth) SignUp(ctx context.Context, email, password string) (service.Session, error) {
	if f.SignUpErr != nil {
		return service.Session{}, f.SignUpErr
	}
	f.mu.Lock()
	key := strings.ToLower(email)
	if _, exists := f.users[key]; exists {
		f.mu.Unlock()
		return service.Session{}, &service.AuthError{Op: "sign up", Message: "email already in use"}
	}
	id := "user-" + key
	f.users[key] = fakeUser{id: id, password: password}
	s := service.Session{UserID: id, Email: email}
	f.current = &s
	f.mu.Unlock()
	f.Emit()
	return s, nil
}

// SignOut implements service.AuthProvider.
func (f *FakeAuth) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.SetSession(nil)
	return nil
}

// SendPasswordReset implements service.AuthProvider.
func (f *FakeAuth) SendPasswordReset(ctx context.Context, email string) error {
	if f.ResetErr != nil {
		return f.ResetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[strings.ToLower(email)]; !ok {
		return &service.AuthError{Op: "password reset", Message: "no user record for email"}
	}
	f.Resets = append(f.Resets, email)
	return nil
}

// OnSessionChange implements service.AuthProvider.
func (f *FakeAuth) OnSessionChange(fn func(*service.Session)) func() {
	f.deliver.Lock()
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	s := f.current
	manual := f.ManualDelivery
	f.mu.Unlock()

	if !manual {
		fn(service.CopySession(s))
	}
	f.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}
}
