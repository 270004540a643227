// Package navigation decides which screens are reachable for the current
// session and keeps the push/pop stack of visited screens.
package navigation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"tasknova/internal/service"
	"tasknova/internal/session"
)

// State is the navigation state derived from the session.
type State int

const (
	// NotReady is the state before the first session notification.
	NotReady State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not ready"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Route names a screen.
type Route string

const (
	Welcome        Route = "Welcome"
	Register       Route = "Register"
	Login          Route = "Login"
	ForgetPassword Route = "forgetpassword"
	Home           Route = "Home"
)

var routes = map[State][]Route{
	Unauthenticated: {Welcome, Register, Login, ForgetPassword},
	Authenticated:   {Home},
}

// StateFor maps a session to the state it selects.
func StateFor(s *service.Session) State {
	if s == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Routes returns the screens reachable in state. The first one is the root.
func Routes(state State) []Route {
	return slices.Clone(routes[state])
}

// Initial returns the root screen for state, or "" when nothing is reachable.
func Initial(state State) Route {
	if rs := routes[state]; len(rs) > 0 {
		return rs[0]
	}
	return ""
}

// RouteError is returned when a screen is not reachable in the current state.
type RouteError struct {
	Route Route
	State State
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("screen %s is not available while %s", e.Route, e.State)
}

// Switch is the session-driven two-state machine plus its screen stack.
type Switch struct {
	mu    sync.RWMutex
	state State
	stack []Route
}

// NewSwitch returns a Switch in the NotReady state with an empty stack.
func NewSwitch() *Switch {
	return &Switch{state: NotReady}
}

// State returns the current state.
func (s *Switch) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply moves the switch to the state selected by sess. On a state change the
// stack is reset to the new root. It reports whether the state changed.
func (s *Switch) Apply(sess *service.Session) bool {
	next := StateFor(sess)

	s.mu.Lock()
	defer s.mu.Unlock()
	if next == s.state {
		return false
	}
	s.state = next
	s.stack = []Route{Initial(next)}
	return true
}

// Allowed reports whether r is reachable in the current state.
func (s *Switch) Allowed(r Route) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(routes[s.state], r)
}

// Navigate pushes r onto the stack.
func (s *Switch) Navigate(r Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(routes[s.state], r) {
		return &RouteError{Route: r, State: s.state}
	}
	if len(s.stack) > 0 && s.stack[len(s.stack)-1] == r {
		return nil
	}
	s.stack = append(s.stack, r)
	return nil
}

// Back pops the top screen. The root screen is never popped.
func (s *Switch) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

// Current returns the screen on top of the stack, or "" while NotReady.
func (s *Switch) Current() Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}

// Stack returns a copy of the screen stack, root first.
func (s *Switch) Stack() []Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.stack)
}

// Run applies every session change from h until ctx is done or h closes.
// onChange, if set, is called after each state transition.
func (s *Switch) Run(ctx context.Context, h *session.Holder, onChange func(State)) error {
	changes, stop := h.Changes()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sess, ok := <-changes:
			if !ok {
				return nil
			}
			if s.Apply(sess) && onChange != nil {
				onChange(s.State())
			}
		}
	}
}
