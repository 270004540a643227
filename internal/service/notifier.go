package service

import "sync"

// SessionNotifier holds a provider's current session and fans each change
// out to the registered listeners. Listeners get their own copy and see
// values in the order they were set.
type SessionNotifier struct {
	// deliver is held from reading current to the last callback, so a
	// listener never receives an older value after a newer one.
	deliver sync.Mutex

	mu        sync.Mutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
}

// Init sets the starting session without notifying anyone.
func (n *SessionNotifier) Init(s *Session) {
	n.mu.Lock()
	n.current = CopySession(s)
	n.mu.Unlock()
}

// Current returns a copy of the current session, or nil.
func (n *SessionNotifier) Current() *Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return CopySession(n.current)
}

// Subscribe registers fn, calls it once with the current session and returns
// the function that removes it.
func (n *SessionNotifier) Subscribe(fn func(*Session)) func() {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(*Session))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	current := CopySession(n.current)
	n.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

// Set replaces the current session and notifies every listener.
// Listeners must not call Set or Subscribe.
func (n *SessionNotifier) Set(s *Session) {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	n.current = CopySession(s)
	fns := make([]func(*Session), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(CopySession(s))
	}
}

// Listeners returns the number of registered listeners.
func (n *SessionNotifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// CopySession returns a copy of s, or nil.
func CopySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
