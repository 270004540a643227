// Package session holds the current authenticated session and shares it with
// the rest of the client.
//
// A Holder subscribes once to the auth provider's change stream. Every
// notification replaces the held value; the first one also opens the Ready
// gate so consumers never act on the zero value before the provider has
// spoken. The Holder is the only writer; everything else reads.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tasknova/internal/logging"
	"tasknova/internal/service"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("session holder already started")

// Holder owns the current session value.
type Holder struct {
	provider service.AuthProvider
	logger   *zap.Logger

	mu          sync.RWMutex
	user        *service.Session
	started     bool
	closed      bool
	unsubscribe func()
	watchers    map[int]chan *service.Session
	nextID      int

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Holder for provider. Nothing happens until Start.
func New(provider service.AuthProvider, logger *zap.Logger) *Holder {
	return &Holder{
		provider: provider,
		logger:   logging.OrNop(logger).Named("session"),
		watchers: make(map[int]chan *service.Session),
		ready:    make(chan struct{}),
	}
}

// Start opens the single subscription to the provider. The subscription is
// released by Close or when ctx is done, whichever comes first.
func (h *Holder) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return ErrAlreadyStarted
	}
	h.started = true
	h.mu.Unlock()

	unsubscribe := h.provider.OnSessionChange(h.notify)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		unsubscribe()
		return nil
	}
	h.unsubscribe = unsubscribe
	h.mu.Unlock()

	context.AfterFunc(ctx, h.Close)
	return nil
}

// notify is the provider callback.
func (h *Holder) notify(s *service.Session) {
	h.set(s, true)
}

// Close releases the provider subscription and ends every Changes stream.
func (h *Holder) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	for id, ch := range h.watchers {
		close(ch)
		delete(h.watchers, id)
	}
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Ready is closed once the first provider notification has been applied.
func (h *Holder) Ready() <-chan struct{} {
	return h.ready
}

// Wait blocks until the holder is ready and returns the session at that point.
func (h *Holder) Wait(ctx context.Context) (*service.Session, error) {
	select {
	case <-h.ready:
		return h.User(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// User returns a copy of the current session, or nil when signed out.
func (h *Holder) User() *service.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return clone(h.user)
}

// Set replaces the current session and fans the new value out to watchers.
func (h *Holder) Set(s *service.Session) {
	h.set(s, false)
}

func (h *Holder) set(s *service.Session, fromProvider bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.user = clone(s)
	if fromProvider {
		h.readyOnce.Do(func() {
			h.logger.Debug("session ready", zap.Bool("signed_in", s != nil))
			close(h.ready)
		})
	}
	for _, ch := range h.watchers {
		service.SendLatest(ch, clone(s))
	}
}

// Changes streams session values, starting with the current one if the holder
// is ready. A slow reader only ever sees the latest value. The returned func
// stops the stream.
func (h *Holder) Changes() (<-chan *service.Session, func()) {
	ch := make(chan *service.Session, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.watchers[id] = ch
	select {
	case <-h.ready:
		ch <- clone(h.user)
	default:
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.watchers[id]; ok {
				close(c)
				delete(h.watchers, id)
			}
		})
	}
}

func clone(s *service.Session) *service.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
