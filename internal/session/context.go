package session

import (
	"context"
	"errors"

	"tasknova/internal/service"
)

// ErrInvalidContext is returned when the session is looked up from a context
// that no Holder was attached to.
var ErrInvalidContext = errors.New("session accessed outside holder scope")

type holderKey struct{}

// WithHolder attaches h to ctx.
func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// FromContext returns the Holder attached to ctx.
func FromContext(ctx context.Context) (*Holder, error) {
	h, ok := ctx.Value(holderKey{}).(*Holder)
	if !ok || h == nil {
		return nil, ErrInvalidContext
	}
	return h, nil
}

// Current returns the session held by the Holder attached to ctx.
// It fails with service.ErrNoSession when nobody is signed in.
func Current(ctx context.Context) (service.Session, error) {
	h, err := FromContext(ctx)
	if err != nil {
		return service.Session{}, err
	}
	u := h.User()
	if u == nil {
		return service.Session{}, service.ErrNoSession
	}
	return *u, nil
}
