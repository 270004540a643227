package service

import (
	"context"
	"io"
)

// AuthProvider is the remote authentication boundary.
// Commands and screens never talk to a concrete provider directly.
type AuthProvider interface {
	// SignIn authenticates with email and password and makes the result the
	// current session.
	SignIn(ctx context.Context, email, password string) (Session, error)

	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (Session, error)

	// SignOut clears the current session.
	SignOut(ctx context.Context) error

	// SendPasswordReset starts a password reset for email.
	SendPasswordReset(ctx context.Context, email string) error

	// OnSessionChange registers fn for session changes. fn is called once
	// with the current session (nil when signed out) and again after every
	// change, never concurrently. The returned func unregisters fn.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// Subscription is an open live query. Every change to the matching documents
// produces one full snapshot on Snapshots.
type Subscription interface {
	// Snapshots delivers full result sets in arrival order of the documents.
	// The channel is closed once the subscription ends.
	Snapshots() <-chan []Task

	// Close ends the subscription. Safe to call more than once.
	Close()
}

// TaskStore is the remote document collection holding tasks.
type TaskStore interface {
	// Subscribe opens a live query for tasks owned by ownerID.
	// Cancelling ctx closes the subscription.
	Subscribe(ctx context.Context, ownerID string) (Subscription, error)

	// Insert adds a task and returns its store-assigned ID.
	Insert(ctx context.Context, t NewTask) (string, error)

	// Update applies patch to the task with the given ID.
	Update(ctx context.Context, id string, patch TaskPatch) error

	// Remove deletes the task with the given ID.
	Remove(ctx context.Context, id string) error
}

// Backend bundles the two remote boundaries a client needs.
type Backend interface {
	Auth() AuthProvider
	Store() TaskStore
	Close() error
}

// Authorizer is implemented by providers that sign in through a browser
// consent flow instead of a password.
type Authorizer interface {
	// Authorize runs the consent flow, printing instructions to prompt, and
	// makes the resulting account the current session.
	Authorize(ctx context.Context, prompt io.Writer) (Session, error)
}

// ResetConfirmer is implemented by providers that complete password resets
// themselves rather than through an emailed link.
type ResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
