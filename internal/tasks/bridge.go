// Package tasks mirrors the signed-in user's task collection into local state
// and turns user actions into store requests.
//
// The local list is only ever replaced wholesale by subscription snapshots.
// Create, toggle and delete never touch it; their effect shows up when the
// store pushes the next snapshot, so the most recent snapshot always wins.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tasknova/internal/logging"
	"tasknova/internal/service"
	"tasknova/internal/session"
)

// Delete confirmation texts.
const (
	DeleteTitle   = "Delete Task"
	DeleteMessage = "Are you sure you want to delete this task?"
)

// Form is the raw input of the new-task form.
type Form struct {
	Title       string
	Description string
	Deadline    string
	Priority    string
}

// Confirmer asks the user a cancel/confirm question.
type Confirmer interface {
	Confirm(title, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, message string) (bool, error)

func (f ConfirmFunc) Confirm(title, message string) (bool, error) { return f(title, message) }

// Option configures a Bridge.
type Option func(*Bridge)

// WithLocation sets the timezone used to parse and format deadlines.
func WithLocation(loc *time.Location) Option {
	return func(b *Bridge) { b.loc = loc }
}

// Bridge is the live link between one owner's tasks in the store and the
// local list a screen renders.
type Bridge struct {
	store  service.TaskStore
	logger *zap.Logger
	loc    *time.Location

	mu      sync.Mutex
	owner   string
	tasks   []service.Task
	gen     int
	sub     service.Subscription
	cancel  context.CancelFunc
	synced  chan struct{}
	updates chan []service.Task
	errs    chan error
}

// New creates a Bridge over store.
func New(store service.TaskStore, logger *zap.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		store:   store,
		logger:  logging.OrNop(logger).Named("tasks"),
		loc:     time.Local,
		updates: make(chan []service.Task, 1),
		errs:    make(chan error, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe opens the live query for ownerID, closing any previous one first.
// The local list is cleared and then replaced by every snapshot that arrives.
func (b *Bridge) Subscribe(ctx context.Context, ownerID string) error {
	b.mu.Lock()
	b.closeLocked()
	b.gen++
	gen := b.gen
	b.owner = ownerID
	b.synced = make(chan struct{})
	subCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	sub, err := b.store.Subscribe(subCtx, ownerID)
	if err != nil {
		cancel()
		b.mu.Lock()
		if b.gen == gen {
			b.owner = ""
			b.synced = nil
			b.cancel = nil
			service.SendLatest(b.updates, []service.Task(nil))
		}
		b.mu.Unlock()
		b.logger.Error("subscribe failed", zap.String("owner_id", ownerID), zap.Error(err))
		return fmt.Errorf("subscribing to tasks: %w", err)
	}

	b.mu.Lock()
	if b.gen != gen {
		// Superseded while the store was opening the query.
		b.mu.Unlock()
		sub.Close()
		return nil
	}
	b.sub = sub
	synced := b.synced
	b.mu.Unlock()

	b.logger.Debug("subscribed", zap.String("owner_id", ownerID))
	go b.pump(gen, sub, synced)
	return nil
}

func (b *Bridge) pump(gen int, sub service.Subscription, synced chan struct{}) {
	first := true
	for snap := range sub.Snapshots() {
		b.mu.Lock()
		if b.gen != gen {
			b.mu.Unlock()
			return
		}
		b.tasks = slices.Clone(snap)
		service.SendLatest(b.updates, slices.Clone(snap))
		if first {
			close(synced)
			first = false
		}
		b.mu.Unlock()
	}
}

// Unsubscribe closes the live query and clears the local list.
func (b *Bridge) Unsubscribe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	hadTasks := b.tasks != nil
	b.closeLocked()
	b.gen++
	b.owner = ""
	b.synced = nil
	if hadTasks {
		service.SendLatest(b.updates, []service.Task(nil))
	}
}

// Close is Unsubscribe for deferred cleanup.
func (b *Bridge) Close() {
	b.Unsubscribe()
}

func (b *Bridge) closeLocked() {
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.tasks = nil
}

// Owner returns the owner the bridge is subscribed for, or "".
func (b *Bridge) Owner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

// Tasks returns a copy of the local list.
func (b *Bridge) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tasks)
}

// Updates delivers the local list after each change. Only the latest list is
// kept for a slow reader.
func (b *Bridge) Updates() <-chan []service.Task {
	return b.updates
}

// Errors delivers subscribe failures met while following a session. Only the
// latest failure is kept for a slow reader.
func (b *Bridge) Errors() <-chan error {
	return b.errs
}

// Snapshot waits for the first snapshot of the current subscription and
// returns the local list.
func (b *Bridge) Snapshot(ctx context.Context) ([]service.Task, error) {
	b.mu.Lock()
	synced := b.synced
	b.mu.Unlock()
	if synced == nil {
		return nil, service.ErrNoSession
	}
	select {
	case <-synced:
		return b.Tasks(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Follow keeps the subscription bound to the holder's session until ctx is
// done: a new owner reopens the query, sign-out closes it. A failed subscribe
// is reported on Errors and retried on the next session change.
func (b *Bridge) Follow(ctx context.Context, h *session.Holder) error {
	changes, stop := h.Changes()
	defer stop()
	defer b.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sess, ok := <-changes:
			if !ok {
				return nil
			}
			if sess == nil {
				b.Unsubscribe()
				continue
			}
			if sess.UserID == b.Owner() {
				continue
			}
			if err := b.Subscribe(ctx, sess.UserID); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				service.SendLatest(b.errs, err)
			}
		}
	}
}

// Create validates f and submits one insert owned by sess. Validation
// failures never reach the store. The new task appears through the
// subscription, not here.
func (b *Bridge) Create(ctx context.Context, sess *service.Session, f Form) (string, error) {
	nt, err := b.validate(sess, f)
	if err != nil {
		return "", err
	}

	id, err := b.store.Insert(ctx, nt)
	if err != nil {
		b.logger.Error("insert failed", zap.Error(err))
		return "", asStoreError("insert", "", err)
	}
	b.logger.Debug("task created", zap.String("task_id", id))
	return id, nil
}

func (b *Bridge) validate(sess *service.Session, f Form) (service.NewTask, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return service.NewTask{}, service.Invalid("title", "title is required")
	}
	if strings.TrimSpace(f.Deadline) == "" {
		return service.NewTask{}, service.Invalid("deadline", "deadline is required")
	}
	if strings.TrimSpace(f.Priority) == "" {
		return service.NewTask{}, service.Invalid("priority", "priority is required")
	}
	if sess == nil || sess.UserID == "" {
		return service.NewTask{}, service.ErrNoSession
	}
	deadline, err := ParseDeadline(f.Deadline, b.loc)
	if err != nil {
		return service.NewTask{}, err
	}
	priority, err := service.ParsePriority(f.Priority)
	if err != nil {
		return service.NewTask{}, service.Invalid("priority", "priority must be High, Medium or Low")
	}
	return service.NewTask{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Deadline:    deadline,
		Priority:    priority,
		OwnerID:     sess.UserID,
	}, nil
}

// ToggleComplete flips the completed flag of task id from current.
func (b *Bridge) ToggleComplete(ctx context.Context, id string, current bool) error {
	if err := b.store.Update(ctx, id, service.TaskPatch{Completed: service.Bool(!current)}); err != nil {
		b.logger.Error("update failed", zap.String("task_id", id), zap.Error(err))
		return asStoreError("update", id, err)
	}
	return nil
}

// Delete asks c for confirmation and removes task id. A declined prompt
// returns service.ErrCancelled without contacting the store. A failed remove
// is logged and returned so the caller can tell the user.
func (b *Bridge) Delete(ctx context.Context, id string, c Confirmer) error {
	ok, err := c.Confirm(DeleteTitle, DeleteMessage)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrCancelled
	}
	if err := b.store.Remove(ctx, id); err != nil {
		b.logger.Error("error deleting task", zap.String("task_id", id), zap.Error(err))
		return asStoreError("remove", id, err)
	}
	return nil
}

// Format renders a deadline in the bridge's timezone.
func (b *Bridge) Format(ms int64) string {
	return FormatDeadline(ms, b.loc)
}

// Location returns the timezone used for deadlines.
func (b *Bridge) Location() *time.Location {
	return b.loc
}

func asStoreError(op, id string, err error) error {
	var se *service.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &service.StoreError{Op: op, ID: id, Err: err}
}
