package testutil

import (
	"context"
	"fmt"
	"sync"

	"tasknova/internal/service"
)

// PatchCall records one Update made against a FakeStore.
type PatchCall struct {
	ID    string
	Patch service.TaskPatch
}

// FakeStore is an in-memory implementation of service.TaskStore for testing.
// Writes push a fresh snapshot to every open subscription.
type FakeStore struct {
	mu      sync.Mutex
	docs    []service.Task
	subs    map[int]*fakeSub
	nextSub int
	nextDoc int

	// Recorded calls
	Inserts []service.NewTask
	Updates []PatchCall
	Removes []string

	// Error injection for testing
	SubscribeErr error
	InsertErr    error
	UpdateErr    error
	RemoveErr    error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{subs: make(map[int]*fakeSub)}
}

// AddTask seeds a task without recording an insert and notifies subscribers.
func (f *FakeStore) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, t)
	f.publishLocked()
}

// Emit pushes snapshot to the subscriptions for ownerID verbatim, bypassing
// the stored documents. Used to script notification sequences.
func (f *FakeStore) Emit(ownerID string, snapshot []service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.owner == ownerID {
			service.SendLatest(s.ch, append([]service.Task(nil), snapshot...))
		}
	}
}

// FailSubscribe sets SubscribeErr while subscriptions may be opening
// concurrently. A nil err clears it.
func (f *FakeStore) FailSubscribe(err error) {
	f.mu.Lock()
	f.SubscribeErr = err
	f.mu.Unlock()
}

// Subscribers returns the number of open subscriptions.
func (f *FakeStore) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Task returns the stored task with id.
func (f *FakeStore) Task(id string) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.docs {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Subscribe implements service.TaskStore.
func (f *FakeStore) Subscribe(ctx context.Context, ownerID string) (service.Subscription, error) {
	f.mu.Lock()
	if f.SubscribeErr != nil {
		err := f.SubscribeErr
		f.mu.Unlock()
		return nil, err
	}
	id := f.nextSub
	f.nextSub++
	s := &fakeSub{store: f, id: id, owner: ownerID, ch: make(chan []service.Task, 1)}
	f.subs[id] = s
	s.ch <- f.snapshotLocked(ownerID)
	f.mu.Unlock()

	context.AfterFunc(ctx, s.Close)
	return s, nil
}

// Insert implements service.TaskStore.
func (f *FakeStore) Insert(ctx context.Context, t service.NewTask) (string, error) {
	if f.InsertErr != nil {
		return "", f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserts = append(f.Inserts, t)
	f.nextDoc++
	id := fmt.Sprintf("task-%d", f.nextDoc)
	f.docs = append(f.docs, service.Task{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Priority:    t.Priority,
		OwnerID:     t.OwnerID,
	})
	f.publishLocked()
	return id, nil
}

// Update implements service.TaskStore.
func (f *FakeStore) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates = append(f.Updates, PatchCall{ID: id, Patch: patch})
	for i := range f.docs {
		if f.docs[i].ID == id {
			if patch.Completed != nil {
				f.docs[i].Completed = *patch.Completed
			}
			f.publishLocked()
			return nil
		}
	}
	return &service.StoreError{Op: "update", ID: id, Err: service.ErrNotFound}
}

// Remove implements service.TaskStore.
func (f *FakeStore) Remove(ctx context.Context, id string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removes = append(f.Removes, id)
	for i, t := range f.docs {
		if t.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			f.publishLocked()
			return nil
		}
	}
	return &service.StoreError{Op: "remove", ID: id, Err: service.ErrNotFound}
}

func (f *FakeStore) snapshotLocked(ownerID string) []service.Task {
	out := []service.Task{}
	for _, t := range f.docs {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

func (f *FakeStore) publishLocked() {
	for _, s := range f.subs {
		service.SendLatest(s.ch, f.snapshotLocked(s.owner))
	}
}

type fakeSub struct {
	store *FakeStore
	id    int
	owner string
	ch    chan []service.Task
	once  sync.Once
}

func (s *fakeSub) Snapshots() <-chan []service.Task { return s.ch }

func (s *fakeSub) Close() {
	s.once.Do(func() {
		s.store.mu.Lock()
		defer s.store.mu.Unlock()
		delete(s.store.subs, s.id)
		close(s.ch)
	})
}

// FakeBackend bundles a FakeAuth and FakeStore as a service.Backend.
type FakeBackend struct {
	AuthProvider *FakeAuth
	TaskStore    *FakeStore
	Closed       bool
}

// NewFakeBackend creates a FakeBackend with fresh fakes.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{AuthProvider: NewFakeAuth(), TaskStore: NewFakeStore()}
}

func (b *FakeBackend) Auth() service.AuthProvider { return b.AuthProvider }
func (b *FakeBackend) Store() service.TaskStore   { return b.TaskStore }

func (b *FakeBackend) Close() error {
	b.Closed = true
	return nil
}
