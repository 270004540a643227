package googletasks

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	tasks "google.golang.org/api/tasks/v1"

	"tasknova/internal/logging"
	"tasknova/internal/service"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Store implements service.TaskStore on one Google Tasks list. Fields Google
// has no column for travel in a metadata line at the end of the notes.
type Store struct {
	listTitle    string
	pollInterval time.Duration
	logger       *zap.Logger
	now          func() time.Time

	// connect builds the API client on first use.
	connect func(ctx context.Context) (*tasks.Service, error)

	mu     sync.Mutex
	svc    *tasks.Service
	listID string
}

// NewStore creates a Store that connects lazily through connect.
func NewStore(listTitle string, pollInterval time.Duration, connect func(ctx context.Context) (*tasks.Service, error), logger *zap.Logger) *Store {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Store{
		listTitle:    listTitle,
		pollInterval: pollInterval,
		logger:       logging.OrNop(logger).Named("store"),
		now:          time.Now,
		connect:      connect,
	}
}

// reset drops the cached client and list, so the next call reconnects with
// the current token.
func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svc = nil
	s.listID = ""
}

func (s *Store) client(ctx context.Context) (*tasks.Service, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc == nil {
		svc, err := s.connect(ctx)
		if err != nil {
			return nil, "", err
		}
		s.svc = svc
	}
	if s.listID == "" {
		id, err := s.resolveList(ctx, s.svc)
		if err != nil {
			return nil, "", err
		}
		s.listID = id
	}
	return s.svc, s.listID, nil
}

// resolveList finds the list by title (case-insensitive, trimmed), creating
// it when missing.
func (s *Store) resolveList(ctx context.Context, svc *tasks.Service) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	want := strings.ToLower(strings.TrimSpace(s.listTitle))
	var found string
	err := svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if found == "" && strings.ToLower(strings.TrimSpace(list.Title)) == want {
				found = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if found != "" {
		return found, nil
	}

	list, err := svc.Tasklists.Insert(&tasks.TaskList{Title: s.listTitle}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	s.logger.Info("created task list", zap.String("title", s.listTitle), zap.String("list_id", list.Id))
	return list.Id, nil
}

// Insert implements service.TaskStore.
func (s *Store) Insert(ctx context.Context, t service.NewTask) (string, error) {
	svc, listID, err := s.client(ctx)
	if err != nil {
		return "", &service.StoreError{Op: "insert", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := svc.Tasks.Insert(listID, &tasks.Task{
		Title:  t.Title,
		Notes:  encodeNotes(t.Description, taskMeta{Owner: t.OwnerID, Priority: string(t.Priority), Deadline: t.Deadline, Created: s.now().UnixMilli()}),
		Due:    time.UnixMilli(t.Deadline).UTC().Format(time.RFC3339),
		Status: statusNeedsAction,
	}).Context(ctx).Do()
	if err != nil {
		return "", &service.StoreError{Op: "insert", Err: wrapError(err)}
	}
	return created.Id, nil
}

// Update implements service.TaskStore.
func (s *Store) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	if patch.Completed == nil {
		return nil
	}
	svc, listID, err := s.client(ctx)
	if err != nil {
		return &service.StoreError{Op: "update", ID: id, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := &tasks.Task{Status: statusCompleted}
	if !*patch.Completed {
		body = &tasks.Task{Status: statusNeedsAction, NullFields: []string{"Completed"}}
	}
	if _, err := svc.Tasks.Patch(listID, id, body).Context(ctx).Do(); err != nil {
		return &service.StoreError{Op: "update", ID: id, Err: wrapError(err)}
	}
	return nil
}

// Remove implements service.TaskStore.
func (s *Store) Remove(ctx context.Context, id string) error {
	svc, listID, err := s.client(ctx)
	if err != nil {
		return &service.StoreError{Op: "remove", ID: id, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := svc.Tasks.Delete(listID, id).Context(ctx).Do(); err != nil {
		return &service.StoreError{Op: "remove", ID: id, Err: wrapError(err)}
	}
	return nil
}

// List returns the tasks owned by ownerID in the order they were created.
func (s *Store) List(ctx context.Context, ownerID string) ([]service.Task, error) {
	svc, listID, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	type entry struct {
		task    service.Task
		created int64
	}
	var entries []entry
	err = svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				description, meta, ok := decodeNotes(item.Notes)
				if !ok || meta.Owner != ownerID {
					continue
				}
				entries = append(entries, entry{
					created: meta.Created,
					task: service.Task{
						ID:          item.Id,
						Title:       item.Title,
						Description: description,
						Deadline:    meta.Deadline,
						Completed:   item.Status == statusCompleted,
						Priority:    service.Priority(meta.Priority),
						OwnerID:     meta.Owner,
					},
				})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].created < entries[j].created })
	out := make([]service.Task, len(entries))
	for i, e := range entries {
		out[i] = e.task
	}
	return out, nil
}

// Subscribe implements service.TaskStore by polling. A snapshot is pushed
// whenever the result differs from the last one delivered.
func (s *Store) Subscribe(ctx context.Context, ownerID string) (service.Subscription, error) {
	snap, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	sub := &subscription{
		ch:   make(chan []service.Task, 1),
		done: make(chan struct{}),
	}
	sub.ch <- snap
	go s.poll(ctx, sub, ownerID, snap)
	return sub, nil
}

func (s *Store) poll(ctx context.Context, sub *subscription, ownerID string, last []service.Task) {
	defer close(sub.ch)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case <-ticker.C:
		}

		snap, err := s.List(ctx, ownerID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("refreshing snapshot", zap.String("owner_id", ownerID), zap.Error(err))
			continue
		}
		if slices.Equal(snap, last) {
			continue
		}
		last = snap
		service.SendLatest(sub.ch, snap)
	}
}

type subscription struct {
	ch   chan []service.Task
	done chan struct{}
	once sync.Once
}

func (s *subscription) Snapshots() <-chan []service.Task { return s.ch }

func (s *subscription) Close() {
	s.once.Do(func() { close(s.done) })
}
