package local

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasknova/internal/logging"
	"tasknova/internal/service"
)

// Store implements service.TaskStore on SQLite.
//
// Every write bumps a revision counter. Subscriptions re-run their query when
// a write in this process wakes them, or when polling sees the revision moved
// because another process wrote.
type Store struct {
	db           *sql.DB
	logger       *zap.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu     sync.Mutex
	wakers map[int]chan struct{}
	nextID int
}

// NewStore creates a Store over an open database.
func NewStore(db *sql.DB, pollInterval time.Duration, logger *zap.Logger) *Store {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Store{
		db:           db,
		logger:       logging.OrNop(logger).Named("store"),
		pollInterval: pollInterval,
		now:          time.Now,
		wakers:       make(map[int]chan struct{}),
	}
}

// Insert implements service.TaskStore.
func (s *Store) Insert(ctx context.Context, t service.NewTask) (string, error) {
	id := uuid.NewString()
	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, owner_id, title, description, deadline, completed, priority, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		`, id, t.OwnerID, t.Title, t.Description, t.Deadline, string(t.Priority), s.now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		return "", &service.StoreError{Op: "insert", Err: err}
	}
	s.logger.Debug("inserted task", zap.String("task_id", id), zap.String("owner_id", t.OwnerID))
	return id, nil
}

// Update implements service.TaskStore.
func (s *Store) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	if patch.Completed == nil {
		return nil
	}
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, *patch.Completed, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
	if err != nil {
		return &service.StoreError{Op: "update", ID: id, Err: err}
	}
	return nil
}

// Remove implements service.TaskStore.
func (s *Store) Remove(ctx context.Context, id string) error {
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
	if err != nil {
		return &service.StoreError{Op: "remove", ID: id, Err: err}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}

// write runs fn and the revision bump in one transaction, then wakes local
// subscriptions.
func (s *Store) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return fmt.Errorf("bumping revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	s.wake()
	return nil
}

func (s *Store) wake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.wakers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) addWaker() (int, chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.wakers[id] = ch
	return id, ch
}

func (s *Store) removeWaker(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wakers, id)
}

// List returns the tasks owned by ownerID in arrival order.
func (s *Store) List(ctx context.Context, ownerID string) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, deadline, completed, priority
		FROM tasks
		WHERE owner_id = ?
		ORDER BY seq
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	out := []service.Task{}
	for rows.Next() {
		var t service.Task
		var priority string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Deadline, &t.Completed, &priority); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Priority = service.Priority(priority)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Subscribe implements service.TaskStore. The first snapshot is read before
// Subscribe returns.
func (s *Store) Subscribe(ctx context.Context, ownerID string) (service.Subscription, error) {
	rev, err := currentRevision(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("reading revision: %w", err)
	}
	snap, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		ch:   make(chan []service.Task, 1),
		done: make(chan struct{}),
	}
	sub.ch <- snap

	wakerID, wake := s.addWaker()
	go s.watch(ctx, sub, ownerID, rev, wakerID, wake)
	return sub, nil
}

func (s *Store) watch(ctx context.Context, sub *subscription, ownerID string, rev int64, wakerID int, wake <-chan struct{}) {
	defer close(sub.ch)
	defer s.removeWaker(wakerID)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case <-wake:
		case <-ticker.C:
		}

		next, err := currentRevision(ctx, s.db)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("reading revision", zap.Error(err))
			continue
		}
		if next == rev {
			continue
		}
		snap, err := s.List(ctx, ownerID)
		if err != nil {
			s.logger.Warn("refreshing snapshot", zap.String("owner_id", ownerID), zap.Error(err))
			continue
		}
		rev = next
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
