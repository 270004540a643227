package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasknova/internal/service"
)

// fakeTasksAPI serves the subset of the Google Tasks REST API the store uses.
type fakeTasksAPI struct {
	mu       sync.Mutex
	lists    []*tasks.TaskList
	items    map[string][]*tasks.Task // list id -> tasks
	nextID   int
	failWith int // status returned for every request when non-zero
	requests []string
}

func newFakeTasksAPI() *fakeTasksAPI {
	return &fakeTasksAPI{items: make(map[string][]*tasks.Task)}
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if f.failWith != 0 {
		writeAPIError(w, f.failWith)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/tasks/v1/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "lists":
		f.serveLists(w, r)
	case len(parts) >= 3 && parts[0] == "lists" && parts[2] == "tasks":
		f.serveTasks(w, r, parts[1], parts[3:])
	default:
		writeAPIError(w, http.StatusNotFound)
	}
}

func (f *fakeTasksAPI) serveLists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, &tasks.TaskLists{Items: f.lists})
	case http.MethodPost:
		var list tasks.TaskList
		json.NewDecoder(r.Body).Decode(&list)
		f.nextID++
		list.Id = fmt.Sprintf("list-%d", f.nextID)
		f.lists = append(f.lists, &list)
		writeJSON(w, &list)
	}
}

func (f *fakeTasksAPI) serveTasks(w http.ResponseWriter, r *http.Request, listID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, &tasks.Tasks{Items: f.items[listID]})
		case http.MethodPost:
			var task tasks.Task
			json.NewDecoder(r.Body).Decode(&task)
			f.nextID++
			task.Id = fmt.Sprintf("task-%d", f.nextID)
			f.items[listID] = append(f.items[listID], &task)
			writeJSON(w, &task)
		}
		return
	}

	idx := -1
	for i, task := range f.items[listID] {
		if task.Id == rest[0] {
			idx = i
		}
	}
	if idx < 0 {
		writeAPIError(w, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		task := f.items[listID][idx]
		if status, ok := patch["status"].(string); ok {
			task.Status = status
		}
		writeJSON(w, task)
	case http.MethodDelete:
		f.items[listID] = append(f.items[listID][:idx], f.items[listID][idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeTasksAPI) addForeign(listID, title, notes string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.items[listID] = append(f.items[listID], &tasks.Task{Id: fmt.Sprintf("task-%d", f.nextID), Title: title, Notes: notes})
}

func (f *fakeTasksAPI) status(listID, id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.items[listID] {
		if task.Id == id {
			return task.Status
		}
	}
	return ""
}

func (f *fakeTasksAPI) listTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, list := range f.lists {
		titles = append(titles, list.Title)
	}
	return titles
}

func (f *fakeTasksAPI) taskCount(listID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[listID])
}

func (f *fakeTasksAPI) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if strings.HasPrefix(req, prefix) {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, http.StatusText(code))
}

func newTestStore(t *testing.T, api *fakeTasksAPI) *Store {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := NewStore("TaskNova", 20*time.Millisecond, func(ctx context.Context) (*tasks.Service, error) {
		return NewService(ctx, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	}, nil)
	var clock int64
	store.now = func() time.Time {
		clock++
		return time.UnixMilli(clock)
	}
	return store
}

func sampleTask(owner, title string) service.NewTask {
	return service.NewTask{
		Title:       title,
		Description: "details",
		Deadline:    1700000000000,
		Priority:    service.PriorityMedium,
		OwnerID:     owner,
	}
}

func TestStore_CreatesListOnce(t *testing.T) {
	api := newFakeTasksAPI()
	store := newTestStore(t, api)
	ctx := context.Background()

	_, err := store.Insert(ctx, sampleTask("u1", "first"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, sampleTask("u1", "second"))
	require.NoError(t, err)

	assert.Equal(t, 1, api.count("POST /tasks/v1/users/@me/lists"))
	assert.Equal(t, []string{"TaskNova"}, api.listTitles())
}

func TestStore_ReusesExistingList(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "mine", Title: "  tasknova "}}
	store := newTestStore(t, api)

	_, err := store.Insert(context.Background(), sampleTask("u1", "first"))
	require.NoError(t, err)

	assert.Equal(t, 0, api.count("POST /tasks/v1/users/@me/lists"))
	assert.Equal(t, 1, api.taskCount("mine"))
}

func TestStore_ListFiltersByOwner(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "L", Title: "TaskNova"}}
	store := newTestStore(t, api)
	ctx := context.Background()

	id1, err := store.Insert(ctx, sampleTask("u1", "first"))
	require.NoError(t, err)
	_, err = store.Insert(ctx, sampleTask("u2", "not mine"))
	require.NoError(t, err)
	api.addForeign("L", "made in the Google app", "plain notes")
	id2, err := store.Insert(ctx, sampleTask("u1", "second"))
	require.NoError(t, err)

	got, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, service.Task{
		ID:          id1,
		Title:       "first",
		Description: "details",
		Deadline:    1700000000000,
		Priority:    service.PriorityMedium,
		OwnerID:     "u1",
	}, got[0])
	assert.Equal(t, id2, got[1].ID)
}

func TestStore_UpdateAndRemove(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "L", Title: "TaskNova"}}
	store := newTestStore(t, api)
	ctx := context.Background()

	id, err := store.Insert(ctx, sampleTask("u1", "first"))
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, id, service.TaskPatch{Completed: service.Bool(true)}))
	assert.Equal(t, "completed", api.status("L", id))
	got, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got[0].Completed)

	require.NoError(t, store.Update(ctx, id, service.TaskPatch{Completed: service.Bool(false)}))
	assert.Equal(t, "needsAction", api.status("L", id))

	require.NoError(t, store.Remove(ctx, id))
	got, err = store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Errors(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "L", Title: "TaskNova"}}
	store := newTestStore(t, api)
	ctx := context.Background()

	err := store.Remove(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
	var storeErr *service.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "missing", storeErr.ID)

	api.mu.Lock()
	api.failWith = http.StatusUnauthorized
	api.mu.Unlock()
	err = store.Update(ctx, "any", service.TaskPatch{Completed: service.Bool(true)})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestStore_SubscribePolls(t *testing.T) {
	api := newFakeTasksAPI()
	api.lists = []*tasks.TaskList{{Id: "L", Title: "TaskNova"}}
	store := newTestStore(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := store.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer sub.Close()

	first := <-sub.Snapshots()
	assert.Empty(t, first)

	_, err = store.Insert(ctx, sampleTask("u1", "first"))
	require.NoError(t, err)

	select {
	case snap := <-sub.Snapshots():
		require.Len(t, snap, 1)
		assert.Equal(t, "first", snap[0].Title)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	for range sub.Snapshots() {
	}
}
