package service_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknova/internal/service"
)

type recorder struct {
	mu   sync.Mutex
	seen []*service.Session
}

func (r *recorder) record(s *service.Session) {
	r.mu.Lock()
	r.seen = append(r.seen, s)
	r.mu.Unlock()
}

func (r *recorder) last() *service.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return nil
	}
	return r.seen[len(r.seen)-1]
}

func TestSessionNotifier_SubscribeDeliversCurrent(t *testing.T) {
	var n service.SessionNotifier
	n.Init(&service.Session{UserID: "alice"})

	var r recorder
	unsubscribe := n.Subscribe(r.record)
	require.Len(t, r.seen, 1)
	assert.Equal(t, "alice", r.seen[0].UserID)
	assert.Equal(t, 1, n.Listeners())

	n.Set(nil)
	require.Len(t, r.seen, 2)
	assert.Nil(t, r.seen[1])

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, n.Listeners())
	n.Set(&service.Session{UserID: "bob"})
	assert.Len(t, r.seen, 2)
	assert.Equal(t, "bob", n.Current().UserID)
}

func TestSessionNotifier_ListenersGetCopies(t *testing.T) {
	var n service.SessionNotifier
	var got *service.Session
	n.Subscribe(func(s *service.Session) { got = s })

	n.Set(&service.Session{UserID: "alice"})
	got.UserID = "mallory"
	assert.Equal(t, "alice", n.Current().UserID)
}

func TestSessionNotifier_SetWaitsForInitialDelivery(t *testing.T) {
	var n service.SessionNotifier
	entered := make(chan struct{})
	release := make(chan struct{})

	var r recorder
	first := true
	subscribed := make(chan struct{})
	go func() {
		n.Subscribe(func(s *service.Session) {
			if first {
				first = false
				close(entered)
				<-release
			}
			r.record(s)
		})
		close(subscribed)
	}()
	<-entered

	setDone := make(chan struct{})
	go func() {
		n.Set(&service.Session{UserID: "bob"})
		close(setDone)
	}()
	assert.Never(t, func() bool {
		select {
		case <-setDone:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	<-subscribed
	<-setDone

	require.Len(t, r.seen, 2)
	assert.Nil(t, r.seen[0])
	assert.Equal(t, "bob", r.seen[1].UserID)
}

func TestSessionNotifier_LastDeliveryIsCurrent(t *testing.T) {
	var n service.SessionNotifier
	recorders := make([]*recorder, 20)

	var wg sync.WaitGroup
	for i := range recorders {
		recorders[i] = &recorder{}
		wg.Add(2)
		go func(r *recorder) {
			defer wg.Done()
			n.Subscribe(r.record)
		}(recorders[i])
		go func(i int) {
			defer wg.Done()
			n.Set(&service.Session{UserID: fmt.Sprintf("user%d", i)})
		}(i)
	}
	wg.Wait()

	want := n.Current()
	require.NotNil(t, want)
	for i, r := range recorders {
		got := r.last()
		require.NotNil(t, got, "listener %d", i)
		assert.Equal(t, want.UserID, got.UserID, "listener %d", i)
	}
}
