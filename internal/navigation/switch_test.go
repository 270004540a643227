package navigation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknova/internal/navigation"
	"tasknova/internal/service"
	"tasknova/internal/session"
	"tasknova/internal/testutil"
)

func TestRoutesPerState(t *testing.T) {
	assert.Equal(t,
		[]navigation.Route{navigation.Welcome, navigation.Register, navigation.Login, navigation.ForgetPassword},
		navigation.Routes(navigation.Unauthenticated))
	assert.Equal(t, []navigation.Route{navigation.Home}, navigation.Routes(navigation.Authenticated))
	assert.Empty(t, navigation.Routes(navigation.NotReady))

	assert.Equal(t, navigation.Route("forgetpassword"), navigation.ForgetPassword)
}

func TestSwitch_StartsNotReady(t *testing.T) {
	sw := navigation.NewSwitch()
	assert.Equal(t, navigation.NotReady, sw.State())
	assert.Equal(t, navigation.Route(""), sw.Current())
	assert.False(t, sw.Allowed(navigation.Welcome))
	assert.False(t, sw.Allowed(navigation.Home))
}

func TestSwitch_Transitions(t *testing.T) {
	sw := navigation.NewSwitch()

	assert.True(t, sw.Apply(nil))
	assert.Equal(t, navigation.Unauthenticated, sw.State())
	assert.Equal(t, navigation.Welcome, sw.Current())
	for _, r := range []navigation.Route{navigation.Welcome, navigation.Register, navigation.Login, navigation.ForgetPassword} {
		assert.True(t, sw.Allowed(r), r)
	}
	assert.False(t, sw.Allowed(navigation.Home))

	require.NoError(t, sw.Navigate(navigation.Login))
	require.NoError(t, sw.Navigate(navigation.ForgetPassword))

	assert.True(t, sw.Apply(&service.Session{UserID: "u1"}))
	assert.Equal(t, navigation.Authenticated, sw.State())
	assert.Equal(t, []navigation.Route{navigation.Home}, sw.Stack())
	assert.False(t, sw.Allowed(navigation.Login))

	assert.False(t, sw.Apply(&service.Session{UserID: "u2"}), "same state is not a transition")

	assert.True(t, sw.Apply(nil))
	assert.Equal(t, []navigation.Route{navigation.Welcome}, sw.Stack())
}

func TestSwitch_NavigateAndBack(t *testing.T) {
	sw := navigation.NewSwitch()
	sw.Apply(nil)

	require.NoError(t, sw.Navigate(navigation.Register))
	require.NoError(t, sw.Navigate(navigation.Register))
	require.NoError(t, sw.Navigate(navigation.Login))
	assert.Equal(t, []navigation.Route{navigation.Welcome, navigation.Register, navigation.Login}, sw.Stack())

	assert.True(t, sw.Back())
	assert.Equal(t, navigation.Register, sw.Current())
	assert.True(t, sw.Back())
	assert.False(t, sw.Back(), "root is never popped")
	assert.Equal(t, navigation.Welcome, sw.Current())

	err := sw.Navigate(navigation.Home)
	var routeErr *navigation.RouteError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, navigation.Home, routeErr.Route)
	assert.Equal(t, navigation.Unauthenticated, routeErr.State)
}

func TestSwitch_RunFollowsHolder(t *testing.T) {
	auth := testutil.NewFakeAuth()
	auth.ManualDelivery = true
	h := session.New(auth, nil)
	defer h.Close()
	require.NoError(t, h.Start(context.Background()))

	sw := navigation.NewSwitch()
	var mu sync.Mutex
	var seen []navigation.State

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sw.Run(ctx, h, func(s navigation.State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		})
	}()

	// Nothing delivered yet: no flash of the signed-out screens.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, navigation.NotReady, sw.State())

	auth.Emit()
	assert.Eventually(t, func() bool { return sw.State() == navigation.Unauthenticated }, time.Second, 5*time.Millisecond)

	auth.SetSession(&service.Session{UserID: "u1"})
	assert.Eventually(t, func() bool { return sw.Current() == navigation.Home }, time.Second, 5*time.Millisecond)

	auth.SetSession(nil)
	assert.Eventually(t, func() bool { return sw.Current() == navigation.Welcome }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []navigation.State{navigation.Unauthenticated, navigation.Authenticated, navigation.Unauthenticated}, seen)
}
