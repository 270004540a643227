package local

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknova/internal/config"
	"tasknova/internal/service"
)

type resetBox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (r *resetBox) notify(email, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokens == nil {
		r.tokens = make(map[string]string)
	}
	r.tokens[email] = token
}

func (r *resetBox) token(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[email]
}

func newTestAuth(t *testing.T, dir string, box *resetBox) *Auth {
	t.Helper()
	db, err := openDB(filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts := AuthOptions{TokenPath: filepath.Join(dir, "session.jwt"), TTL: time.Hour}
	if box != nil {
		opts.ResetNotifier = box.notify
	}
	a, err := NewAuth(context.Background(), db, opts, nil)
	require.NoError(t, err)
	return a
}

func authMessage(t *testing.T, err error) string {
	t.Helper()
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
	return authErr.Message
}

func TestAuth_SignUpSignsIn(t *testing.T) {
	dir := t.TempDir()
	a := newTestAuth(t, dir, nil)

	sess, err := a.SignUp(context.Background(), " Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.UserID)
	assert.Equal(t, "ada@example.com", sess.Email)

	info, err := os.Stat(filepath.Join(dir, "session.jwt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAuth_SignUpRejections(t *testing.T) {
	a := newTestAuth(t, t.TempDir(), nil)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "ada@example.com", "short")
	assert.Equal(t, "password should be at least 6 characters", authMessage(t, err))

	_, err = a.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	_, err = a.SignUp(ctx, "ADA@example.com", "secret2")
	assert.Equal(t, "email already in use", authMessage(t, err))
}

func TestAuth_SignIn(t *testing.T) {
	a := newTestAuth(t, t.TempDir(), nil)
	ctx := context.Background()

	created, err := a.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	sess, err := a.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, sess.UserID)

	_, err = a.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.Equal(t, "invalid email or password", authMessage(t, err))

	_, err = a.SignIn(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, "invalid email or password", authMessage(t, err))
}

func TestAuth_SessionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	defer db.Close()
	opts := AuthOptions{TokenPath: filepath.Join(dir, "session.jwt"), TTL: time.Hour}

	first, err := NewAuth(context.Background(), db, opts, nil)
	require.NoError(t, err)
	created, err := first.SignUp(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	second, err := NewAuth(context.Background(), db, opts, nil)
	require.NoError(t, err)

	var got *service.Session
	unsubscribe := second.OnSessionChange(func(s *service.Session) { got = s })
	defer unsubscribe()

	require.NotNil(t, got)
	assert.Equal(t, created, *got)
}

func TestAuth_ExpiredSessionIsDiscarded(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, "auth.db"))
	require.NoError(t, err)
	defer db.Close()
	opts := AuthOptions{TokenPath: filepath.Join(dir, "session.jwt"), TTL: time.Minute}

	first, err := NewAuth(context.Background(), db, opts, nil)
	require.NoError(t, err)
	first.now = func() time.Time { return time.Now().Add(-time.Hour) }
	_, err = first.SignUp(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	second, err := NewAuth(context.Background(), db, opts, nil)
	require.NoError(t, err)

	var got *service.Session
	called := false
	second.OnSessionChange(func(s *service.Session) { got, called = s, true })()
	assert.True(t, called)
	assert.Nil(t, got)

	_, err = os.Stat(opts.TokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestAuth_TamperedTokenIsDiscarded(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "session.jwt")
	require.NoError(t, os.WriteFile(tokenPath, []byte("not.a.token"), 0600))

	a := newTestAuth(t, dir, nil)

	var got *service.Session
	a.OnSessionChange(func(s *service.Session) { got = s })()
	assert.Nil(t, got)
}

func TestAuth_OnSessionChange(t *testing.T) {
	a := newTestAuth(t, t.TempDir(), nil)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []*service.Session
	unsubscribe := a.OnSessionChange(func(s *service.Session) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	sess, err := a.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	unsubscribe()
	unsubscribe()
	_, err = a.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Nil(t, seen[0])
	require.NotNil(t, seen[1])
	assert.Equal(t, sess, *seen[1])
	assert.Nil(t, seen[2])
}

func TestAuth_SignOutWithoutSession(t *testing.T) {
	a := newTestAuth(t, t.TempDir(), nil)
	assert.NoError(t, a.SignOut(context.Background()))
}

func TestAuth_PasswordReset(t *testing.T) {
	box := &resetBox{}
	a := newTestAuth(t, t.TempDir(), box)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	err = a.SendPasswordReset(ctx, "nobody@example.com")
	assert.Equal(t, "no user record for email", authMessage(t, err))
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, a.SendPasswordReset(ctx, "Ada@Example.com"))
	token := box.token("ada@example.com")
	require.NotEmpty(t, token)

	err = a.ConfirmPasswordReset(ctx, token, "tiny")
	assert.Equal(t, "password should be at least 6 characters", authMessage(t, err))

	require.NoError(t, a.ConfirmPasswordReset(ctx, token, "brand-new"))

	_, err = a.SignIn(ctx, "ada@example.com", "secret1")
	assert.Error(t, err)
	_, err = a.SignIn(ctx, "ada@example.com", "brand-new")
	assert.NoError(t, err)

	// Tokens are single use.
	err = a.ConfirmPasswordReset(ctx, token, "another-one")
	assert.Equal(t, "the password reset link is invalid or has expired", authMessage(t, err))
}

func TestAuth_ExpiredResetToken(t *testing.T) {
	box := &resetBox{}
	a := newTestAuth(t, t.TempDir(), box)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, a.SendPasswordReset(ctx, "ada@example.com"))

	a.now = func() time.Time { return time.Now().Add(2 * ResetTokenTTL) }
	err = a.ConfirmPasswordReset(ctx, box.token("ada@example.com"), "brand-new")
	assert.Equal(t, "the password reset link is invalid or has expired", authMessage(t, err))
}

func TestAuth_GeneratedSecretIsStable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a1, err := NewAuth(ctx, db, AuthOptions{}, nil)
	require.NoError(t, err)
	a2, err := NewAuth(ctx, db, AuthOptions{}, nil)
	require.NoError(t, err)

	assert.Len(t, a1.secret, 32)
	assert.Equal(t, a1.secret, a2.secret)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Dir:      dir,
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "tasknova.db")},
		Auth:     config.AuthConfig{SessionTTL: time.Hour},
		Sync:     config.SyncConfig{PollInterval: 10 * time.Millisecond},
	}

	b, err := Open(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	sess, err := b.Auth().SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	id, err := b.Store().Insert(ctx, newTask(sess.UserID, "first"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = os.Stat(cfg.SessionTokenPath())
	assert.NoError(t, err)
}
