package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"tasknova/internal/logging"
	"tasknova/internal/service"
)

const (
	msgPasswordUnsupported = "password sign-in is not available with the google backend (run: tasknova login)"
	msgResetUnsupported    = "reset your password from your Google account settings"
)

// Paths locates the files the provider reads and writes.
type Paths struct {
	Dir         string
	OAuthClient string
	Token       string
	Session     string
}

// storedSession is the identity cached next to token.json.
type storedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Auth implements service.AuthProvider on top of Google OAuth. There are no
// passwords: signing in is a browser consent flow.
type Auth struct {
	paths  Paths
	logger *zap.Logger

	// consent runs the browser flow. Replaced in tests.
	consent func(ctx context.Context, conf *oauth2.Config, prompt io.Writer) (*oauth2.Token, error)

	// changed is told about every new token or sign-out.
	changed func(*oauth2.Token)

	sessions service.SessionNotifier
}

// NewAuth creates an Auth and restores the cached identity when a usable
// token is stored.
func NewAuth(paths Paths, logger *zap.Logger) *Auth {
	a := &Auth{
		paths:   paths,
		logger:  logging.OrNop(logger).Named("auth"),
		consent: runConsentFlow,
	}
	a.sessions.Init(a.restore())
	return a
}

func (a *Auth) restore() *service.Session {
	if _, err := loadToken(a.paths.Token); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Info("ignoring stored token", zap.Error(err))
		}
		return nil
	}

	data, err := os.ReadFile(a.paths.Session)
	if err != nil {
		a.logger.Info("token without cached identity", zap.Error(err))
		return nil
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil || stored.UserID == "" {
		a.logger.Info("ignoring cached identity", zap.Error(err))
		return nil
	}
	return &service.Session{UserID: stored.UserID, Email: stored.Email}
}

// Authorize implements service.Authorizer.
func (a *Auth) Authorize(ctx context.Context, prompt io.Writer) (service.Session, error) {
	conf, err := loadOAuthConfig(a.paths.OAuthClient)
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: err.Error(), Err: err}
	}

	token, err := a.consent(ctx, conf, prompt)
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: err.Error(), Err: err}
	}

	sess, err := identityFromToken(token)
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: "could not read account identity", Err: err}
	}

	if err := os.MkdirAll(a.paths.Dir, 0700); err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: "failed to create config directory", Err: err}
	}
	if err := saveToken(a.paths.Token, token); err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: "failed to save token", Err: err}
	}
	data, err := json.MarshalIndent(storedSession{UserID: sess.UserID, Email: sess.Email}, "", "  ")
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: "failed to save session", Err: err}
	}
	if err := os.WriteFile(a.paths.Session, data, 0600); err != nil {
		return service.Session{}, &service.AuthError{Op: "authorize", Message: "failed to save session", Err: err}
	}

	a.logger.Info("signed in", zap.String("user_id", sess.UserID))
	if a.changed != nil {
		a.changed(token)
	}
	a.setCurrent(&sess)
	return sess, nil
}

// identityFromToken reads sub and email from the id_token returned with the
// access token. The token came straight from Google's token endpoint over
// TLS, so its signature is not checked again.
func identityFromToken(token *oauth2.Token) (service.Session, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return service.Session{}, fmt.Errorf("token response has no id_token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return service.Session{}, fmt.Errorf("parsing id_token: %w", err)
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return service.Session{}, fmt.Errorf("id_token has no subject")
	}
	return service.Session{UserID: sub, Email: email}, nil
}

// SignIn implements service.AuthProvider. Passwords are not supported.
func (a *Auth) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	return service.Session{}, &service.AuthError{Op: "sign in", Message: msgPasswordUnsupported}
}

// SignUp implements service.AuthProvider. Accounts are created at Google.
func (a *Auth) SignUp(ctx context.Context, email, password string) (service.Session, error) {
	return service.Session{}, &service.AuthError{Op: "sign up", Message: msgPasswordUnsupported}
}

// SendPasswordReset implements service.AuthProvider.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	return &service.AuthError{Op: "password reset", Message: msgResetUnsupported}
}

// SignOut implements service.AuthProvider by removing the stored token and
// identity.
func (a *Auth) SignOut(ctx context.Context) error {
	for _, path := range []string{a.paths.Token, a.paths.Session} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &service.AuthError{Op: "sign out", Message: fmt.Sprintf("failed to remove %s", filepath.Base(path)), Err: err}
		}
	}
	if a.changed != nil {
		a.changed(nil)
	}
	a.setCurrent(nil)
	return nil
}

// OnSessionChange implements service.AuthProvider.
func (a *Auth) OnSessionChange(fn func(*service.Session)) func() {
	return a.sessions.Subscribe(fn)
}

func (a *Auth) setCurrent(s *service.Session) {
	a.sessions.Set(s)
}
