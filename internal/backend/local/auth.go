package local

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tasknova/internal/forms"
	"tasknova/internal/logging"
	"tasknova/internal/service"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// Messages shown verbatim to the user.
const (
	msgInvalidCredentials = "invalid email or password"
	msgEmailInUse         = "email already in use"
	msgWeakPassword       = "password should be at least 6 characters"
	msgNoUser             = "no user record for email"
	msgBadResetToken      = "the password reset link is invalid or has expired"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// AuthOptions configures Auth.
type AuthOptions struct {
	// TokenPath is where the signed session token is kept between runs.
	TokenPath string

	// Secret signs session tokens. When empty a random secret is generated
	// once and kept in the database.
	Secret string

	// TTL is the session lifetime.
	TTL time.Duration

	// ResetNotifier receives reset tokens, standing in for the email a
	// hosted provider would send.
	ResetNotifier func(email, token string)
}

// Auth implements service.AuthProvider with bcrypt password hashes in SQLite
// and an HS256 session token on disk.
type Auth struct {
	db     *sql.DB
	logger *zap.Logger
	opts   AuthOptions
	secret []byte
	now    func() time.Time

	sessions service.SessionNotifier
}

// NewAuth creates an Auth and restores the session token from disk if it is
// still valid.
func NewAuth(ctx context.Context, db *sql.DB, opts AuthOptions, logger *zap.Logger) (*Auth, error) {
	a := &Auth{
		db:     db,
		logger: logging.OrNop(logger).Named("auth"),
		opts:   opts,
		now:    time.Now,
	}
	if a.opts.TTL <= 0 {
		a.opts.TTL = 30 * 24 * time.Hour
	}

	secret, err := a.loadSecret(ctx)
	if err != nil {
		return nil, err
	}
	a.secret = secret

	a.sessions.Init(a.restore(ctx))
	return a, nil
}

func (a *Auth) loadSecret(ctx context.Context) ([]byte, error) {
	if a.opts.Secret != "" {
		return []byte(a.opts.Secret), nil
	}

	var value string
	err := a.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'session_secret'`).Scan(&value)
	if err == nil {
		return hex.DecodeString(value)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading session secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	value = hex.EncodeToString(buf)
	if _, err := a.db.ExecContext(ctx, `INSERT OR IGNORE INTO settings (key, value) VALUES ('session_secret', ?)`, value); err != nil {
		return nil, fmt.Errorf("storing session secret: %w", err)
	}
	// Another process may have won the insert.
	if err := a.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'session_secret'`).Scan(&value); err != nil {
		return nil, fmt.Errorf("reading session secret: %w", err)
	}
	return hex.DecodeString(value)
}

// restore reads the token file. Anything unusable is removed and treated as
// signed out.
func (a *Auth) restore(ctx context.Context) *service.Session {
	if a.opts.TokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(a.opts.TokenPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("reading session token", zap.Error(err))
		}
		return nil
	}

	sess, err := a.verify(strings.TrimSpace(string(data)))
	if err == nil {
		err = a.userExists(ctx, sess.UserID)
	}
	if err != nil {
		a.logger.Info("discarding stored session", zap.Error(err))
		if rmErr := os.Remove(a.opts.TokenPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			a.logger.Warn("removing session token", zap.Error(rmErr))
		}
		return nil
	}
	return &sess
}

func (a *Auth) userExists(ctx context.Context, id string) error {
	var one int
	err := a.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	return err
}

// issue signs a token for sess.
func (a *Auth) issue(sess service.Session) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   sess.UserID,
		"email": sess.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.opts.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// verify validates a token and extracts the session from its claims.
func (a *Auth) verify(tokenString string) (service.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return service.Session{}, ErrExpiredToken
		}
		return service.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return service.Session{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return service.Session{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return service.Session{UserID: sub, Email: email}, nil
}

// SignUp implements service.AuthProvider.
func (a *Auth) SignUp(ctx context.Context, email, password string) (service.Session, error) {
	email = normalizeEmail(email)
	if len(password) < forms.MinPasswordLength {
		return service.Session{}, &service.AuthError{Op: "sign up", Message: msgWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "sign up", Message: "could not create account", Err: err}
	}

	id := uuid.NewString()
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
	`, id, email, string(hash), a.now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return service.Session{}, &service.AuthError{Op: "sign up", Message: msgEmailInUse}
		}
		return service.Session{}, &service.AuthError{Op: "sign up", Message: "could not create account", Err: err}
	}
	a.logger.Info("account created", zap.String("user_id", id))

	sess := service.Session{UserID: id, Email: email}
	if err := a.establish(sess); err != nil {
		return service.Session{}, err
	}
	return sess, nil
}

// SignIn implements service.AuthProvider.
func (a *Auth) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	email = normalizeEmail(email)

	var id, hash string
	err := a.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Session{}, &service.AuthError{Op: "sign in", Message: msgInvalidCredentials}
	}
	if err != nil {
		return service.Session{}, &service.AuthError{Op: "sign in", Message: "could not sign in", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return service.Session{}, &service.AuthError{Op: "sign in", Message: msgInvalidCredentials}
	}

	sess := service.Session{UserID: id, Email: email}
	if err := a.establish(sess); err != nil {
		return service.Session{}, err
	}
	return sess, nil
}

// establish persists a token for sess and makes it current.
func (a *Auth) establish(sess service.Session) error {
	if a.opts.TokenPath != "" {
		token, err := a.issue(sess)
		if err != nil {
			return &service.AuthError{Op: "session", Message: "could not create session", Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(a.opts.TokenPath), 0700); err != nil {
			return &service.AuthError{Op: "session", Message: "could not save session", Err: err}
		}
		if err := os.WriteFile(a.opts.TokenPath, []byte(token), 0600); err != nil {
			return &service.AuthError{Op: "session", Message: "could not save session", Err: err}
		}
	}
	a.setCurrent(&sess)
	return nil
}

// SignOut implements service.AuthProvider.
func (a *Auth) SignOut(ctx context.Context) error {
	if a.opts.TokenPath != "" {
		if err := os.Remove(a.opts.TokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &service.AuthError{Op: "sign out", Message: "could not remove session", Err: err}
		}
	}
	a.setCurrent(nil)
	return nil
}

// SendPasswordReset implements service.AuthProvider.
func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	var id string
	err := a.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return &service.AuthError{Op: "password reset", Message: msgNoUser, Err: service.ErrNotFound}
	}
	if err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not send password reset", Err: err}
	}

	token := uuid.NewString()
	expires := a.now().Add(ResetTokenTTL).UTC().Format(time.RFC3339)
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at) VALUES (?, ?, ?)
	`, token, id, expires); err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not send password reset", Err: err}
	}

	a.logger.Info("password reset requested", zap.String("user_id", id))
	if a.opts.ResetNotifier != nil {
		a.opts.ResetNotifier(email, token)
	}
	return nil
}

// ConfirmPasswordReset sets a new password using a token from
// SendPasswordReset. Tokens are single use.
func (a *Auth) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < forms.MinPasswordLength {
		return &service.AuthError{Op: "password reset", Message: msgWeakPassword}
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}
	defer tx.Rollback()

	var userID, expiresAt string
	err = tx.QueryRowContext(ctx, `SELECT user_id, expires_at FROM password_resets WHERE token = ?`, token).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &service.AuthError{Op: "password reset", Message: msgBadResetToken}
	}
	if err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM password_resets WHERE token = ?`, token); err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}

	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || a.now().After(expires) {
		// Still consume the expired token.
		if commitErr := tx.Commit(); commitErr != nil {
			a.logger.Warn("discarding expired reset token", zap.Error(commitErr))
		}
		return &service.AuthError{Op: "password reset", Message: msgBadResetToken}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), userID); err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &service.AuthError{Op: "password reset", Message: "could not reset password", Err: err}
	}
	a.logger.Info("password reset", zap.String("user_id", userID))
	return nil
}

// OnSessionChange implements service.AuthProvider.
func (a *Auth) OnSessionChange(fn func(*service.Session)) func() {
	return a.sessions.Subscribe(fn)
}

func (a *Auth) setCurrent(s *service.Session) {
	a.sessions.Set(s)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
