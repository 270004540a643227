package local

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"tasknova/internal/config"
	"tasknova/internal/logging"
	"tasknova/internal/service"
)

// Backend is the SQLite-backed service.Backend.
type Backend struct {
	db    *sql.DB
	auth  *Auth
	store *Store
}

// Open opens the database named by cfg and builds the auth provider and task
// store on it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, notifier func(email, token string)) (*Backend, error) {
	logger = logging.OrNop(logger)

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	auth, err := NewAuth(ctx, db, AuthOptions{
		TokenPath:     cfg.SessionTokenPath(),
		Secret:        cfg.Auth.SessionSecret,
		TTL:           cfg.Auth.SessionTTL,
		ResetNotifier: notifier,
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("local backend ready", zap.String("path", cfg.Database.Path))
	return &Backend{
		db:    db,
		auth:  auth,
		store: NewStore(db, cfg.Sync.PollInterval, logger),
	}, nil
}

// Auth implements service.Backend.
func (b *Backend) Auth() service.AuthProvider { return b.auth }

// Store implements service.Backend.
func (b *Backend) Store() service.TaskStore { return b.store }

// LocalAuth exposes the concrete provider for local-only operations such as
// ConfirmPasswordReset.
func (b *Backend) LocalAuth() *Auth { return b.auth }

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
