// Package googletasks implements the task store and auth provider on a
// Google account: OAuth for identity and one Google Tasks list for storage.
package googletasks

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasknova/internal/config"
	"tasknova/internal/logging"
	"tasknova/internal/service"
)

// Backend is the Google-backed service.Backend.
type Backend struct {
	auth  *Auth
	store *Store
}

// Open builds the backend for cfg. Nothing is contacted until the store is
// first used, so it works before the first login.
func Open(cfg *config.Config, logger *zap.Logger) *Backend {
	logger = logging.OrNop(logger).With(zap.String("backend", config.BackendGoogle))

	auth := NewAuth(Paths{
		Dir:         cfg.Dir,
		OAuthClient: cfg.OAuthClientPath(),
		Token:       cfg.TokenPath(),
		Session:     cfg.GoogleSessionPath(),
	}, logger)

	store := NewStore(cfg.Google.ListTitle, cfg.Sync.PollInterval, func(ctx context.Context) (*tasks.Service, error) {
		return connect(ctx, cfg)
	}, logger)
	auth.changed = func(*oauth2.Token) { store.reset() }

	return &Backend{auth: auth, store: store}
}

// connect creates a Tasks client from oauth_client.json and token.json.
func connect(ctx context.Context, cfg *config.Config) (*tasks.Service, error) {
	oauthConfig, err := loadOAuthConfig(cfg.OAuthClientPath())
	if err != nil {
		return nil, err
	}
	token, err := loadToken(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	// The token source refreshes for as long as the process runs, so it must
	// not inherit a per-request context.
	tokenSource := oauthConfig.TokenSource(context.WithoutCancel(ctx), token)
	httpClient := oauth2.NewClient(context.WithoutCancel(ctx), tokenSource)
	return NewService(ctx, httpClient)
}

// NewService creates a Tasks client over httpClient. Extra options such as
// option.WithEndpoint are passed through.
func NewService(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*tasks.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return svc, nil
}

// Auth implements service.Backend.
func (b *Backend) Auth() service.AuthProvider { return b.auth }

// Store implements service.Backend.
func (b *Backend) Store() service.TaskStore { return b.store }

// Close implements service.Backend.
func (b *Backend) Close() error { return nil }
