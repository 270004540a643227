package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

// scopes also ask for an id_token so the account can be identified.
var scopes = []string{tasksScope, "openid", "email"}

// ErrNoOAuthClient is returned when oauth_client.json is missing.
var ErrNoOAuthClient = errors.New("oauth_client.json not found")

// loadOAuthConfig reads the desktop client credentials.
func loadOAuthConfig(path string) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoOAuthClient
		}
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// PrintSetupHelp explains how to obtain OAuth client credentials.
func PrintSetupHelp(w io.Writer, dir string) {
	fmt.Fprintln(w, "To use the Google Tasks backend, you need OAuth credentials:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(w, "2. Create a project (or select an existing one)")
	fmt.Fprintln(w, "3. Enable the Google Tasks API:")
	fmt.Fprintln(w, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(w, "4. Create OAuth 2.0 credentials:")
	fmt.Fprintln(w, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(w, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(w, "   - Download the JSON file")
	fmt.Fprintln(w, "5. Save it as:")
	fmt.Fprintf(w, "   %s/oauth_client.json\n", dir)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Then run 'tasknova login' again.")
}

// runConsentFlow runs the loopback PKCE flow: it prints the consent URL to
// prompt, waits for the browser redirect and exchanges the code.
func runConsentFlow(ctx context.Context, oauthConfig *oauth2.Config, prompt io.Writer) (*oauth2.Token, error) {
	port, listener, err := findAvailablePort()
	if err != nil {
		return nil, fmt.Errorf("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	conf := *oauthConfig
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(prompt, "Open this URL in your browser:")
	fmt.Fprintln(prompt, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in to TaskNova</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(oauthCallbackTimeout):
		return nil, fmt.Errorf("oauth callback timed out")
	case <-ctx.Done():
		return nil, fmt.Errorf("cancelled")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	token, err := conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

// loadToken reads a stored token. A token without a refresh token is unusable
// once the access token expires and is rejected.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("token.json has no refresh token")
	}
	return &token, nil
}

// saveToken saves an OAuth token to a file with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
