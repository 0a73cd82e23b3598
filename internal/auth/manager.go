// package auth owns the OAuth token lifecycle: credential storage, proactive
// expiry-based refresh, and the browser-driven authorization flow.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/croonapp/croon/internal/shared"
	"github.com/croonapp/croon/internal/store"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Credential store key layout. Tokens and credentials are long-lived; the
// per-attempt CSRF state nonce is not.
const (
	keyClientID       = "spotify_client_id"
	keyClientSecret   = "spotify_client_secret"
	keyAccessToken    = "spotify_access_token"
	keyRefreshToken   = "spotify_refresh_token"
	keyTokenExpiresAt = "spotify_token_expires_at"
	statePrefix       = "spotify_auth_state_"

	credentialTTL = 365 * 24 * time.Hour
	stateTTL      = 10 * time.Minute
)

// NewOAuthConfig builds an [oauth2.Config] for the Spotify accounts service.
func NewOAuthConfig(clientID, clientSecret, redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}
}

// Manager validates, refreshes, and persists OAuth tokens against an injected
// credential store.
//
// Refresh failures are never fatal: they clear the stored token set and
// degrade to "not authenticated", leaving the re-authentication decision to
// the caller. Concurrent refreshes from separate processes are not
// coordinated; the store's last writer wins and both results remain valid.
type Manager struct {
	store  store.Store
	config *oauth2.Config
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a Manager on the given store and OAuth config.
func NewManager(s store.Store, config *oauth2.Config, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		store:  s,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Config returns the OAuth configuration the manager exchanges and refreshes
// tokens against.
func (m *Manager) Config() *oauth2.Config {
	return m.config
}

// GetAccessToken returns a currently-valid access token.
//
// A stored token that has not reached its expiry is returned unchanged with
// no network traffic. An expired token triggers exactly one refresh
// round-trip; on success the new token set is persisted wholesale (carrying
// over the old refresh token if the response omits one). On refresh failure,
// or when no refresh token is stored, the token set is cleared and
// [shared.ErrNotAuthenticated] is returned.
func (m *Manager) GetAccessToken(ctx context.Context) (string, error) {
	token, ok := m.store.Get(keyAccessToken)
	if !ok {
		return "", shared.ErrNotAuthenticated
	}

	if raw, ok := m.store.Get(keyTokenExpiresAt); ok {
		if expiresAt, err := time.Parse(time.RFC3339, raw); err == nil && m.now().Before(expiresAt) {
			return token, nil
		}
	}

	refreshToken, ok := m.store.Get(keyRefreshToken)
	if !ok {
		m.clearTokens()
		return "", fmt.Errorf("%w: no refresh token stored", shared.ErrNotAuthenticated)
	}

	refreshed, err := m.refresh(ctx, refreshToken)
	if err != nil {
		m.logger.Debug("token refresh failed", "error", err)
		m.clearTokens()
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, shared.ErrRefreshFailed)
	}

	return refreshed.AccessToken, nil
}

// IsAuthenticated reports whether a valid access token is available,
// refreshing an expired one if possible.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, err := m.GetAccessToken(ctx)
	return err == nil
}

// EnsureAuthenticated is the fast, non-interactive authentication check.
// It never drives the browser flow; a false return means the caller should
// run a full [Flow].
func (m *Manager) EnsureAuthenticated(ctx context.Context) bool {
	return m.IsAuthenticated(ctx)
}

// Exchange trades an authorization code for a token set via the token
// endpoint and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := m.persistToken(token, ""); err != nil {
		return nil, err
	}

	return token, nil
}

// Revoke clears the stored token set. Idempotent.
func (m *Manager) Revoke() error {
	return m.clearTokens()
}

// StoreCredentials persists the application client id and secret.
func (m *Manager) StoreCredentials(clientID, clientSecret string) error {
	if err := m.store.Put(keyClientID, clientID, credentialTTL); err != nil {
		return err
	}
	return m.store.Put(keyClientSecret, clientSecret, credentialTTL)
}

// Credentials returns the stored client id and secret, which may be empty.
func (m *Manager) Credentials() (string, string) {
	clientID, _ := m.store.Get(keyClientID)
	clientSecret, _ := m.store.Get(keyClientSecret)
	return clientID, clientSecret
}

// ForgetCredentials removes the stored client id and secret.
func (m *Manager) ForgetCredentials() error {
	if err := m.store.Forget(keyClientID); err != nil {
		return err
	}
	return m.store.Forget(keyClientSecret)
}

// SaveState persists a CSRF state nonce with a short TTL.
func (m *Manager) SaveState(state string) error {
	return m.store.Put(statePrefix+state, "1", stateTTL)
}

// ConsumeState checks a state nonce and removes it, so each nonce is
// accepted at most once.
func (m *Manager) ConsumeState(state string) bool {
	if _, ok := m.store.Get(statePrefix + state); !ok {
		return false
	}
	m.store.Forget(statePrefix + state)
	return true
}

// refresh performs a single refresh_token grant round-trip.
func (m *Manager) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if err := m.persistToken(token, refreshToken); err != nil {
		return nil, err
	}

	return token, nil
}

// persistToken replaces the stored token set wholesale. When the provider
// omits a refresh token, the existing one is carried over.
func (m *Manager) persistToken(token *oauth2.Token, existingRefreshToken string) error {
	if err := m.store.Put(keyAccessToken, token.AccessToken, credentialTTL); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = m.now().Add(time.Hour)
	}
	if err := m.store.Put(keyTokenExpiresAt, expiry.UTC().Format(time.RFC3339), credentialTTL); err != nil {
		return fmt.Errorf("failed to store token expiry: %w", err)
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = existingRefreshToken
	}
	if refreshToken != "" {
		if err := m.store.Put(keyRefreshToken, refreshToken, credentialTTL); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	return nil
}

func (m *Manager) clearTokens() error {
	var firstErr error
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyTokenExpiresAt} {
		if err := m.store.Forget(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
