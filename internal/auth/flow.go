package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/croonapp/croon/internal/server"
	"github.com/croonapp/croon/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultAuthTimeout bounds how long [Flow.Run] waits for the callback when
// the caller does not supply a timeout.
const DefaultAuthTimeout = 2 * time.Minute

// Flow obtains a fresh authorization code via a one-shot local HTTP callback
// and exchanges it for a token set.
//
// The callback listener runs in a background goroutine so the flow can open
// the browser and then block on the handoff channel; the listener is shut
// down on every exit path.
type Flow struct {
	manager *Manager
	addr    string
	logger  *log.Logger

	// Browser opens the authorization URL; failures are non-fatal. Defaults
	// to [shared.OpenBrowser].
	Browser func(url string) error

	// Notify, when set, receives the authorization URL so the caller can
	// display it regardless of whether the browser opened.
	Notify func(url string)
}

// NewFlow creates a Flow listening on addr (host:port of the redirect URI).
func NewFlow(manager *Manager, addr string, logger *log.Logger) *Flow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Flow{
		manager: manager,
		addr:    addr,
		logger:  logger,
		Browser: shared.OpenBrowser,
	}
}

// AuthorizationURL builds the provider authorize URL with a fresh single-use
// state nonce. When scopes are given they override the configured set.
func (f *Flow) AuthorizationURL(scopes ...string) (string, string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	if err := f.manager.SaveState(state); err != nil {
		return "", "", fmt.Errorf("failed to persist state nonce: %w", err)
	}

	config := f.manager.Config()
	if len(scopes) > 0 {
		scoped := *config
		scoped.Scopes = scopes
		config = &scoped
	}

	return config.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// Run drives a full authorization attempt: bind the callback port, open the
// browser, wait for the callback up to timeout, and exchange the code.
//
// A port that cannot be bound fails immediately with
// [shared.ErrPortUnavailable] before any browser activity. Timeouts yield
// [shared.ErrAuthTimeout]; provider error callbacks yield a
// [server.AuthorizationError]. The port is released before Run returns on
// every path.
func (f *Flow) Run(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	logger := shared.WithLogger(f.logger, "attempt", shared.GenerateID())

	listener, err := net.Listen("tcp", f.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is already in use", shared.ErrPortUnavailable, f.addr)
	}

	authURL, state, err := f.AuthorizationURL()
	if err != nil {
		listener.Close()
		return nil, err
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	httpServer := &http.Server{Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("callback server listening", "addr", f.addr)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	if f.Notify != nil {
		f.Notify(authURL)
	}

	if err := f.Browser(authURL); err != nil {
		logger.Warn("failed to open browser automatically, visit the authorization url manually", "url", authURL, "error", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", shared.ErrAuthTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, result.Error()
	}

	if !f.manager.ConsumeState(result.State) {
		return nil, fmt.Errorf("%w: unknown or expired state nonce", shared.ErrInvalidState)
	}

	token, err := f.manager.Exchange(ctx, result.Code)
	if err != nil {
		return nil, err
	}

	logger.Info("authorization complete")
	return token, nil
}
