package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/croonapp/croon/internal/shared"
)

// AuthorizationError reports that the provider redirected back with an error
// instead of an authorization code (e.g. the user denied access).
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

func (e *AuthorizationError) Unwrap() error {
	return shared.ErrAuthDenied
}

// CallbackResult contains the outcome of a single authorization callback.
type CallbackResult struct {
	Code  string
	State string
	err   error
}

func (r CallbackResult) Error() error {
	return r.err
}

// CallbackHandler handles the OAuth2 authorization-code callback.
// Implements the Handler interface for registration with a Router.
//
// Exactly one callback is meaningful: the first result is delivered through
// the result channel and later requests are rejected without redelivery.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler expecting the given state
// nonce. The nonce should be cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter and delivers the authorization code (or the
// provider's error) through the result channel. The code exchange itself is
// the flow's responsibility, not the listener's.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	// A code outranks any error parameter riding along with it.
	code := query.Get("code")
	if code == "" {
		if errParam := query.Get("error"); errParam != "" {
			h.send(CallbackResult{err: &AuthorizationError{Reason: errParam}})
			writePage(w, http.StatusBadRequest, "Authorization Failed", fmt.Sprintf("Error: %s. You can close this window.", errParam))
			return
		}

		h.send(CallbackResult{err: &AuthorizationError{Reason: "no_code"}})
		writePage(w, http.StatusBadRequest, "Authorization Failed", "No authorization code received. You can close this window.")
		return
	}

	state := query.Get("state")
	if state != h.state {
		h.send(CallbackResult{err: fmt.Errorf("%w: state mismatch", shared.ErrInvalidState)})
		writePage(w, http.StatusBadRequest, "Authorization Failed", "State mismatch. You can close this window and retry.")
		return
	}

	h.send(CallbackResult{Code: code, State: state})
	writePage(w, http.StatusOK, "Authorization Successful", "You can close this window and return to the terminal.")
}

// send delivers the callback result through the channel (only once).
func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the callback outcome.
//
// The channel receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, title, title, message)
}
