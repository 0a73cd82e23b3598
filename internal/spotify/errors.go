package spotify

import (
	"fmt"

	"github.com/croonapp/croon/internal/shared"
)

// RateLimitError reports a 429 from the API along with the provider's
// Retry-After value in seconds. The client never retries on its own.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %d seconds", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return shared.ErrRateLimited
}

// APIError reports a non-2xx response that does not map to a more specific
// failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}
