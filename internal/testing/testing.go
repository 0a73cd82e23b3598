// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// MemStore is an in-memory test double for [store.Store].
type MemStore struct {
	mu      sync.Mutex
	values  map[string]memEntry
	Puts    int
	Forgets int

	// PutErr, when set, is returned by every Put call.
	PutErr error
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{values: map[string]memEntry{}}
}

func (m *MemStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.values[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && !time.Now().Before(entry.expiresAt) {
		delete(m.values, key)
		return "", false
	}
	return entry.value, true
}

func (m *MemStore) Put(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}

	entry := memEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.values[key] = entry
	return nil
}

func (m *MemStore) Forget(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Forgets++
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// StaticTokenProvider is a test double for [spotify.TokenProvider].
type StaticTokenProvider struct {
	Token string
	Err   error
	Calls int
}

func (p *StaticTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.Calls++
	if p.Err != nil {
		return "", p.Err
	}
	return p.Token, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.Requests++
	return m.response, m.err
}
