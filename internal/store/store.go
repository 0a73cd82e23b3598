// package store provides the persistent key-value credential store.
//
// Values carry an optional per-key expiry; expired keys read as absent. The
// store makes no atomicity guarantees across keys, so callers must treat
// partially written credential sets as "not authenticated".
package store

import "time"

// Store is a durable key-value store with per-key expiry.
type Store interface {
	// Get returns the value for key, or false if the key is absent or expired.
	Get(key string) (string, bool)

	// Put writes key with the given value. A positive ttl sets an expiry;
	// zero or negative ttl stores the value without one.
	Put(key, value string, ttl time.Duration) error

	// Forget removes key. Removing an absent key is not an error.
	Forget(key string) error
}
