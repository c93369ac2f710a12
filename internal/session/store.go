// Package session implements server-side sessions: a signed cookie carries
// an opaque id, all values live in a Store keyed by that id.
package session

import "context"

// Store is the backing key/value state for sessions. Implementations are
// safe for concurrent use; concurrent writes to the same session are
// last-write-wins by design.
type Store interface {
	// Set writes one key of the session and refreshes its lifetime.
	Set(ctx context.Context, sid, key, value string) error
	// Get reads one key. The second return is false when the key (or the
	// whole session) is absent.
	Get(ctx context.Context, sid, key string) (string, bool, error)
	// Erase removes one key. Erasing an absent key is not an error.
	Erase(ctx context.Context, sid, key string) error
}
