package domain

import "context"

// Session keys holding the authenticated principal. A request is considered
// authenticated solely by the presence of KeyUserID.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
)

// Session is the per-connection key/value state identified by an opaque
// cookie. Concurrent writes within one session are last-write-wins; the
// design does not serialize them.
type Session interface {
	ID() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Erase(ctx context.Context, key string) error
}
