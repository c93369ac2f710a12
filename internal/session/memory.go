package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memorySession struct {
	values   map[string]string
	deadline time.Time
}

// MemoryStore keeps sessions in process memory. Used in single-instance
// mode (no REDIS_URL) and in tests. Unlike the Redis store it is lost on
// restart, which is acceptable for those setups.
type MemoryStore struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]*memorySession
}

func NewMemoryStore(clock clockwork.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok || s.clock.Now().After(sess.deadline) {
		sess = &memorySession{values: make(map[string]string)}
		s.sessions[sid] = sess
	}
	sess.values[key] = value
	sess.deadline = s.clock.Now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sid]
	if !ok || s.clock.Now().After(sess.deadline) {
		return "", false, nil
	}
	val, ok := sess.values[key]
	return val, ok, nil
}

func (s *MemoryStore) Erase(_ context.Context, sid, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sid]; ok {
		delete(sess.values, key)
	}
	return nil
}

// Prune drops expired sessions. Run it periodically; Get already treats
// expired entries as absent, so Prune only reclaims memory.
func (s *MemoryStore) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for sid, sess := range s.sessions {
		if now.After(sess.deadline) {
			delete(s.sessions, sid)
		}
	}
}
