package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	cookieName = "gatehouse_session"
	cookieKeySID = "sid"
)

// Manager hands out Sessions backed by a server-side Store. The browser
// cookie carries only an opaque session id, signed by gorilla/sessions;
// all session values live in the Store.
type Manager struct {
	cookies *sessions.CookieStore
	store   Store
}

func NewManager(secret string, store Store, maxAge int, secure bool) *Manager {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{cookies: cookies, store: store}
}

// Load returns the session for the request, minting a new id when the
// cookie is absent or fails signature verification. A tampered cookie is
// treated like no cookie at all.
func (m *Manager) Load(c echo.Context) (*Session, error) {
	cookie, err := m.cookies.Get(c.Request(), cookieName)
	if err != nil {
		cookie, err = m.cookies.New(c.Request(), cookieName)
		if err != nil {
			return nil, fmt.Errorf("creating session cookie: %w", err)
		}
	}

	sid, ok := cookie.Values[cookieKeySID].(string)
	if !ok || sid == "" {
		sid = uuid.NewString()
		cookie.Values[cookieKeySID] = sid
		if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
			return nil, fmt.Errorf("saving session cookie: %w", err)
		}
	}

	return &Session{id: sid, store: m.store}, nil
}

// Session is a view over one session id in the Store.
type Session struct {
	id    string
	store Store
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

func (s *Session) Erase(ctx context.Context, key string) error {
	return s.store.Erase(ctx, s.id, key)
}
