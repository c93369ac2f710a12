// Package auth implements registration, login, logout, and current-user
// lookup on top of the database registry and the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gatehouse/gatehouse/internal/domain"
	"github.com/gatehouse/gatehouse/internal/metrics"
)

// queryTimeout bounds every storage call issued by the service.
const queryTimeout = 5 * time.Second

// Service holds the auth business logic. All session mutation goes through
// the domain.Session passed per call; the service keeps no per-user state.
type Service struct {
	users  domain.UserRepository
	hasher *Hasher
}

func NewService(users domain.UserRepository, hasher *Hasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Register creates a new user. The plaintext password is digested before the
// insert and never stored or logged.
func (s *Service) Register(ctx context.Context, creds domain.Credentials) error {
	if creds.Username == "" || creds.Email == "" || creds.Password == "" {
		return domain.ErrMissingFields
	}

	passwordHash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.users.Create(ctx, creds.Username, creds.Email, passwordHash); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	slog.Info("user registered", "username", creds.Username)
	return nil
}

// Login authenticates by username or email plus password. An unknown
// identity and a wrong password return the identical ErrInvalidCredentials;
// the caller cannot enumerate accounts. On success the session gains the
// principal keys and the user record is returned.
func (s *Service) Login(ctx context.Context, sess domain.Session, login, password string) (*domain.User, error) {
	if login == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stored, err := s.users.FindByLogin(qctx, login)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		case errors.Is(err, domain.ErrNoDatabase):
			return nil, err
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	ok, err := s.hasher.Verify(password, stored.PasswordHash)
	if err != nil || !ok {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if err := sess.Set(ctx, domain.SessionKeyUserID, strconv.FormatInt(stored.ID, 10)); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}
	if err := sess.Set(ctx, domain.SessionKeyUsername, stored.Username); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	slog.Info("user logged in", "user_id", stored.ID, "username", stored.Username)

	user := stored.User
	return &user, nil
}

// Logout removes the principal keys from the session. Calling it without an
// active session is still a success.
func (s *Service) Logout(ctx context.Context, sess domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := sess.Erase(ctx, domain.SessionKeyUserID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := sess.Erase(ctx, domain.SessionKeyUsername); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Me resolves the authenticated principal and re-fetches the row by id;
// session fields beyond user_id are not trusted. The session survives even
// when the row is gone (the caller just sees ErrUserNotFound).
func (s *Service) Me(ctx context.Context, sess domain.Session) (*domain.User, error) {
	if sess == nil {
		return nil, domain.ErrNotAuthenticated
	}

	raw, ok, err := sess.Get(ctx, domain.SessionKeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.users.FindByID(qctx, userID)
}
