// Package database implements the user repository on top of the connection
// registry.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse/gatehouse/internal/domain"
	"github.com/gatehouse/gatehouse/internal/registry"
)

// pgUniqueViolation is the postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// UserRepo implements domain.UserRepository against the registry's default
// client. Every call re-resolves the client so degraded mode is detected per
// request, before any query is issued.
type UserRepo struct {
	reg *registry.Registry
}

func NewUserRepo(reg *registry.Registry) *UserRepo {
	return &UserRepo{reg: reg}
}

func (r *UserRepo) pool(ctx context.Context) (*pgxpool.Pool, error) {
	cl := r.reg.Client(ctx)
	if cl == nil {
		return nil, domain.ErrNoDatabase
	}
	return cl.Pool, nil
}

func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (int64, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	err = pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, domain.ErrDuplicateCredential
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	return id, nil
}

func (r *UserRepo) FindByLogin(ctx context.Context, login string) (*domain.StoredUser, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	var user domain.StoredUser
	err = pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash FROM users WHERE username = $1 OR email = $1`,
		login,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = pool.QueryRow(ctx,
		`SELECT id, username, email FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}
