package domain

import "context"

// User is the record returned to clients. It never carries the password
// digest.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// StoredUser is a user row as read from storage, including the password
// digest needed for verification. It never leaves the auth service.
type StoredUser struct {
	User
	PasswordHash string `json:"-"`
}

// Credentials are the transient registration inputs. The plaintext password
// exists only for the duration of the request.
type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRepository is the storage surface the auth service depends on.
type UserRepository interface {
	// Create inserts a new user row and returns its id. A storage-level
	// uniqueness violation surfaces as ErrDuplicateCredential.
	Create(ctx context.Context, username, email, passwordHash string) (int64, error)

	// FindByLogin resolves a single row where the username or the email
	// equals login. Returns ErrUserNotFound when no row matches.
	FindByLogin(ctx context.Context, login string) (*StoredUser, error)

	// FindByID fetches a user by id. Returns ErrUserNotFound when the row
	// no longer exists.
	FindByID(ctx context.Context, id int64) (*User, error)
}
