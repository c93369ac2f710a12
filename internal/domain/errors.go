package domain

import "errors"

var (
	ErrNoDatabase          = errors.New("no database client available")
	ErrMissingFields       = errors.New("missing fields")
	ErrDuplicateCredential = errors.New("username or email already exists")

	// ErrInvalidCredentials covers both an unknown identity and a wrong
	// password. The two cases are deliberately indistinguishable to the
	// caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUserNotFound     = errors.New("user not found")
)
