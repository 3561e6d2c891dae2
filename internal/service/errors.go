package service

import (
	"errors"
	"fmt"
)

// Domain errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrInvalidCredentials    = errors.New("incorrect username or password")
	ErrUsernameTaken         = errors.New("username already registered")
	ErrUnauthorized          = errors.New("could not validate credentials")
	ErrForbidden             = errors.New("insufficient permissions")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrNotFound              = errors.New("not found")
	ErrInvalidOperation      = errors.New("invalid operation")
)

// Specific not-found and invalid-operation cases.
var (
	ErrMovieNotFound   = fmt.Errorf("movie %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrSelfAdminToggle = fmt.Errorf("%w: cannot change your own admin status", ErrInvalidOperation)
	ErrSelfDelete      = fmt.Errorf("%w: cannot delete your own account", ErrInvalidOperation)
)
