package models

import "errors"

// Error kinds surfaced by the service layer. Handlers translate these
// into HTTP status codes; phrasing belongs to the presentation side.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrEmailTaken       = errors.New("email already registered")
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
)
