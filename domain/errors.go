package domain

import "errors"

var (
	// ErrNotFound covers both a missing record and a record owned by
	// someone else, so existence is never leaked across users.
	ErrNotFound = errors.New("case not found or access denied")

	// ErrUnauthenticated means no credential is held or the token was
	// rejected; the caller should prompt for login.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRateLimited is surfaced after the transport has exhausted its
	// retry budget against the upstream AI provider.
	ErrRateLimited = errors.New("AI service rate limited, try again later")

	// ErrConflict means a username or email is already taken.
	ErrConflict = errors.New("already exists")
)
