// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")

	// ErrSessionMismatch is returned when a token names a session owned by another user.
	ErrSessionMismatch = errors.New("session does not belong to token subject")
)

// Client-facing messages.
const (
	MsgEnterName          = "Enter a name"
	MsgNameLength         = "Name must be between 4 and 10 characters"
	MsgEnterValidEmail    = "Enter a valid email"
	MsgEnterPassword      = "Enter a password"
	MsgPasswordLength     = "Password must be between 4 and 10 characters"
	MsgInvalidCredentials = "Invalid email or password"
	MsgSignedOut          = "You are now signed out"
)
