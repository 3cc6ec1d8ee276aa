// Package usecase implements the business logic for the user feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given ID or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when an update or insert would duplicate an email.
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Client-facing messages.
const (
	MsgNoUserFound     = "No user found"
	MsgUnauthenticated = "You are unauthenticated. Please sign in or sign up"
	MsgNotAuthorized   = "You are not authorized to perform this action"
	MsgSelfFollow      = "You cannot follow yourself"
	MsgFollowIDMissing = "followId is required"
	MsgEmailTaken      = "Email is already registered"
	MsgAvatarTooLarge  = "Avatar must be 1MB or smaller"
	MsgNameLength      = "Name must be between 4 and 10 characters"
	MsgEnterValidEmail = "Enter a valid email"
	MsgAboutTooLong    = "About must be 200 characters or fewer"
	MsgInvalidRequest  = "Invalid request"
)
