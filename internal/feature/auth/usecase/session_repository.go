package usecase

import (
	"context"

	"social_backend/internal/feature/auth/domain/entity"
)

// SessionRepository stores sign-in sessions. Redis is the primary store; a SQL table
// is used when Redis is not configured.
// "Active" below means neither revoked nor past ExpiresAt.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// FindByID returns ErrSessionNotFound for unknown or purged ids.
	// Revoked and expired sessions may still be returned; callers check them.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke is idempotent and keeps the first revocation time.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID signs the user out everywhere. Used when the account is deleted.
	RevokeAllByUserID(ctx context.Context, userID string) error

	// CountByUserID counts active sessions.
	CountByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteOldestByUserID drops the oldest active session to make room for a new sign-in.
	// It is a no-op when the user has none.
	DeleteOldestByUserID(ctx context.Context, userID string) error
}
