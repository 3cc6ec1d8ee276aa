package usecase

import (
	"context"
	"log/slog"

	"social_backend/internal/feature/user/domain/entity"
)

// UserRepository abstracts the persistence layer for user records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
// Every method touches a single record; callers must not assume multi-record atomicity.
type UserRepository interface {
	// Create persists a new user and assigns its ID.
	// It returns ErrEmailAlreadyExists if the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID returns ErrUserNotFound if no user has the given ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByEmail returns ErrUserNotFound if no user has the given email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindAll returns every user without the graph sets loaded.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// FindAllExcept returns every user whose ID is not in ids.
	// Order is unspecified.
	FindAllExcept(ctx context.Context, ids []string) ([]*entity.User, error)

	// Update applies patch to the user and returns the updated record.
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)

	// Delete removes the user and returns the record as it was before deletion.
	// References held by other users are left in place.
	Delete(ctx context.Context, id string) (*entity.User, error)

	// AddToSet inserts value into the named set and returns the updated record.
	// Inserting an existing member is a no-op.
	AddToSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error)

	// RemoveFromSet removes value from the named set and returns the updated record.
	// Removing a non-member is a no-op.
	RemoveFromSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error)
}

// EventPublisher announces domain events to other services.
// Publishing is best-effort: failures are logged by the caller and never fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Domain event names.
const (
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
)

// GraphEvent is the payload of follow and unfollow events.
type GraphEvent struct {
	FollowerID string `json:"follower_id"`
	FolloweeID string `json:"followee_id"`
}

// UserEvent is the payload of user lifecycle events.
type UserEvent struct {
	UserID string `json:"user_id"`
}

func publishEvent(ctx context.Context, publisher EventPublisher, event string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event, payload); err != nil {
		slog.Warn("failed to publish event", "event", event, "error", err)
	}
}
