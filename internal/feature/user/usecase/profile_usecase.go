package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/shared/apperror"
)

// AvatarProcessor turns an accepted upload into a stored avatar path.
type AvatarProcessor interface {
	Process(ctx context.Context, username string, upload *AvatarUpload) (string, error)
}

// profileUsecase implements listing, editing and deleting user records.
type profileUsecase struct {
	users     UserRepository
	avatars   AvatarProcessor
	publisher EventPublisher
}

// NewProfileUsecase creates a new profileUsecase. publisher may be nil.
func NewProfileUsecase(users UserRepository, avatars AvatarProcessor, publisher EventPublisher) *profileUsecase {
	return &profileUsecase{users: users, avatars: avatars, publisher: publisher}
}

// List returns every user.
func (u *profileUsecase) List(ctx context.Context) ([]*entity.User, error) {
	users, err := u.users.FindAll(ctx)
	if err != nil {
		return nil, apperror.Repository(err)
	}
	return users, nil
}

// Update applies patch to the resolved profile, processing upload first when present.
// Only the profile owner may update it.
func (u *profileUsecase) Update(ctx context.Context, pc ProfileContext, patch entity.UserPatch, upload *AvatarUpload) (*entity.User, error) {
	if !pc.Found() {
		return nil, apperror.NotFound(MsgNoUserFound)
	}
	if !pc.IsAuthUser {
		return nil, apperror.Authorization(MsgNotAuthorized)
	}

	if patch.Email != nil {
		normalized := NormalizeEmail(*patch.Email)
		patch.Email = &normalized
	}

	var written string
	if upload != nil {
		avatarPath, err := u.avatars.Process(ctx, pc.Profile.Name, upload)
		if err != nil {
			return nil, err
		}
		written = avatarPath
		patch.AvatarPath = &avatarPath
	}

	if patch.IsEmpty() {
		return pc.Profile, nil
	}

	updated, err := u.users.Update(ctx, pc.Profile.ID, patch)
	if err != nil {
		if written != "" {
			slog.Warn("avatar left orphaned by failed update", "user_id", pc.Profile.ID, "path", written)
		}
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			return nil, apperror.Conflict(MsgEmailTaken)
		case errors.Is(err, ErrUserNotFound):
			return nil, apperror.NotFound(MsgNoUserFound)
		default:
			return nil, apperror.Repository(err)
		}
	}

	publishEvent(ctx, u.publisher, EventUserUpdated, UserEvent{UserID: updated.ID})
	return updated, nil
}

// Delete removes the resolved profile and returns it. Only the owner may delete it.
// Other users' following and followers sets keep their references to the deleted id.
func (u *profileUsecase) Delete(ctx context.Context, pc ProfileContext) (*entity.User, error) {
	if !pc.Found() {
		return nil, apperror.NotFound(MsgNoUserFound)
	}
	if !pc.IsAuthUser {
		return nil, apperror.Authorization(MsgNotAuthorized)
	}

	deleted, err := u.users.Delete(ctx, pc.Profile.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NotFound(MsgNoUserFound)
		}
		return nil, apperror.Repository(err)
	}

	publishEvent(ctx, u.publisher, EventUserDeleted, UserEvent{UserID: deleted.ID})
	return deleted, nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
