package usecase

import (
	"context"
	"errors"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/shared/apperror"
)

// ProfileContext is the result of resolving a user reference for one request.
// Profile is nil when the referenced user does not exist.
type ProfileContext struct {
	Profile    *entity.User
	IsAuthUser bool
}

// Found reports whether the referenced user exists.
func (p ProfileContext) Found() bool {
	return p.Profile != nil
}

// identityResolver loads the user a request refers to and decides whether the viewer is that user.
type identityResolver struct {
	users UserRepository
}

// NewIdentityResolver creates a new identityResolver.
func NewIdentityResolver(users UserRepository) *identityResolver {
	return &identityResolver{users: users}
}

// Resolve never fails on a missing profile; it returns a ProfileContext with a nil Profile instead.
// viewerID is empty for anonymous requests.
func (r *identityResolver) Resolve(ctx context.Context, userID, viewerID string) (ProfileContext, error) {
	if userID == "" {
		return ProfileContext{}, nil
	}

	profile, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ProfileContext{}, nil
		}
		return ProfileContext{}, apperror.Repository(err)
	}

	return ProfileContext{
		Profile:    profile,
		IsAuthUser: viewerID != "" && viewerID == profile.ID,
	}, nil
}
