package usecase

import (
	"context"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/shared/apperror"
)

// feedUsecase derives the discovery feed from the follow graph.
type feedUsecase struct {
	users UserRepository
}

// NewFeedUsecase creates a new feedUsecase.
func NewFeedUsecase(users UserRepository) *feedUsecase {
	return &feedUsecase{users: users}
}

// Feed returns every user the profile does not follow, excluding the profile itself.
// The result is neither ordered nor paginated.
func (u *feedUsecase) Feed(ctx context.Context, profile *entity.User) ([]entity.FeedItem, error) {
	if profile == nil {
		return nil, apperror.NotFound(MsgNoUserFound)
	}

	exclude := make([]string, 0, len(profile.Following)+1)
	exclude = append(exclude, profile.Following...)
	exclude = append(exclude, profile.ID)

	candidates, err := u.users.FindAllExcept(ctx, exclude)
	if err != nil {
		return nil, apperror.Repository(err)
	}

	items := make([]entity.FeedItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, entity.FeedItem{
			ID:         c.ID,
			Name:       c.Name,
			AvatarPath: c.AvatarPath,
		})
	}
	return items, nil
}
