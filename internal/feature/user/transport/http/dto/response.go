package dto

import (
	"time"

	"social_backend/internal/feature/user/domain/entity"
)

// ListItem is one row of GET /users.
type ListItem struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile is the public detail view of a user. The credential is never included.
type Profile struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	About      string    `json:"about"`
	AvatarPath *string   `json:"avatar"`
	Following  []string  `json:"following"`
	Followers  []string  `json:"followers"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FeedItem is one suggestion in the discovery feed.
type FeedItem struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	AvatarPath *string `json:"avatar"`
}

// DeletedUserRes is the body of DELETE /users/:userId.
type DeletedUserRes struct {
	DeletedUser Profile `json:"deletedUser"`
}

// NewProfile projects u to its public detail view.
func NewProfile(u *entity.User) Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		About:      u.About,
		AvatarPath: u.AvatarPath,
		Following:  nonNil(u.Following),
		Followers:  nonNil(u.Followers),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NewListItems projects users for the list endpoint.
func NewListItems(users []*entity.User) []ListItem {
	items := make([]ListItem, 0, len(users))
	for _, u := range users {
		items = append(items, ListItem{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return items
}

// NewFeedItems projects feed entries. The result is never nil.
func NewFeedItems(feed []entity.FeedItem) []FeedItem {
	items := make([]FeedItem, 0, len(feed))
	for _, f := range feed {
		items = append(items, FeedItem{ID: f.ID, Name: f.Name, AvatarPath: f.AvatarPath})
	}
	return items
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
