// Package entity defines the domain entities for the user feature.
package entity

import (
	"slices"
	"time"
)

// User is the identity and social record of a registered account.
type User struct {
	// ID is an opaque identifier assigned at creation. It never changes.
	ID string

	// Name is the display name (4 to 10 characters).
	Name string

	// Email is the normalized address used for authentication.
	// It is unique across all users.
	Email string

	// Password holds the credential hash. It is never exposed outward.
	Password string

	// About is an optional short bio.
	About string

	// AvatarPath is the storage-relative path of the current avatar, or nil.
	AvatarPath *string

	// Following holds the ids of the users this user follows.
	Following []string

	// Followers holds the ids of the users that follow this user.
	Followers []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFollowing reports whether id is in the user's following set.
func (u *User) IsFollowing(id string) bool {
	return slices.Contains(u.Following, id)
}

// HasFollower reports whether id is in the user's followers set.
func (u *User) HasFollower(id string) bool {
	return slices.Contains(u.Followers, id)
}

// SetField names one of the two graph sets stored on a user record.
type SetField string

const (
	// FieldFollowing is the set of users a user follows.
	FieldFollowing SetField = "following"
	// FieldFollowers is the set of users following a user.
	FieldFollowers SetField = "followers"
)

// Valid reports whether f names a known graph set.
func (f SetField) Valid() bool {
	return f == FieldFollowing || f == FieldFollowers
}

// UserPatch is the allow-list of profile fields a user may change.
// A nil field is left untouched.
type UserPatch struct {
	Name       *string
	Email      *string
	About      *string
	AvatarPath *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.About == nil && p.AvatarPath == nil
}

// Apply copies the non-nil patch fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.About != nil {
		u.About = *p.About
	}
	if p.AvatarPath != nil {
		path := *p.AvatarPath
		u.AvatarPath = &path
	}
}

// FeedItem is the projection of a user shown in the discovery feed.
type FeedItem struct {
	ID         string
	Name       string
	AvatarPath *string
}
