package adapters

import (
	"time"

	"social_backend/internal/feature/user/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Name       string  `gorm:"size:64;not null"`
	Email      string  `gorm:"uniqueIndex;size:255;not null"`
	Password   string  `gorm:"size:255;not null"`
	About      string  `gorm:"size:255"`
	AvatarPath *string `gorm:"size:512"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// FollowingModel is one member of a user's following set.
type FollowingModel struct {
	UserID    string `gorm:"primaryKey;size:36"`
	TargetID  string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM.
func (FollowingModel) TableName() string {
	return "user_following"
}

// FollowerModel is one member of a user's followers set.
type FollowerModel struct {
	UserID    string `gorm:"primaryKey;size:36"`
	TargetID  string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM.
func (FollowerModel) TableName() string {
	return "user_followers"
}

// Models lists every GORM model owned by the user feature, for migrations.
func Models() []any {
	return []any{&UserModel{}, &FollowingModel{}, &FollowerModel{}}
}

// setTable returns the table backing a graph set.
func setTable(field entity.SetField) string {
	if field == entity.FieldFollowers {
		return FollowerModel{}.TableName()
	}
	return FollowingModel{}.TableName()
}

// newSetRow returns a row of the table backing field.
func newSetRow(field entity.SetField, userID, targetID string) any {
	if field == entity.FieldFollowers {
		return &FollowerModel{UserID: userID, TargetID: targetID}
	}
	return &FollowingModel{UserID: userID, TargetID: targetID}
}

// ToEntity converts the GORM model to a domain entity. Graph sets are loaded separately.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Password:   m.Password,
		About:      m.About,
		AvatarPath: m.AvatarPath,
		Following:  []string{},
		Followers:  []string{},
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Password:   u.Password,
		About:      u.About,
		AvatarPath: u.AvatarPath,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// patchColumns converts the allow-listed patch into column updates.
func patchColumns(p entity.UserPatch) map[string]any {
	cols := make(map[string]any, 4)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.About != nil {
		cols["about"] = *p.About
	}
	if p.AvatarPath != nil {
		cols["avatar_path"] = *p.AvatarPath
	}
	return cols
}
