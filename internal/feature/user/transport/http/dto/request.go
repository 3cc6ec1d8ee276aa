// Package dto defines data transfer objects for the user feature's HTTP transport layer.
package dto

import "social_backend/internal/feature/user/domain/entity"

// FollowReq is the body of PUT /users/follow and PUT /users/unfollow.
type FollowReq struct {
	FollowID string `json:"followId"`
}

// UpdateUserReq is the editable part of a profile. Absent fields are left unchanged.
// Multipart forms use the same field names.
type UpdateUserReq struct {
	Name  *string `json:"name" form:"name" binding:"omitempty,min=4,max=10"`
	Email *string `json:"email" form:"email" binding:"omitempty,email"`
	About *string `json:"about" form:"about" binding:"omitempty,max=200"`
}

// Patch converts the request into the typed allow-list.
func (r UpdateUserReq) Patch() entity.UserPatch {
	return entity.UserPatch{Name: r.Name, Email: r.Email, About: r.About}
}
