// Package handler provides HTTP handlers for the user feature.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/feature/user/transport/http/dto"
	"social_backend/internal/feature/user/usecase"
	"social_backend/internal/platform/http/response"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/shared/apperror"
)

// avatarField is the multipart field carrying the avatar upload.
const avatarField = "avatar"

// IdentityResolver binds a :userId path parameter to a profile for the current viewer.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID, viewerID string) (usecase.ProfileContext, error)
}

// ProfileUsecase lists and edits user records.
type ProfileUsecase interface {
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, pc usecase.ProfileContext, patch entity.UserPatch, upload *usecase.AvatarUpload) (*entity.User, error)
	Delete(ctx context.Context, pc usecase.ProfileContext) (*entity.User, error)
}

// GraphUsecase mutates follow edges.
type GraphUsecase interface {
	Follow(ctx context.Context, followerID, followeeID string) (*entity.User, error)
	Unfollow(ctx context.Context, followerID, followeeID string) (*entity.User, error)
}

// FeedUsecase derives the discovery feed.
type FeedUsecase interface {
	Feed(ctx context.Context, profile *entity.User) ([]entity.FeedItem, error)
}

// SessionRevoker signs a user out of every session.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

// UserHandler serves the /users routes.
type UserHandler struct {
	resolver     IdentityResolver
	profiles     ProfileUsecase
	graph        GraphUsecase
	feed         FeedUsecase
	sessions     SessionRevoker
	cookieSecure bool
}

// NewUserHandler creates a new UserHandler. sessions may be nil.
func NewUserHandler(resolver IdentityResolver, profiles ProfileUsecase, graph GraphUsecase, feed FeedUsecase, sessions SessionRevoker, cookieSecure bool) *UserHandler {
	return &UserHandler{
		resolver:     resolver,
		profiles:     profiles,
		graph:        graph,
		feed:         feed,
		sessions:     sessions,
		cookieSecure: cookieSecure,
	}
}

// resolve binds :userId for the current viewer and fails with 404 when the user does not exist.
func (h *UserHandler) resolve(c *gin.Context) (usecase.ProfileContext, bool) {
	pc, err := h.resolver.Resolve(c.Request.Context(), c.Param("userId"), jwtmw.ViewerID(c))
	if err != nil {
		response.Error(c, err)
		return pc, false
	}
	if !pc.Found() {
		response.Error(c, apperror.NotFound(usecase.MsgNoUserFound))
		return pc, false
	}
	return pc, true
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.profiles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListItems(users))
}

// GetAuthUser handles GET /users/:userId. Only the user themself may read it.
func (h *UserHandler) GetAuthUser(c *gin.Context) {
	pc, ok := h.resolve(c)
	if !ok {
		return
	}
	if !pc.IsAuthUser {
		response.Error(c, apperror.Authorization(usecase.MsgUnauthenticated))
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(pc.Profile))
}

// GetProfile handles GET /users/profile/:userId.
func (h *UserHandler) GetProfile(c *gin.Context) {
	pc, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(pc.Profile))
}

// Feed handles GET /users/feed/:userId.
func (h *UserHandler) Feed(c *gin.Context) {
	pc, ok := h.resolve(c)
	if !ok {
		return
	}
	items, err := h.feed.Feed(c.Request.Context(), pc.Profile)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedItems(items))
}

// Update handles PUT /users/:userId with either a JSON body or a multipart form.
// A multipart "avatar" part that is not an image is dropped without error.
func (h *UserHandler) Update(c *gin.Context) {
	pc, ok := h.resolve(c)
	if !ok {
		return
	}

	var req dto.UpdateUserReq
	var upload *usecase.AvatarUpload
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, bindingError(err))
			return
		}
		var err error
		if upload, err = readAvatar(c); err != nil {
			response.Error(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindingError(err))
		return
	}

	updated, err := h.profiles.Update(c.Request.Context(), pc, req.Patch(), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	slog.Info("user updated", "user_id", updated.ID, "avatar", upload != nil, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewProfile(updated))
}

// Delete handles DELETE /users/:userId, then signs the user out everywhere.
func (h *UserHandler) Delete(c *gin.Context) {
	pc, ok := h.resolve(c)
	if !ok {
		return
	}

	deleted, err := h.profiles.Delete(c.Request.Context(), pc)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.sessions != nil {
		if err := h.sessions.RevokeAll(c.Request.Context(), deleted.ID); err != nil {
			slog.Error("failed to revoke sessions of deleted user", "user_id", deleted.ID, "error", err)
		}
	}
	jwtmw.ClearTokenCookie(c, h.cookieSecure)

	slog.Info("user deleted", "user_id", deleted.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.DeletedUserRes{DeletedUser: dto.NewProfile(deleted)})
}

// Follow handles PUT /users/follow.
func (h *UserHandler) Follow(c *gin.Context) {
	h.mutateEdge(c, h.graph.Follow)
}

// Unfollow handles PUT /users/unfollow.
func (h *UserHandler) Unfollow(c *gin.Context) {
	h.mutateEdge(c, h.graph.Unfollow)
}

func (h *UserHandler) mutateEdge(c *gin.Context, op func(ctx context.Context, followerID, followeeID string) (*entity.User, error)) {
	var req dto.FollowReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(usecase.MsgInvalidRequest))
		return
	}

	followee, err := op(c.Request.Context(), jwtmw.ViewerID(c), strings.TrimSpace(req.FollowID))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfile(followee))
}

// readAvatar returns the avatar upload of a multipart request, or nil when there is none
// or its part is not an image.
func readAvatar(c *gin.Context) (*usecase.AvatarUpload, error) {
	fh, err := c.FormFile(avatarField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.Validation(usecase.MsgInvalidRequest)
	}

	contentType := fh.Header.Get("Content-Type")
	if !usecase.IsImageType(contentType) {
		slog.Debug("dropping non-image avatar", "content_type", contentType, "filename", fh.Filename)
		return nil, nil
	}
	if fh.Size > usecase.MaxAvatarBytes {
		return nil, apperror.Validation(usecase.MsgAvatarTooLarge)
	}

	data, err := readPart(fh)
	if err != nil {
		return nil, apperror.Media(err)
	}
	if len(data) > usecase.MaxAvatarBytes {
		return nil, apperror.Validation(usecase.MsgAvatarTooLarge)
	}
	return &usecase.AvatarUpload{Data: data, ContentType: contentType}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, usecase.MaxAvatarBytes+1))
}

// bindingError turns the first failed field of a patch into its client message.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation(usecase.MsgInvalidRequest)
	}
	switch verrs[0].Field() {
	case "Name":
		return apperror.Validation(usecase.MsgNameLength)
	case "Email":
		return apperror.Validation(usecase.MsgEnterValidEmail)
	case "About":
		return apperror.Validation(usecase.MsgAboutTooLong)
	default:
		return apperror.Validation(usecase.MsgInvalidRequest)
	}
}
