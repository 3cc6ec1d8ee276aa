// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"social_backend/internal/feature/auth/transport/http/dto"
	"social_backend/internal/feature/auth/usecase"
	userentity "social_backend/internal/feature/user/domain/entity"
	userdto "social_backend/internal/feature/user/transport/http/dto"
	"social_backend/internal/platform/http/response"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/shared/apperror"
)

// msgInvalidRequest is returned when the body is not valid JSON.
const msgInvalidRequest = "Invalid request"

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は入力を検証し、新規ユーザーを登録します。
	Signup(ctx context.Context, in usecase.SignupInput) (*userentity.User, error)
	// Signin はユーザーを認証し、セッションとアクセストークンを発行します。
	Signin(ctx context.Context, email, password string, meta usecase.SessionMeta) (*usecase.SigninResult, error)
	// Signout はセッションを失効させます。
	Signout(ctx context.Context, sessionID string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth         AuthUsecase
	cookieSecure bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// bindJSON は空のボディを空のリクエストとして扱います。
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, apperror.Validation(msgInvalidRequest))
		return false
	}
	return true
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - 検証は最初のエラーのみを400で返却
// - メール重複時は409を返却
// - 成功時は登録名を200で返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.SignupRes{Name: user.Name})
}

// Signin はユーザーログインAPIエンドポイントを処理します。
// 成功時はトークンをCookieにも設定します。
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninReq
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password, usecase.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		// ユーザー列挙攻撃を防止するため、メールアドレスの存在有無はログにのみ残す
		slog.Warn("signin failed", "error", err, "remote_addr", c.ClientIP())
		response.Error(c, err)
		return
	}

	jwtmw.SetTokenCookie(c, result.Token, result.ExpiresAt, h.cookieSecure)
	slog.Info("user signin successful", "user_id", result.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.SigninRes{Token: result.Token, User: userdto.NewProfile(result.User)})
}

// Signout はセッションを失効させ、Cookieを削除します。失効に失敗しても常に200を返却します。
func (h *AuthHandler) Signout(c *gin.Context) {
	if err := h.auth.Signout(c.Request.Context(), jwtmw.SessionID(c)); err != nil {
		slog.Error("failed to revoke session on signout", "error", err, "remote_addr", c.ClientIP())
	}
	jwtmw.ClearTokenCookie(c, h.cookieSecure)
	c.JSON(http.StatusOK, response.MessageResponse{Message: usecase.MsgSignedOut})
}
