// Package jwtmw issues access tokens and resolves the viewer of each request.
package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"social_backend/internal/platform/http/response"
	"social_backend/internal/shared/apperror"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID.
	ContextUserID = "userID"

	// ContextSessionID is the gin context key holding the session behind the token.
	ContextSessionID = "sessionID"

	// CookieName is the cookie carrying the access token.
	CookieName = "next-cookie.sid"

	// MsgUnauthenticated is returned when a protected route is hit without a viewer.
	MsgUnauthenticated = "You are unauthenticated. Please sign in or sign up"
)

// TokenVerifier resolves an access token to the user and session behind it.
// It must reject tokens whose session has been revoked or has expired.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (userID, sessionID string, err error)
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the viewer when a valid token is present.
// Requests without one continue anonymously.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		userID, sessionID, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			slog.Debug("ignoring invalid token", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate resolved a viewer.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ViewerID(c) == "" {
			response.Error(c, apperror.Authentication(MsgUnauthenticated))
			return
		}
		c.Next()
	}
}

// ViewerID returns the authenticated user ID, or "" for anonymous requests.
func ViewerID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// SessionID returns the session behind the request token, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

// SetTokenCookie stores token in the session cookie until expiresAt.
func SetTokenCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie expires the session cookie.
func ClearTokenCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
