package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	pkgAuth "github.com/polkiloo/digimarket/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// ActorContextKey is a gin context key for the caller's model.Actor.
	ActorContextKey = "actor"
	authCookieName  = "digimarket_token"
)

// TokenParser resolves user id from auth token.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// ActorLoader loads role and status of an authenticated user.
type ActorLoader interface {
	ActorOf(ctx context.Context, userID int64) (model.Actor, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// ActorRequired loads the caller identity for user id set by AuthRequired.
// A token for a user that no longer exists is treated as unauthenticated.
func ActorRequired(loader ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(UserIDContextKey)
		userID, _ := val.(int64)
		if !ok || userID == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		actor, err := loader.ActorOf(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}

	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
