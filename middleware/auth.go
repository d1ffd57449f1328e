package middleware

import (
	"context"
	"strings"
	"time"

	"goaltracker/model"
	"goaltracker/services"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	tokenKey     = "access_token"
	tokenExpKey  = "token_expires_at"
	bearerPrefix = "Bearer "
)

type TokenParser interface {
	ParseAccessToken(tokenString string) (*services.TokenClaims, error)
}

type TokenBlacklist interface {
	Blacklist(ctx context.Context, token string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, token string) bool
}

// AuthMiddleware validates the bearer token and stores the caller's user id
// in the gin context. blacklist may be nil.
func AuthMiddleware(tokens TokenParser, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			utils.Unauthorized(c, "Missing or invalid token")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		if blacklist != nil && blacklist.IsBlacklisted(c.Request.Context(), tokenString) {
			utils.TrackAuthAttempt("failure", "blacklisted")
			utils.Unauthorized(c, "Token has been invalidated")
			return
		}

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			utils.TrackAuthAttempt("failure", "token")
			utils.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(tokenKey, tokenString)
		c.Set(tokenExpKey, claims.ExpiresAt)
		c.Next()
	}
}

// Identity returns the authenticated caller. Handlers pass it explicitly to
// every usecase call.
func Identity(c *gin.Context) model.Identity {
	return model.Identity{UserID: c.GetString(userIDKey)}
}

// AccessToken returns the raw bearer token and its expiry.
func AccessToken(c *gin.Context) (string, time.Time) {
	return c.GetString(tokenKey), c.GetTime(tokenExpKey)
}
