package handler

import (
	"context"
	"time"

	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/model"
	"goaltracker/services"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type RefreshTokens interface {
	ParseRefreshToken(tokenString string) (*services.TokenClaims, error)
	GenerateToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
}

type AuthHandler struct {
	users     *usecase.UserService
	tokens    RefreshTokens
	blacklist middleware.TokenBlacklist
}

func NewAuthHandler(users *usecase.UserService, tokens RefreshTokens, blacklist middleware.TokenBlacklist) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, blacklist: blacklist}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Created(c, dto.ToUserProfileResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, dto.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		User:         dto.ToUserProfileResponse(result.User),
	})
}

// Refresh exchanges a refresh token for a new token pair. The presented
// refresh token is blacklisted so it cannot be replayed.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	// Reject replayed or invalid refresh tokens
	if h.blacklist != nil && h.blacklist.IsBlacklisted(ctx, req.RefreshToken) {
		utils.TrackAuthAttempt("failure", "refresh")
		utils.Unauthorized(c, "Token has been invalidated")
		return
	}
	claims, err := h.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		utils.TrackAuthAttempt("failure", "refresh")
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	// Make sure the account still exists
	user, err := h.users.Profile(ctx, model.Identity{UserID: claims.UserID})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	// Issue a new pair and retire the old refresh token
	access, err := h.tokens.GenerateToken(user.UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(user.UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	h.revoke(ctx, req.RefreshToken, claims.ExpiresAt)

	utils.TrackAuthAttempt("success", "refresh")
	utils.Success(c, dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		User:         dto.ToUserProfileResponse(user),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Get the access token validated by the auth middleware
	token, expiresAt := middleware.AccessToken(c)
	if token == "" {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}
	if h.blacklist == nil {
		utils.Success(c, gin.H{"message": "Successfully logged out"})
		return
	}

	// Blacklist until the token would have expired anyway
	if err := h.blacklist.Blacklist(c.Request.Context(), token, expiresAt); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Successfully logged out"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToUserProfileResponse(user))
}

func (h *AuthHandler) revoke(ctx context.Context, token string, expiresAt time.Time) {
	if h.blacklist == nil {
		return
	}
	if err := h.blacklist.Blacklist(ctx, token, expiresAt); err != nil {
		utils.Log.WithError(err).Warn("failed to blacklist refresh token")
	}
}
