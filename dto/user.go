package dto

import (
	"time"

	"goaltracker/model"
)

type UserProfileResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	TimeZone  string    `json:"time_zone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserProfileResponse(user *model.User) UserProfileResponse {
	return UserProfileResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		TimeZone:  user.TimeZone,
		CreatedAt: user.CreatedAt,
	}
}

type LoginResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	TokenType    string              `json:"token_type"`
	User         UserProfileResponse `json:"user"`
}
