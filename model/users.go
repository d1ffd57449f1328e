package model

import "time"

type User struct {
	UserID    string    `bson:"_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"` // encoded argon2id hash
	TimeZone  string    `bson:"time_zone,omitempty" json:"time_zone,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=4,max=20"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	TimeZone string `json:"time_zone"`
}

// Identity is the authenticated caller. It is passed explicitly into every
// usecase operation.
type Identity struct {
	UserID string
}
