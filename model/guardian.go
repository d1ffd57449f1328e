package model

import "time"

type GuardianStatus string

const (
	GuardianPending  GuardianStatus = "PENDING"
	GuardianAccepted GuardianStatus = "ACCEPTED"
	GuardianRevoked  GuardianStatus = "REVOKED"
)

// Guardian grants GuardianUserID read and nudge access to one of OwnerUserID's goals.
type Guardian struct {
	GuardianID     string         `bson:"_id" json:"id"`
	OwnerUserID    string         `bson:"owner_user_id" json:"owner_user_id"`
	GuardianUserID string         `bson:"guardian_user_id" json:"guardian_user_id"`
	GoalID         string         `bson:"goal_id" json:"goal_id"`
	Status         GuardianStatus `bson:"status" json:"status"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

type NudgeKind string

const (
	NudgeMessage  NudgeKind = "MESSAGE"
	NudgeReaction NudgeKind = "REACTION"
)

type Nudge struct {
	NudgeID    string    `bson:"_id" json:"id"`
	GoalID     string    `bson:"goal_id" json:"goal_id"`
	FromUserID string    `bson:"from_user_id" json:"from_user_id"`
	ToUserID   string    `bson:"to_user_id" json:"to_user_id"`
	Kind       NudgeKind `bson:"kind" json:"kind"`
	Message    string    `bson:"message" json:"message"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Notification is a fire-and-forget event handed to the notification dispatcher.
type Notification struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
