package model

import (
	"fmt"
	"time"
)

type ScopeKind string

const (
	ScopeUser ScopeKind = "user"
	ScopeGoal ScopeKind = "goal"
	ScopeTask ScopeKind = "task"
)

// StreakScope identifies whose streak a StreakInfo tracks. GoalID and
// ActionItemID are empty for the wider scopes.
type StreakScope struct {
	UserID       string `bson:"user_id" json:"user_id"`
	GoalID       string `bson:"goal_id,omitempty" json:"goal_id,omitempty"`
	ActionItemID string `bson:"action_item_id,omitempty" json:"action_item_id,omitempty"`
}

func UserScope(userID string) StreakScope {
	return StreakScope{UserID: userID}
}

func GoalScope(userID, goalID string) StreakScope {
	return StreakScope{UserID: userID, GoalID: goalID}
}

func TaskScope(userID, goalID, actionItemID string) StreakScope {
	return StreakScope{UserID: userID, GoalID: goalID, ActionItemID: actionItemID}
}

func (s StreakScope) Kind() ScopeKind {
	switch {
	case s.ActionItemID != "":
		return ScopeTask
	case s.GoalID != "":
		return ScopeGoal
	default:
		return ScopeUser
	}
}

// Key is a stable identifier used for the document id and lock names.
func (s StreakScope) Key() string {
	switch s.Kind() {
	case ScopeTask:
		return fmt.Sprintf("task:%s:%s", s.UserID, s.ActionItemID)
	case ScopeGoal:
		return fmt.Sprintf("goal:%s:%s", s.UserID, s.GoalID)
	default:
		return fmt.Sprintf("user:%s", s.UserID)
	}
}

type StreakInfo struct {
	StreakID                string      `bson:"_id" json:"id"`
	Scope                   StreakScope `bson:"scope" json:"scope"`
	CurrentMaintainedStreak int         `bson:"current_maintained_streak" json:"current_maintained_streak"`
	BestMaintainedStreak    int         `bson:"best_maintained_streak" json:"best_maintained_streak"`
	CurrentPerfectStreak    int         `bson:"current_perfect_streak" json:"current_perfect_streak"`
	BestPerfectStreak       int         `bson:"best_perfect_streak" json:"best_perfect_streak"`
	LastActivityDate        *time.Time  `bson:"last_activity_date,omitempty" json:"last_activity_date,omitempty"`
	LastEvaluatedDate       *time.Time  `bson:"last_evaluated_date,omitempty" json:"last_evaluated_date,omitempty"`
	Version                 int64       `bson:"version" json:"-"`
	UpdatedAt               time.Time   `bson:"updated_at" json:"updated_at"`
}

// Consistent reports whether both best counters dominate their current values.
func (s *StreakInfo) Consistent() bool {
	return s.BestMaintainedStreak >= s.CurrentMaintainedStreak &&
		s.BestPerfectStreak >= s.CurrentPerfectStreak &&
		s.CurrentMaintainedStreak >= 0 && s.CurrentPerfectStreak >= 0
}

// StreakShield records a gap day bridged by spending a streak-shield purchase.
type StreakShield struct {
	ShieldID   string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	Date       time.Time `bson:"date" json:"date"`
	PurchaseID string    `bson:"purchase_id" json:"purchase_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
