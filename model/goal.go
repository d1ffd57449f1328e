package model

import "time"

type GoalStatus string

const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalPaused    GoalStatus = "PAUSED"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalAbandoned GoalStatus = "ABANDONED"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalPaused, GoalCompleted, GoalAbandoned:
		return true
	}
	return false
}

type Goal struct {
	GoalID      string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Category    string     `bson:"category,omitempty" json:"category,omitempty"`
	Status      GoalStatus `bson:"status" json:"status"`
	StartDate   time.Time  `bson:"start_date" json:"start_date"`
	TargetDate  *time.Time `bson:"target_date,omitempty" json:"target_date,omitempty"`
	Archived    bool       `bson:"archived" json:"archived"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// DurationDays is the planned length of the goal, or -1 when it has no target date.
func (g *Goal) DurationDays() int {
	if g.TargetDate == nil {
		return -1
	}
	return int(g.TargetDate.Sub(g.StartDate).Hours() / 24)
}

type ProgressEntry struct {
	EntryID   string    `bson:"_id" json:"id"`
	GoalID    string    `bson:"goal_id" json:"goal_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Date      time.Time `bson:"date" json:"date"`
	Value     float64   `bson:"value" json:"value"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Milestone struct {
	MilestoneID string     `bson:"_id" json:"id"`
	GoalID      string     `bson:"goal_id" json:"goal_id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Title       string     `bson:"title" json:"title"`
	TargetDate  *time.Time `bson:"target_date,omitempty" json:"target_date,omitempty"`
	Achieved    bool       `bson:"achieved" json:"achieved"`
	AchievedAt  *time.Time `bson:"achieved_at,omitempty" json:"achieved_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

type ObstacleEntry struct {
	ObstacleID  string    `bson:"_id" json:"id"`
	GoalID      string    `bson:"goal_id" json:"goal_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Description string    `bson:"description" json:"description"`
	Resolution  string    `bson:"resolution,omitempty" json:"resolution,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
