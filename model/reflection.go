package model

import "time"

type ReflectionFrequency string

const (
	ReflectionDaily      ReflectionFrequency = "DAILY"
	ReflectionEvery3Days ReflectionFrequency = "EVERY_3_DAYS"
	ReflectionWeekly     ReflectionFrequency = "WEEKLY"
	ReflectionBiWeekly   ReflectionFrequency = "BI_WEEKLY"
)

// Days is the period length of the frequency.
func (f ReflectionFrequency) Days() int {
	switch f {
	case ReflectionDaily:
		return 1
	case ReflectionEvery3Days:
		return 3
	case ReflectionWeekly:
		return 7
	case ReflectionBiWeekly:
		return 14
	}
	return 0
}

type GoalReflection struct {
	ReflectionID string    `bson:"_id" json:"id"`
	GoalID       string    `bson:"goal_id" json:"goal_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	PeriodStart  time.Time `bson:"period_start" json:"period_start"`
	PeriodEnd    time.Time `bson:"period_end" json:"period_end"`
	Rating       int       `bson:"rating" json:"rating"`
	WentWell     string    `bson:"went_well,omitempty" json:"went_well,omitempty"`
	Challenges   string    `bson:"challenges,omitempty" json:"challenges,omitempty"`
	NextSteps    string    `bson:"next_steps,omitempty" json:"next_steps,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

type JournalEntry struct {
	EntryID   string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Date      time.Time `bson:"date" json:"date"`
	Mood      int       `bson:"mood,omitempty" json:"mood,omitempty"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
