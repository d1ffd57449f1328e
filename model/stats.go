package model

// GoalInsights summarises a goal for the premium insights view.
type GoalInsights struct {
	GoalID               string  `json:"goal_id"`
	ScheduledTotal       int     `json:"scheduled_total"`
	ScheduledCompleted   int     `json:"scheduled_completed"`
	CompletionRate       float64 `json:"completion_rate"`
	ProgressEntries      int     `json:"progress_entries"`
	ProgressTotal        float64 `json:"progress_total"`
	MilestonesAchieved   int     `json:"milestones_achieved"`
	MilestonesTotal      int     `json:"milestones_total"`
	CurrentStreak        int     `json:"current_streak"`
	BestStreak           int     `json:"best_streak"`
	BestWeekday          string  `json:"best_weekday,omitempty"`
	ReflectionsSubmitted int     `json:"reflections_submitted"`
	AverageRating        float64 `json:"average_rating"`
}
