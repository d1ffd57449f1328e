package dto

import (
	"goaltracker/model"
	"goaltracker/usecase"
)

type StreakResponse struct {
	Scope                   string `json:"scope"`
	GoalID                  string `json:"goal_id,omitempty"`
	ActionItemID            string `json:"action_item_id,omitempty"`
	CurrentMaintainedStreak int    `json:"current_maintained_streak"`
	BestMaintainedStreak    int    `json:"best_maintained_streak"`
	CurrentPerfectStreak    int    `json:"current_perfect_streak"`
	BestPerfectStreak       int    `json:"best_perfect_streak"`
	LastActivityDate        string `json:"last_activity_date,omitempty"`
	LastEvaluatedDate       string `json:"last_evaluated_date,omitempty"`
}

func ToStreakResponse(info *model.StreakInfo) StreakResponse {
	return StreakResponse{
		Scope:                   string(info.Scope.Kind()),
		GoalID:                  info.Scope.GoalID,
		ActionItemID:            info.Scope.ActionItemID,
		CurrentMaintainedStreak: info.CurrentMaintainedStreak,
		BestMaintainedStreak:    info.BestMaintainedStreak,
		CurrentPerfectStreak:    info.CurrentPerfectStreak,
		BestPerfectStreak:       info.BestPerfectStreak,
		LastActivityDate:        formatDatePtr(info.LastActivityDate),
		LastEvaluatedDate:       formatDatePtr(info.LastEvaluatedDate),
	}
}

func ToStreakResponses(infos []model.StreakInfo) []StreakResponse {
	out := make([]StreakResponse, 0, len(infos))
	for i := range infos {
		out = append(out, ToStreakResponse(&infos[i]))
	}
	return out
}

type ShieldRequest struct {
	Date string `json:"date" binding:"required,isodate"`
}

type ReflectionRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	WentWell   string `json:"went_well" binding:"max=2000"`
	Challenges string `json:"challenges" binding:"max=2000"`
	NextSteps  string `json:"next_steps" binding:"max=2000"`
}

type ReflectionStatusResponse struct {
	Frequency   model.ReflectionFrequency `json:"frequency"`
	PeriodDays  int                       `json:"period_days"`
	PeriodIndex int                       `json:"period_index"`
	PeriodStart string                    `json:"period_start"`
	PeriodEnd   string                    `json:"period_end"`
	Due         bool                      `json:"due"`
	Submitted   bool                      `json:"submitted"`
}

func ToReflectionStatusResponse(s *usecase.ReflectionStatus) ReflectionStatusResponse {
	return ReflectionStatusResponse{
		Frequency:   s.Frequency,
		PeriodDays:  s.PeriodDays,
		PeriodIndex: s.Period.Index,
		PeriodStart: formatDatePtr(&s.Period.Start),
		PeriodEnd:   formatDatePtr(&s.Period.End),
		Due:         s.Due,
		Submitted:   s.Submitted,
	}
}

type JournalRequest struct {
	Date    string `json:"date" binding:"omitempty,isodate"`
	Mood    int    `json:"mood" binding:"min=0,max=5"`
	Content string `json:"content" binding:"required,max=10000"`
}
