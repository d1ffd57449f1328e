package dto

import (
	"goaltracker/model"
	"goaltracker/usecase"
)

type CreateGoalRequest struct {
	Title       string           `json:"title" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Category    string           `json:"category" binding:"max=50"`
	Status      model.GoalStatus `json:"status"`
	StartDate   string           `json:"start_date" binding:"omitempty,isodate"`
	TargetDate  string           `json:"target_date" binding:"omitempty,isodate"`
}

func (r CreateGoalRequest) ToModel() (*model.Goal, error) {
	start, err := ParseOptionalDate("start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	target, err := parseOptionalDatePtr("target_date", &r.TargetDate)
	if err != nil {
		return nil, err
	}
	return &model.Goal{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		StartDate:   start,
		TargetDate:  target,
	}, nil
}

type UpdateGoalRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	TargetDate  *string `json:"target_date" binding:"omitempty,isodate"`
}

func (r UpdateGoalRequest) ToUpdate() (usecase.GoalUpdate, error) {
	target, err := parseOptionalDatePtr("target_date", r.TargetDate)
	if err != nil {
		return usecase.GoalUpdate{}, err
	}
	return usecase.GoalUpdate{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		TargetDate:  target,
	}, nil
}

type GoalStatusRequest struct {
	Status model.GoalStatus `json:"status" binding:"required"`
}

type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

type ProgressRequest struct {
	Date  string  `json:"date" binding:"omitempty,isodate"`
	Value float64 `json:"value"`
	Note  string  `json:"note" binding:"max=1000"`
}

type MilestoneRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	TargetDate string `json:"target_date" binding:"omitempty,isodate"`
}

type ObstacleRequest struct {
	Description string `json:"description" binding:"required,max=2000"`
	Resolution  string `json:"resolution" binding:"max=2000"`
}

type GoalResponse struct {
	model.Goal
	DurationDays int `json:"duration_days"`
}

func ToGoalResponse(goal *model.Goal) GoalResponse {
	return GoalResponse{Goal: *goal, DurationDays: goal.DurationDays()}
}

func ToGoalResponses(goals []model.Goal) []GoalResponse {
	out := make([]GoalResponse, 0, len(goals))
	for i := range goals {
		out = append(out, ToGoalResponse(&goals[i]))
	}
	return out
}
