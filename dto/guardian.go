package dto

import (
	"time"

	"goaltracker/model"
	"goaltracker/usecase"
)

type InviteGuardianRequest struct {
	GoalID   string `json:"goal_id" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type NudgeRequest struct {
	Kind    model.NudgeKind `json:"kind"`
	Message string          `json:"message" binding:"required,max=280"`
}

type EntitlementResponse struct {
	Tier             model.Tier               `json:"tier"`
	Status           model.SubscriptionStatus `json:"status"`
	Premium          bool                     `json:"premium"`
	Features         map[string]bool          `json:"features"`
	CurrentPeriodEnd *time.Time               `json:"current_period_end,omitempty"`
}

func ToEntitlementResponse(sub *model.UserSubscription) EntitlementResponse {
	ent := usecase.EntitlementFrom(sub)
	features := ent.Features
	if features == nil {
		features = map[string]bool{}
	}
	resp := EntitlementResponse{
		Tier:     ent.Tier,
		Status:   ent.Status,
		Premium:  ent.Premium(),
		Features: features,
	}
	if sub != nil {
		resp.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}
	return resp
}
