package usecase

import (
	"context"
	"strings"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

type ReflectionService struct {
	repos Repositories
	clock Clock
}

func NewReflectionService(repos Repositories, clock Clock) *ReflectionService {
	return &ReflectionService{repos: repos, clock: clock}
}

type ReflectionStatus struct {
	Frequency  model.ReflectionFrequency `json:"frequency"`
	PeriodDays int                       `json:"period_days"`
	Period     ReflectionPeriod          `json:"period"`
	Due        bool                      `json:"due"`
	Submitted  bool                      `json:"submitted"`
}

func (svc *ReflectionService) Status(ctx context.Context, id model.Identity, goalID string) (*ReflectionStatus, error) {
	goal, err := readableGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	existing, err := svc.repos.Reflections.ListReflections(ctx, goal.GoalID)
	if err != nil {
		return nil, err
	}

	today := svc.clock.today()
	freq := ReflectionFrequencyFor(goal.DurationDays())
	period := CurrentReflectionPeriod(goal.StartDate, today, freq)
	return &ReflectionStatus{
		Frequency:  freq,
		PeriodDays: freq.Days(),
		Period:     period,
		Due:        ReflectionDue(period, today, existing),
		Submitted:  periodCovered(period, existing),
	}, nil
}

// Submit stores the reflection for the goal's current period. A period takes
// one reflection; a second is Duplicate.
func (svc *ReflectionService) Submit(ctx context.Context, id model.Identity, goalID string, r *model.GoalReflection) (*model.GoalReflection, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	if r.Rating < 1 || r.Rating > 5 {
		return nil, errs.BadRequest("rating must be between 1 and 5")
	}

	today := svc.clock.today()
	if today.Before(goal.StartDate) {
		return nil, errs.BadRequest("goal has not started yet")
	}
	period := CurrentReflectionPeriod(goal.StartDate, today, ReflectionFrequencyFor(goal.DurationDays()))

	r.ReflectionID = utils.NewID()
	r.GoalID = goal.GoalID
	r.UserID = id.UserID
	r.PeriodStart = period.Start
	r.PeriodEnd = period.End
	r.WentWell = strings.TrimSpace(r.WentWell)
	r.Challenges = strings.TrimSpace(r.Challenges)
	r.NextSteps = strings.TrimSpace(r.NextSteps)
	r.CreatedAt = svc.clock.now()

	err = svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := svc.repos.Reflections.ListReflections(ctx, goal.GoalID)
		if err != nil {
			return err
		}
		if periodCovered(period, existing) {
			return errs.Duplicate("a reflection for the period starting %s already exists", utils.FormatDate(period.Start))
		}
		return svc.repos.Reflections.CreateReflection(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (svc *ReflectionService) List(ctx context.Context, id model.Identity, goalID string) ([]model.GoalReflection, error) {
	goal, err := readableGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	return svc.repos.Reflections.ListReflections(ctx, goal.GoalID)
}
