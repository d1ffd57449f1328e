package usecase

import (
	"context"

	"goaltracker/errs"
	"goaltracker/model"
)

func requireIdentity(id model.Identity) error {
	if id.UserID == "" {
		return errs.Unauthorized("missing identity")
	}
	return nil
}

// ownedGoal loads a goal the caller owns. Accepted guardians get Forbidden;
// anyone else gets NotFound so goal ids do not leak.
func ownedGoal(ctx context.Context, repos Repositories, id model.Identity, goalID string) (*model.Goal, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	goal, err := repos.Goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID == id.UserID {
		return goal, nil
	}
	if isGuardian(ctx, repos, goalID, id.UserID) {
		return nil, errs.Forbidden("guardians cannot modify goal %s", goalID)
	}
	return nil, errs.NotFound("goal", goalID)
}

// readableGoal loads a goal the caller owns or guards.
func readableGoal(ctx context.Context, repos Repositories, id model.Identity, goalID string) (*model.Goal, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	goal, err := repos.Goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID == id.UserID || isGuardian(ctx, repos, goalID, id.UserID) {
		return goal, nil
	}
	return nil, errs.NotFound("goal", goalID)
}

func isGuardian(ctx context.Context, repos Repositories, goalID, userID string) bool {
	g, err := repos.Guardians.FindGuardian(ctx, goalID, userID)
	return err == nil && g != nil && g.Status == model.GuardianAccepted
}

func ownedActionItem(ctx context.Context, repos Repositories, id model.Identity, actionItemID string) (*model.ActionItem, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	item, err := repos.ActionItems.GetActionItem(ctx, actionItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != id.UserID {
		return nil, errs.NotFound("action item", actionItemID)
	}
	return item, nil
}
