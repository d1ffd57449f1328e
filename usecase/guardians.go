package usecase

import (
	"context"
	"strings"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

const (
	NotificationGuardianInvite = "guardian_invite"
	NotificationNudge          = "nudge"

	maxNudgeLength = 280
)

type GuardianService struct {
	repos    Repositories
	subs     *SubscriptionService
	notifier Notifier
	clock    Clock
}

func NewGuardianService(repos Repositories, subs *SubscriptionService, notifier Notifier, clock Clock) *GuardianService {
	return &GuardianService{repos: repos, subs: subs, notifier: notifier, clock: clock}
}

// Invite asks another user to guard one of the caller's goals.
func (svc *GuardianService) Invite(ctx context.Context, id model.Identity, goalID, guardianUsername string) (*model.Guardian, error) {
	if err := svc.subs.Require(ctx, id, Requirement{Tier: model.TierPremium}); err != nil {
		return nil, err
	}
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}

	invitee, err := svc.repos.Users.FindUserByUsername(ctx, strings.TrimSpace(guardianUsername))
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, errs.NotFound("user", guardianUsername)
	}
	if invitee.UserID == id.UserID {
		return nil, errs.BadRequest("you cannot guard your own goal")
	}

	existing, err := svc.repos.Guardians.FindGuardian(ctx, goal.GoalID, invitee.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != model.GuardianRevoked {
		return nil, errs.Duplicate("%s is already invited to this goal", invitee.Username)
	}

	now := svc.clock.now()
	g := &model.Guardian{
		GuardianID:     utils.NewID(),
		OwnerUserID:    id.UserID,
		GuardianUserID: invitee.UserID,
		GoalID:         goal.GoalID,
		Status:         model.GuardianPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if existing != nil {
		g.GuardianID = existing.GuardianID
		g.CreatedAt = existing.CreatedAt
		err = svc.repos.Guardians.UpdateGuardian(ctx, g)
	} else {
		err = svc.repos.Guardians.CreateGuardian(ctx, g)
	}
	if err != nil {
		return nil, err
	}

	svc.notifier.Notify(ctx, model.Notification{
		Type:      NotificationGuardianInvite,
		UserID:    invitee.UserID,
		Data:      map[string]string{"goal_id": goal.GoalID, "guardian_id": g.GuardianID},
		CreatedAt: now,
	})
	return g, nil
}

// Accept is called by the invited user.
func (svc *GuardianService) Accept(ctx context.Context, id model.Identity, guardianID string) (*model.Guardian, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	g, err := svc.repos.Guardians.GetGuardian(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	if g.GuardianUserID != id.UserID {
		return nil, errs.NotFound("guardian invitation", guardianID)
	}
	if g.Status != model.GuardianPending {
		return nil, errs.Conflict("invitation is %s", strings.ToLower(string(g.Status)))
	}
	g.Status = model.GuardianAccepted
	g.UpdatedAt = svc.clock.now()
	if err := svc.repos.Guardians.UpdateGuardian(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Revoke is called by the goal owner.
func (svc *GuardianService) Revoke(ctx context.Context, id model.Identity, guardianID string) (*model.Guardian, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	g, err := svc.repos.Guardians.GetGuardian(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	if g.OwnerUserID != id.UserID {
		return nil, errs.NotFound("guardian", guardianID)
	}
	g.Status = model.GuardianRevoked
	g.UpdatedAt = svc.clock.now()
	if err := svc.repos.Guardians.UpdateGuardian(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// List returns guardianships where the caller is either owner or guardian.
func (svc *GuardianService) List(ctx context.Context, id model.Identity) ([]model.Guardian, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.Guardians.ListGuardians(ctx, id.UserID)
}

// SendNudge lets an accepted guardian poke the goal owner.
func (svc *GuardianService) SendNudge(ctx context.Context, id model.Identity, goalID string, kind model.NudgeKind, message string) (*model.Nudge, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = model.NudgeMessage
	}
	if kind != model.NudgeMessage && kind != model.NudgeReaction {
		return nil, errs.BadRequest("invalid nudge kind %q", kind)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errs.BadRequest("nudge message is required")
	}
	if len(message) > maxNudgeLength {
		return nil, errs.BadRequest("nudge message cannot exceed %d characters", maxNudgeLength)
	}

	goal, err := svc.repos.Goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !isGuardian(ctx, svc.repos, goal.GoalID, id.UserID) {
		return nil, errs.Forbidden("only an accepted guardian can nudge this goal")
	}

	n := &model.Nudge{
		NudgeID:    utils.NewID(),
		GoalID:     goal.GoalID,
		FromUserID: id.UserID,
		ToUserID:   goal.UserID,
		Kind:       kind,
		Message:    message,
		CreatedAt:  svc.clock.now(),
	}
	if err := svc.repos.Nudges.CreateNudge(ctx, n); err != nil {
		return nil, err
	}

	svc.notifier.Notify(ctx, model.Notification{
		Type:      NotificationNudge,
		UserID:    goal.UserID,
		Data:      map[string]string{"goal_id": goal.GoalID, "nudge_id": n.NudgeID, "kind": string(kind)},
		CreatedAt: n.CreatedAt,
	})
	return n, nil
}

func (svc *GuardianService) ListNudges(ctx context.Context, id model.Identity) ([]model.Nudge, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.Nudges.ListNudges(ctx, id.UserID)
}
