package usecase

import (
	"context"
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

type GoalService struct {
	repos         Repositories
	subs          *SubscriptionService
	streaks       *StreakService
	clock         Clock
	freeGoalLimit int
}

// NewGoalService caps FREE accounts at freeGoalLimit active goals; zero
// disables the cap.
func NewGoalService(repos Repositories, subs *SubscriptionService, streaks *StreakService, clock Clock, freeGoalLimit int) *GoalService {
	return &GoalService{repos: repos, subs: subs, streaks: streaks, clock: clock, freeGoalLimit: freeGoalLimit}
}

// GoalUpdate carries the editable goal fields; nil means unchanged.
type GoalUpdate struct {
	Title       *string
	Description *string
	Category    *string
	TargetDate  *time.Time
}

// Create Goal
func (svc *GoalService) CreateGoal(ctx context.Context, id model.Identity, goal *model.Goal) (*model.Goal, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Title == "" {
		return nil, errs.BadRequest("goal title is required")
	}
	if goal.Status == "" {
		goal.Status = model.GoalActive
	}
	if !goal.Status.Valid() {
		return nil, errs.BadRequest("invalid goal status %q", goal.Status)
	}
	if goal.StartDate.IsZero() {
		goal.StartDate = svc.clock.today()
	}
	goal.StartDate = utils.Day(goal.StartDate)
	if goal.TargetDate != nil {
		target := utils.Day(*goal.TargetDate)
		if target.Before(goal.StartDate) {
			return nil, errs.BadRequest("target date cannot be before the start date")
		}
		goal.TargetDate = &target
	}

	if err := svc.checkGoalLimit(ctx, id); err != nil {
		return nil, err
	}

	now := svc.clock.now()
	goal.GoalID = utils.NewID()
	goal.UserID = id.UserID
	goal.Archived = false
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := svc.repos.Goals.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	utils.Log.WithField("user_id", id.UserID).WithField("goal_id", goal.GoalID).Info("goal created")
	return goal, nil
}

func (svc *GoalService) checkGoalLimit(ctx context.Context, id model.Identity) error {
	if svc.freeGoalLimit <= 0 {
		return nil
	}
	ent, err := svc.subs.Entitlement(ctx, id.UserID)
	if err != nil {
		return err
	}
	if ent.Premium() {
		return nil
	}
	n, err := svc.repos.Goals.CountActiveGoals(ctx, id.UserID)
	if err != nil {
		return err
	}
	if n >= svc.freeGoalLimit {
		utils.TrackEntitlementDenial("goal_limit")
		return errs.UsageLimitExceeded("free accounts are limited to %d active goals", svc.freeGoalLimit)
	}
	return nil
}

func (svc *GoalService) GetGoal(ctx context.Context, id model.Identity, goalID string) (*model.Goal, error) {
	return readableGoal(ctx, svc.repos, id, goalID)
}

func (svc *GoalService) ListGoals(ctx context.Context, id model.Identity, includeArchived bool) ([]model.Goal, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.Goals.ListGoals(ctx, id.UserID, includeArchived)
}

func (svc *GoalService) UpdateGoal(ctx context.Context, id model.Identity, goalID string, upd GoalUpdate) (*model.Goal, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, errs.BadRequest("goal title is required")
		}
		goal.Title = title
	}
	if upd.Description != nil {
		goal.Description = *upd.Description
	}
	if upd.Category != nil {
		goal.Category = *upd.Category
	}
	if upd.TargetDate != nil {
		target := utils.Day(*upd.TargetDate)
		if target.Before(goal.StartDate) {
			return nil, errs.BadRequest("target date cannot be before the start date")
		}
		goal.TargetDate = &target
	}
	goal.UpdatedAt = svc.clock.now()
	if err := svc.repos.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// SetStatus moves a goal between ACTIVE, PAUSED, COMPLETED and ABANDONED.
// Reactivating a goal counts against the FREE limit like creating one.
func (svc *GoalService) SetStatus(ctx context.Context, id model.Identity, goalID string, status model.GoalStatus) (*model.Goal, error) {
	if !status.Valid() {
		return nil, errs.BadRequest("invalid goal status %q", status)
	}
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == status {
		return goal, nil
	}
	if status == model.GoalActive {
		if err := svc.checkGoalLimit(ctx, id); err != nil {
			return nil, err
		}
	}
	goal.Status = status
	goal.UpdatedAt = svc.clock.now()
	if err := svc.repos.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (svc *GoalService) Archive(ctx context.Context, id model.Identity, goalID string, archived bool) (*model.Goal, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	goal.Archived = archived
	goal.UpdatedAt = svc.clock.now()
	if err := svc.repos.Goals.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// DeleteGoal removes the goal and its action items. Completions stay as
// history of the user streak, which is recomputed from the first open
// instance removed; the goal and task streak rows are dropped.
func (svc *GoalService) DeleteGoal(ctx context.Context, id model.Identity, goalID string) error {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return err
	}
	items, err := svc.repos.ActionItems.ListActionItems(ctx, goal.UserID, goal.GoalID)
	if err != nil {
		return err
	}

	user := model.UserScope(goal.UserID)
	scopes := []model.StreakScope{user, model.GoalScope(goal.UserID, goal.GoalID)}
	for _, item := range items {
		scopes = append(scopes, model.TaskScope(item.UserID, item.GoalID, item.ActionItemID))
	}

	return svc.streaks.WithScopeLocks(ctx, scopes, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			from, err := svc.streaks.firstOpenInstance(ctx, model.ActivityFilter{UserID: goal.UserID, GoalID: goal.GoalID})
			if err != nil {
				return err
			}
			// Re-read under the locks so items created meanwhile go too.
			items, err := svc.repos.ActionItems.ListActionItems(ctx, goal.UserID, goal.GoalID)
			if err != nil {
				return err
			}
			drop := []model.StreakScope{model.GoalScope(goal.UserID, goal.GoalID)}
			for _, item := range items {
				if err := svc.repos.ActionItems.DeleteActionItem(ctx, item.ActionItemID); err != nil {
					return err
				}
				drop = append(drop, model.TaskScope(item.UserID, item.GoalID, item.ActionItemID))
			}
			if err := svc.repos.Goals.DeleteGoal(ctx, goal.GoalID); err != nil {
				return err
			}
			return svc.streaks.forgetScopes(ctx, drop, []model.StreakScope{user}, from)
		})
	})
}

// AddProgress logs progress against a goal for today or a past day and
// recomputes the user and goal streaks from that day.
func (svc *GoalService) AddProgress(ctx context.Context, id model.Identity, goalID string, entry *model.ProgressEntry) (*model.ProgressEntry, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}

	today := svc.clock.today()
	if entry.Date.IsZero() {
		entry.Date = today
	}
	entry.Date = utils.Day(entry.Date)
	if entry.Date.After(today) {
		return nil, errs.BadRequest("progress cannot be logged for a future date")
	}

	entry.EntryID = utils.NewID()
	entry.GoalID = goal.GoalID
	entry.UserID = id.UserID
	entry.CreatedAt = svc.clock.now()

	scopes := []model.StreakScope{model.UserScope(id.UserID), model.GoalScope(id.UserID, goal.GoalID)}
	err = svc.streaks.WithScopeLocks(ctx, scopes, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := svc.repos.Progress.CreateProgress(ctx, entry); err != nil {
				return err
			}
			return svc.streaks.RecomputeScopes(ctx, scopes, entry.Date)
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (svc *GoalService) ListProgress(ctx context.Context, id model.Identity, goalID string) ([]model.ProgressEntry, error) {
	goal, err := readableGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	return svc.repos.Progress.ListProgress(ctx, model.ActivityFilter{UserID: goal.UserID, GoalID: goal.GoalID})
}

func (svc *GoalService) AddMilestone(ctx context.Context, id model.Identity, goalID string, m *model.Milestone) (*model.Milestone, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return nil, errs.BadRequest("milestone title is required")
	}
	if m.TargetDate != nil {
		d := utils.Day(*m.TargetDate)
		m.TargetDate = &d
	}
	m.MilestoneID = utils.NewID()
	m.GoalID = goal.GoalID
	m.UserID = id.UserID
	m.Achieved = false
	m.AchievedAt = nil
	m.CreatedAt = svc.clock.now()
	if err := svc.repos.Milestones.CreateMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (svc *GoalService) ListMilestones(ctx context.Context, id model.Identity, goalID string) ([]model.Milestone, error) {
	if _, err := readableGoal(ctx, svc.repos, id, goalID); err != nil {
		return nil, err
	}
	return svc.repos.Milestones.ListMilestones(ctx, goalID)
}

func (svc *GoalService) AchieveMilestone(ctx context.Context, id model.Identity, milestoneID string) (*model.Milestone, error) {
	m, err := svc.repos.Milestones.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGoal(ctx, svc.repos, id, m.GoalID); err != nil {
		return nil, err
	}
	if m.Achieved {
		return m, nil
	}
	now := svc.clock.now()
	m.Achieved = true
	m.AchievedAt = &now
	if err := svc.repos.Milestones.UpdateMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (svc *GoalService) AddObstacle(ctx context.Context, id model.Identity, goalID string, o *model.ObstacleEntry) (*model.ObstacleEntry, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	o.Description = strings.TrimSpace(o.Description)
	if o.Description == "" {
		return nil, errs.BadRequest("obstacle description is required")
	}
	o.ObstacleID = utils.NewID()
	o.GoalID = goal.GoalID
	o.UserID = id.UserID
	o.CreatedAt = svc.clock.now()
	if err := svc.repos.Obstacles.CreateObstacle(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (svc *GoalService) ListObstacles(ctx context.Context, id model.Identity, goalID string) ([]model.ObstacleEntry, error) {
	if _, err := readableGoal(ctx, svc.repos, id, goalID); err != nil {
		return nil, err
	}
	return svc.repos.Obstacles.ListObstacles(ctx, goalID)
}

// Insights is a premium feature: the entitlement guard runs before the goal
// is even loaded.
func (svc *GoalService) Insights(ctx context.Context, id model.Identity, goalID string) (*model.GoalInsights, error) {
	if err := svc.subs.Require(ctx, id, Requirement{Tier: model.TierPremium, Features: []string{FeatureAIInsights}}); err != nil {
		return nil, err
	}
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}

	today := svc.clock.today()
	filter := model.ActivityFilter{UserID: goal.UserID, GoalID: goal.GoalID, To: today}

	scheduled, err := svc.repos.Scheduled.ListScheduledTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	progress, err := svc.repos.Progress.ListProgress(ctx, filter)
	if err != nil {
		return nil, err
	}
	milestones, err := svc.repos.Milestones.ListMilestones(ctx, goal.GoalID)
	if err != nil {
		return nil, err
	}
	reflections, err := svc.repos.Reflections.ListReflections(ctx, goal.GoalID)
	if err != nil {
		return nil, err
	}
	streak, err := svc.streaks.GetStreak(ctx, model.GoalScope(goal.UserID, goal.GoalID))
	if err != nil {
		return nil, err
	}

	return BuildInsights(goal, scheduled, progress, milestones, reflections, streak), nil
}

// BuildInsights summarises a goal's history.
func BuildInsights(goal *model.Goal, scheduled []model.ScheduledTask, progress []model.ProgressEntry, milestones []model.Milestone, reflections []model.GoalReflection, streak *model.StreakInfo) *model.GoalInsights {
	out := &model.GoalInsights{GoalID: goal.GoalID}

	var byWeekday [7]int
	for _, st := range scheduled {
		out.ScheduledTotal++
		if st.Completed {
			out.ScheduledCompleted++
			byWeekday[st.ScheduledDate.Weekday()]++
		}
	}
	if out.ScheduledTotal > 0 {
		out.CompletionRate = float64(out.ScheduledCompleted) / float64(out.ScheduledTotal)
	}

	best := -1
	for d, n := range byWeekday {
		if n > 0 && (best < 0 || n > byWeekday[best]) {
			best = d
		}
	}
	if best >= 0 {
		out.BestWeekday = time.Weekday(best).String()
	}

	for _, p := range progress {
		out.ProgressEntries++
		out.ProgressTotal += p.Value
	}
	for _, m := range milestones {
		out.MilestonesTotal++
		if m.Achieved {
			out.MilestonesAchieved++
		}
	}

	total := 0
	for _, r := range reflections {
		out.ReflectionsSubmitted++
		total += r.Rating
	}
	if out.ReflectionsSubmitted > 0 {
		out.AverageRating = float64(total) / float64(out.ReflectionsSubmitted)
	}

	if streak != nil {
		out.CurrentStreak = streak.CurrentMaintainedStreak
		out.BestStreak = streak.BestMaintainedStreak
	}
	return out
}
