package usecase

import (
	"context"
	"time"

	"goaltracker/model"
	"goaltracker/utils"
)

// Lookups by id return an errs NotFound error when the document is missing.
// Find* methods return nil, nil instead.

type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

type GoalStore interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, goalID string) (*model.Goal, error)
	ListGoals(ctx context.Context, userID string, includeArchived bool) ([]model.Goal, error)
	CountActiveGoals(ctx context.Context, userID string) (int, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, goalID string) error
}

type ProgressStore interface {
	CreateProgress(ctx context.Context, entry *model.ProgressEntry) error
	ListProgress(ctx context.Context, filter model.ActivityFilter) ([]model.ProgressEntry, error)
}

type MilestoneStore interface {
	CreateMilestone(ctx context.Context, m *model.Milestone) error
	GetMilestone(ctx context.Context, milestoneID string) (*model.Milestone, error)
	ListMilestones(ctx context.Context, goalID string) ([]model.Milestone, error)
	UpdateMilestone(ctx context.Context, m *model.Milestone) error
}

type ObstacleStore interface {
	CreateObstacle(ctx context.Context, o *model.ObstacleEntry) error
	ListObstacles(ctx context.Context, goalID string) ([]model.ObstacleEntry, error)
}

type ActionItemStore interface {
	CreateActionItem(ctx context.Context, item *model.ActionItem) error
	GetActionItem(ctx context.Context, actionItemID string) (*model.ActionItem, error)
	ListActionItems(ctx context.Context, userID, goalID string) ([]model.ActionItem, error)
	UpdateActionItem(ctx context.Context, item *model.ActionItem) error
	DeleteActionItem(ctx context.Context, actionItemID string) error
}

type ScheduledTaskStore interface {
	InsertScheduledTasks(ctx context.Context, tasks []model.ScheduledTask) error
	ListScheduledTasks(ctx context.Context, filter model.ActivityFilter) ([]model.ScheduledTask, error)
	FindScheduledTask(ctx context.Context, actionItemID string, date time.Time) (*model.ScheduledTask, error)
	MarkScheduledTaskCompleted(ctx context.Context, scheduledTaskID string, at time.Time) error
}

type CompletionStore interface {
	CreateCompletion(ctx context.Context, c *model.TaskCompletion) error
	FindCompletion(ctx context.Context, actionItemID string, date time.Time) (*model.TaskCompletion, error)
	ListCompletions(ctx context.Context, filter model.ActivityFilter) ([]model.TaskCompletion, error)
}

type SlotStore interface {
	CreateSlot(ctx context.Context, slot *model.TaskScheduleSlot) error
	GetSlot(ctx context.Context, slotID string) (*model.TaskScheduleSlot, error)
	ListSlots(ctx context.Context, actionItemID string) ([]model.TaskScheduleSlot, error)
	// CloseSlot sets EffectiveUntil on a slot that is still open-ended and
	// returns a Conflict error if it has been closed in the meantime.
	CloseSlot(ctx context.Context, slotID string, until time.Time) error
}

type StreakStore interface {
	FindStreak(ctx context.Context, scope model.StreakScope) (*model.StreakInfo, error)
	// SaveStreak inserts a new row when Version is zero, otherwise updates the
	// row only if its stored version still equals Version. Either way the
	// version is incremented; a lost race is a Conflict error.
	SaveStreak(ctx context.Context, info *model.StreakInfo) error
	ListStreaks(ctx context.Context, userID string) ([]model.StreakInfo, error)
	ListActiveUserStreaks(ctx context.Context) ([]model.StreakInfo, error)
	DeleteStreaks(ctx context.Context, scopes []model.StreakScope) error
}

type ShieldStore interface {
	CreateShield(ctx context.Context, s *model.StreakShield) error
	FindShield(ctx context.Context, userID string, date time.Time) (*model.StreakShield, error)
	ListShields(ctx context.Context, userID string) ([]model.StreakShield, error)
}

type ReflectionStore interface {
	CreateReflection(ctx context.Context, r *model.GoalReflection) error
	ListReflections(ctx context.Context, goalID string) ([]model.GoalReflection, error)
}

type JournalStore interface {
	CreateJournalEntry(ctx context.Context, e *model.JournalEntry) error
	ListJournalEntries(ctx context.Context, userID string, from, to time.Time) ([]model.JournalEntry, error)
}

type GuardianStore interface {
	CreateGuardian(ctx context.Context, g *model.Guardian) error
	GetGuardian(ctx context.Context, guardianID string) (*model.Guardian, error)
	UpdateGuardian(ctx context.Context, g *model.Guardian) error
	FindGuardian(ctx context.Context, goalID, guardianUserID string) (*model.Guardian, error)
	ListGuardians(ctx context.Context, userID string) ([]model.Guardian, error)
}

type NudgeStore interface {
	CreateNudge(ctx context.Context, n *model.Nudge) error
	ListNudges(ctx context.Context, toUserID string) ([]model.Nudge, error)
}

type SubscriptionStore interface {
	FindSubscription(ctx context.Context, userID string) (*model.UserSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.UserSubscription) error
}

type PurchaseStore interface {
	CreatePurchase(ctx context.Context, p *model.UserPurchase) error
	ListPurchases(ctx context.Context, userID string) ([]model.UserPurchase, error)
	FindUsablePurchase(ctx context.Context, userID string, product model.ProductType) (*model.UserPurchase, error)
	// UsePurchase decrements QuantityRemaining by one. It returns a
	// UsageLimitExceeded error, and changes nothing, when none remain.
	UsePurchase(ctx context.Context, purchaseID string) error
}

// Repositories bundles every store the services need.
type Repositories struct {
	Tx            TxRunner
	Users         UserStore
	Goals         GoalStore
	Progress      ProgressStore
	Milestones    MilestoneStore
	Obstacles     ObstacleStore
	ActionItems   ActionItemStore
	Scheduled     ScheduledTaskStore
	Completions   CompletionStore
	Slots         SlotStore
	Streaks       StreakStore
	Shields       ShieldStore
	Reflections   ReflectionStore
	Journal       JournalStore
	Guardians     GuardianStore
	Nudges        NudgeStore
	Subscriptions SubscriptionStore
	Purchases     PurchaseStore
}

// ScopeLocker serializes work on one streak scope.
type ScopeLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Notifier hands events to notification dispatch; it never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event model.Notification)
}


// Clock supplies the current time and the calendar used to decide "today".
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Clock) today() time.Time {
	return utils.Today(c.now(), c.Location)
}
