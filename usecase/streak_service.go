package usecase

import (
	"context"
	"sort"
	"strconv"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

const NotificationStreakAtRisk = "streak_at_risk"

type StreakService struct {
	repos    Repositories
	locker   ScopeLocker
	notifier Notifier
	clock    Clock
}

func NewStreakService(repos Repositories, locker ScopeLocker, notifier Notifier, clock Clock) *StreakService {
	return &StreakService{repos: repos, locker: locker, notifier: notifier, clock: clock}
}

// GetStreak returns the counters for scope as of today, or zero counters when
// the scope has never been evaluated. Counters last evaluated on an earlier day
// are recomputed first, so idle days break the streak even without new writes.
func (svc *StreakService) GetStreak(ctx context.Context, scope model.StreakScope) (*model.StreakInfo, error) {
	info, err := svc.repos.Streaks.FindStreak(ctx, scope)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &model.StreakInfo{StreakID: scope.Key(), Scope: scope}, nil
	}
	if !svc.stale(info) {
		return info, nil
	}
	return svc.refresh(ctx, scope)
}

func (svc *StreakService) stale(info *model.StreakInfo) bool {
	return info.LastEvaluatedDate == nil || utils.Day(*info.LastEvaluatedDate).Before(svc.clock.today())
}

// refresh brings a stale scope forward to today under its lock. A writer that
// got there first leaves nothing to do.
func (svc *StreakService) refresh(ctx context.Context, scope model.StreakScope) (*model.StreakInfo, error) {
	var out *model.StreakInfo
	err := svc.WithScopeLocks(ctx, []model.StreakScope{scope}, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			info, err := svc.repos.Streaks.FindStreak(ctx, scope)
			if err != nil {
				return err
			}
			if info != nil && !svc.stale(info) {
				out = info
				return nil
			}
			from := svc.clock.today()
			if info != nil && info.LastEvaluatedDate != nil {
				from = utils.Day(*info.LastEvaluatedDate)
			}
			out, err = svc.recompute(ctx, scope, from)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (svc *StreakService) UserStreak(ctx context.Context, id model.Identity) (*model.StreakInfo, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.GetStreak(ctx, model.UserScope(id.UserID))
}

func (svc *StreakService) GoalStreak(ctx context.Context, id model.Identity, goalID string) (*model.StreakInfo, error) {
	goal, err := readableGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}
	return svc.GetStreak(ctx, model.GoalScope(goal.UserID, goal.GoalID))
}

func (svc *StreakService) TaskStreak(ctx context.Context, id model.Identity, actionItemID string) (*model.StreakInfo, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	return svc.GetStreak(ctx, model.TaskScope(item.UserID, item.GoalID, item.ActionItemID))
}

func (svc *StreakService) ListStreaks(ctx context.Context, id model.Identity) ([]model.StreakInfo, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	infos, err := svc.repos.Streaks.ListStreaks(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if !svc.stale(&infos[i]) {
			continue
		}
		fresh, err := svc.refresh(ctx, infos[i].Scope)
		if err != nil {
			return nil, err
		}
		infos[i] = *fresh
	}
	return infos, nil
}

// WithScopeLocks holds the locks of every scope while fn runs. Locks are taken
// user first, then goals, then tasks, each group in key order, so two callers
// never wait on each other in opposite orders.
func (svc *StreakService) WithScopeLocks(ctx context.Context, scopes []model.StreakScope, fn func() error) error {
	ordered := dedupeScopes(scopes)

	var unlocks []func()
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()

	for _, scope := range ordered {
		unlock, err := svc.locker.Lock(ctx, scope.Key())
		if err != nil {
			return errs.Wrap(errs.KindConflict, err, "streak is being updated, retry")
		}
		unlocks = append(unlocks, unlock)
	}
	return fn()
}

// RecomputeScopes rebuilds each scope from the given date. Callers hold the
// scope locks and run inside a transaction.
func (svc *StreakService) RecomputeScopes(ctx context.Context, scopes []model.StreakScope, from time.Time) error {
	for _, scope := range dedupeScopes(scopes) {
		if _, err := svc.recompute(ctx, scope, from); err != nil {
			return err
		}
	}
	return nil
}

// firstOpenInstance returns the earliest uncompleted scheduled date up to
// today among the instances filter selects, or the zero time.
func (svc *StreakService) firstOpenInstance(ctx context.Context, filter model.ActivityFilter) (time.Time, error) {
	filter.To = svc.clock.today()
	tasks, err := svc.repos.Scheduled.ListScheduledTasks(ctx, filter)
	if err != nil {
		return time.Time{}, err
	}
	var first time.Time
	for _, st := range tasks {
		if st.Completed {
			continue
		}
		if d := utils.Day(st.ScheduledDate); first.IsZero() || d.Before(first) {
			first = d
		}
	}
	return first, nil
}

// forgetScopes drops the streak rows of removed scopes and, when open
// instances dated from were deleted with them, recomputes the kept scopes from
// that day. Callers hold the locks of both sets and run inside a transaction.
func (svc *StreakService) forgetScopes(ctx context.Context, removed, kept []model.StreakScope, from time.Time) error {
	if err := svc.repos.Streaks.DeleteStreaks(ctx, removed); err != nil {
		return err
	}
	if from.IsZero() {
		return nil
	}
	return svc.RecomputeScopes(ctx, kept, from)
}

func (svc *StreakService) recompute(ctx context.Context, scope model.StreakScope, from time.Time) (*model.StreakInfo, error) {
	today := svc.clock.today()

	history, err := svc.history(ctx, scope, today)
	if err != nil {
		return nil, err
	}
	counters := RecomputeStreak(history, from, today)

	info, err := svc.repos.Streaks.FindStreak(ctx, scope)
	if err != nil {
		return nil, err
	}
	if info == nil {
		info = &model.StreakInfo{StreakID: scope.Key(), Scope: scope}
	}
	ApplyCounters(info, counters, today)
	info.UpdatedAt = svc.clock.now()

	if err := svc.repos.Streaks.SaveStreak(ctx, info); err != nil {
		return nil, err
	}
	utils.TrackStreakRecompute(string(scope.Kind()))
	return info, nil
}

func (svc *StreakService) history(ctx context.Context, scope model.StreakScope, today time.Time) ([]DayActivity, error) {
	filter := model.ActivityFilter{
		UserID:       scope.UserID,
		GoalID:       scope.GoalID,
		ActionItemID: scope.ActionItemID,
		To:           today,
	}

	scheduled, err := svc.repos.Scheduled.ListScheduledTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	completions, err := svc.repos.Completions.ListCompletions(ctx, filter)
	if err != nil {
		return nil, err
	}

	var progress []model.ProgressEntry
	if scope.Kind() != model.ScopeTask {
		progress, err = svc.repos.Progress.ListProgress(ctx, filter)
		if err != nil {
			return nil, err
		}
	}

	shields, err := svc.repos.Shields.ListShields(ctx, scope.UserID)
	if err != nil {
		return nil, err
	}

	return BuildHistory(scheduled, completions, progress, shields), nil
}

// ApplyShield spends one streak-shield purchase to bridge a past day without
// activity, then recomputes every streak of the user from that day.
func (svc *StreakService) ApplyShield(ctx context.Context, id model.Identity, date time.Time) (*model.StreakShield, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	day := utils.Day(date)
	if !day.Before(svc.clock.today()) {
		return nil, errs.BadRequest("a shield can only cover a past day")
	}

	scopes, err := svc.scopesForUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	var shield *model.StreakShield
	err = svc.WithScopeLocks(ctx, scopes, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			existing, err := svc.repos.Shields.FindShield(ctx, id.UserID, day)
			if err != nil {
				return err
			}
			if existing != nil {
				return errs.Duplicate("%s is already shielded", utils.FormatDate(day))
			}

			active, err := svc.hadActivity(ctx, id.UserID, day)
			if err != nil {
				return err
			}
			if active {
				return errs.BadRequest("%s already has activity", utils.FormatDate(day))
			}

			purchase, err := svc.repos.Purchases.FindUsablePurchase(ctx, id.UserID, model.ProductStreakShield)
			if err != nil {
				return err
			}
			if purchase == nil {
				return errs.UsageLimitExceeded("no streak shields remaining")
			}
			if err := svc.repos.Purchases.UsePurchase(ctx, purchase.PurchaseID); err != nil {
				return err
			}

			shield = &model.StreakShield{
				ShieldID:   utils.NewID(),
				UserID:     id.UserID,
				Date:       day,
				PurchaseID: purchase.PurchaseID,
				CreatedAt:  svc.clock.now(),
			}
			if err := svc.repos.Shields.CreateShield(ctx, shield); err != nil {
				return err
			}
			return svc.RecomputeScopes(ctx, scopes, day)
		})
	})
	if err != nil {
		return nil, err
	}

	utils.Log.WithField("user_id", id.UserID).WithField("date", utils.FormatDate(day)).Info("streak shield applied")
	return shield, nil
}

func (svc *StreakService) hadActivity(ctx context.Context, userID string, day time.Time) (bool, error) {
	filter := model.ActivityFilter{UserID: userID, From: day, To: day}
	completions, err := svc.repos.Completions.ListCompletions(ctx, filter)
	if err != nil {
		return false, err
	}
	if len(completions) > 0 {
		return true, nil
	}
	progress, err := svc.repos.Progress.ListProgress(ctx, filter)
	if err != nil {
		return false, err
	}
	return len(progress) > 0, nil
}

// scopesForUser lists the user scope plus every goal and task scope the user
// owns.
func (svc *StreakService) scopesForUser(ctx context.Context, userID string) ([]model.StreakScope, error) {
	scopes := []model.StreakScope{model.UserScope(userID)}

	goals, err := svc.repos.Goals.ListGoals(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		scopes = append(scopes, model.GoalScope(userID, g.GoalID))
	}

	items, err := svc.repos.ActionItems.ListActionItems(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		scopes = append(scopes, model.TaskScope(userID, item.GoalID, item.ActionItemID))
	}
	return scopes, nil
}

// DetectAtRisk emits a streak_at_risk notification for every user whose
// maintained streak is alive but who has no activity yet today. Stored
// counters are brought forward to today before the check. It returns the
// number of notifications sent.
func (svc *StreakService) DetectAtRisk(ctx context.Context) (int, error) {
	today := svc.clock.today()

	streaks, err := svc.repos.Streaks.ListActiveUserStreaks(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, stored := range streaks {
		if stored.Scope.Kind() != model.ScopeUser {
			continue
		}
		info := &stored
		if svc.stale(info) {
			info, err = svc.refresh(ctx, stored.Scope)
			if err != nil {
				utils.Log.WithError(err).WithField("user_id", stored.Scope.UserID).Warn("at-risk sweep: streak refresh failed")
				continue
			}
		}
		if info.CurrentMaintainedStreak == 0 {
			continue
		}
		if info.LastActivityDate != nil && !utils.Day(*info.LastActivityDate).Before(today) {
			continue
		}
		svc.notifier.Notify(ctx, model.Notification{
			Type:   NotificationStreakAtRisk,
			UserID: info.Scope.UserID,
			Data: map[string]string{
				"current_streak": strconv.Itoa(info.CurrentMaintainedStreak),
				"date":           utils.FormatDate(today),
			},
			CreatedAt: svc.clock.now(),
		})
		sent++
	}

	utils.Log.WithField("notified", sent).Info("streak at-risk sweep finished")
	return sent, nil
}

func scopeRank(k model.ScopeKind) int {
	switch k {
	case model.ScopeUser:
		return 0
	case model.ScopeGoal:
		return 1
	default:
		return 2
	}
}

func dedupeScopes(scopes []model.StreakScope) []model.StreakScope {
	seen := make(map[string]bool, len(scopes))
	out := make([]model.StreakScope, 0, len(scopes))
	for _, sc := range scopes {
		if seen[sc.Key()] {
			continue
		}
		seen[sc.Key()] = true
		out = append(out, sc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := scopeRank(out[i].Kind()), scopeRank(out[j].Kind())
		if ri != rj {
			return ri < rj
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

func completionScopes(item *model.ActionItem) []model.StreakScope {
	return []model.StreakScope{
		model.UserScope(item.UserID),
		model.GoalScope(item.UserID, item.GoalID),
		model.TaskScope(item.UserID, item.GoalID, item.ActionItemID),
	}
}
