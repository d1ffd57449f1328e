package usecase

import (
	"context"
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

type TaskService struct {
	repos   Repositories
	streaks *StreakService
	clock   Clock
}

func NewTaskService(repos Repositories, streaks *StreakService, clock Clock) *TaskService {
	return &TaskService{repos: repos, streaks: streaks, clock: clock}
}

// CreateActionItem validates the recurrence rule and attaches the item to an owned goal.
func (svc *TaskService) CreateActionItem(ctx context.Context, id model.Identity, goalID string, item *model.ActionItem) (*model.ActionItem, error) {
	goal, err := ownedGoal(ctx, svc.repos, id, goalID)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, errs.BadRequest("action item title is required")
	}
	if item.TaskType == "" {
		item.TaskType = model.TaskOneTime
	}
	if item.AnchorDate.IsZero() {
		item.AnchorDate = svc.clock.today()
	}
	item.AnchorDate = utils.Day(item.AnchorDate)
	if item.Recurrence != nil && item.Recurrence.Interval == 0 {
		item.Recurrence.Interval = 1
	}
	if item.Reminder != nil && item.Reminder.Enabled && !utils.ValidTimeOfDay(item.Reminder.TimeOfDay) {
		return nil, errs.BadRequest("reminder time must be HH:MM")
	}
	if err := ValidateSchedule(item); err != nil {
		return nil, err
	}

	now := svc.clock.now()
	item.ActionItemID = utils.NewID()
	item.GoalID = goal.GoalID
	item.UserID = id.UserID
	item.Completed = false
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := svc.repos.ActionItems.CreateActionItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (svc *TaskService) GetActionItem(ctx context.Context, id model.Identity, actionItemID string) (*model.ActionItem, error) {
	return ownedActionItem(ctx, svc.repos, id, actionItemID)
}

// ListActionItems lists the caller's items, optionally for one goal.
func (svc *TaskService) ListActionItems(ctx context.Context, id model.Identity, goalID string) ([]model.ActionItem, error) {
	if goalID != "" {
		if _, err := readableGoal(ctx, svc.repos, id, goalID); err != nil {
			return nil, err
		}
	} else if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return svc.repos.ActionItems.ListActionItems(ctx, id.UserID, goalID)
}

// DeleteActionItem removes the item with its open instances and slots. Losing
// open instances changes what was expected on those days, so the goal and user
// streaks are recomputed and the task streak row is dropped.
func (svc *TaskService) DeleteActionItem(ctx context.Context, id model.Identity, actionItemID string) error {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return err
	}

	scopes := completionScopes(item)
	return svc.streaks.WithScopeLocks(ctx, scopes, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			from, err := svc.streaks.firstOpenInstance(ctx, model.ActivityFilter{UserID: item.UserID, ActionItemID: item.ActionItemID})
			if err != nil {
				return err
			}
			if err := svc.repos.ActionItems.DeleteActionItem(ctx, item.ActionItemID); err != nil {
				return err
			}
			return svc.streaks.forgetScopes(ctx, scopes[2:], scopes[:2], from)
		})
	})
}

// GenerateSchedule materialises ScheduledTasks for [from, to]. Dates that
// already have a ScheduledTask are skipped, so running it twice over the same
// range inserts nothing the second time.
func (svc *TaskService) GenerateSchedule(ctx context.Context, id model.Identity, actionItemID string, from, to time.Time) ([]model.ScheduledTask, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	from, to = utils.Day(from), utils.Day(to)
	if to.Before(from) {
		return nil, errs.BadRequest("range end is before range start")
	}
	if utils.DaysBetween(from, to) >= maxScheduleRangeDays {
		return nil, errs.BadRequest("schedule range cannot exceed %d days", maxScheduleRangeDays)
	}

	dates, err := ScheduleDates(item, from, to)
	if err != nil {
		return nil, err
	}

	var created []model.ScheduledTask
	err = svc.streaks.WithScopeLocks(ctx, completionScopes(item), func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			existing, err := svc.repos.Scheduled.ListScheduledTasks(ctx, model.ActivityFilter{
				UserID:       item.UserID,
				ActionItemID: item.ActionItemID,
				From:         from,
				To:           to,
			})
			if err != nil {
				return err
			}
			have := make(map[time.Time]bool, len(existing))
			for _, st := range existing {
				have[utils.Day(st.ScheduledDate)] = true
			}

			created = created[:0]
			for _, d := range dates {
				if have[d] {
					continue
				}
				created = append(created, model.ScheduledTask{
					ScheduledTaskID: utils.NewID(),
					ActionItemID:    item.ActionItemID,
					GoalID:          item.GoalID,
					UserID:          item.UserID,
					ScheduledDate:   d,
				})
			}
			if len(created) == 0 {
				return nil
			}
			if err := svc.repos.Scheduled.InsertScheduledTasks(ctx, created); err != nil {
				return err
			}

			// New expectations in the past change perfect streaks.
			if created[0].ScheduledDate.After(svc.clock.today()) {
				return nil
			}
			return svc.streaks.RecomputeScopes(ctx, completionScopes(item), created[0].ScheduledDate)
		})
	})
	if err != nil {
		return nil, err
	}

	utils.Log.WithField("action_item_id", item.ActionItemID).WithField("created", len(created)).Debug("schedule generated")
	return created, nil
}

// ListScheduled returns the caller's ScheduledTasks in [from, to].
func (svc *TaskService) ListScheduled(ctx context.Context, id model.Identity, goalID string, from, to time.Time) ([]model.ScheduledTask, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, errs.BadRequest("range end is before range start")
	}
	filter := model.ActivityFilter{UserID: id.UserID, GoalID: goalID}
	if !from.IsZero() {
		filter.From = utils.Day(from)
	}
	if !to.IsZero() {
		filter.To = utils.Day(to)
	}
	return svc.repos.Scheduled.ListScheduledTasks(ctx, filter)
}

// CompleteTask records a completion for today or a past day. The scheduled
// instance for that day is marked done and the task, goal and user streaks
// are recomputed from that day, all under the scope locks in one transaction.
func (svc *TaskService) CompleteTask(ctx context.Context, id model.Identity, actionItemID string, date time.Time, note string) (*model.TaskCompletion, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}

	today := svc.clock.today()
	if date.IsZero() {
		date = today
	}
	day := utils.Day(date)
	if day.After(today) {
		return nil, errs.BadRequest("cannot complete a task for a future date")
	}
	if day.Before(item.AnchorDate) {
		return nil, errs.BadRequest("cannot complete a task before its start date")
	}

	completion := &model.TaskCompletion{
		CompletionID: utils.NewID(),
		ActionItemID: item.ActionItemID,
		GoalID:       item.GoalID,
		UserID:       item.UserID,
		Date:         day,
		Note:         strings.TrimSpace(note),
		CreatedAt:    svc.clock.now(),
	}

	scopes := completionScopes(item)
	err = svc.streaks.WithScopeLocks(ctx, scopes, func() error {
		return svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			existing, err := svc.repos.Completions.FindCompletion(ctx, item.ActionItemID, day)
			if err != nil {
				return err
			}
			if existing != nil {
				return errs.Duplicate("task already completed on %s", utils.FormatDate(day))
			}
			if err := svc.repos.Completions.CreateCompletion(ctx, completion); err != nil {
				return err
			}

			scheduled, err := svc.repos.Scheduled.FindScheduledTask(ctx, item.ActionItemID, day)
			if err != nil {
				return err
			}
			if scheduled != nil && !scheduled.Completed {
				if err := svc.repos.Scheduled.MarkScheduledTaskCompleted(ctx, scheduled.ScheduledTaskID, completion.CreatedAt); err != nil {
					return err
				}
			}

			if item.TaskType == model.TaskOneTime && !item.Completed {
				item.Completed = true
				item.UpdatedAt = completion.CreatedAt
				if err := svc.repos.ActionItems.UpdateActionItem(ctx, item); err != nil {
					return err
				}
			}

			return svc.streaks.RecomputeScopes(ctx, scopes, day)
		})
	})
	if err != nil {
		return nil, err
	}

	utils.Log.WithFields(map[string]interface{}{
		"user_id":        item.UserID,
		"action_item_id": item.ActionItemID,
		"date":           utils.FormatDate(day),
	}).Info("task completed")
	return completion, nil
}

func (svc *TaskService) ListCompletions(ctx context.Context, id model.Identity, actionItemID string) ([]model.TaskCompletion, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	return svc.repos.Completions.ListCompletions(ctx, model.ActivityFilter{UserID: item.UserID, ActionItemID: item.ActionItemID})
}
