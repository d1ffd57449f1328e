package usecase

import (
	"context"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

type SlotService struct {
	repos Repositories
	clock Clock
}

func NewSlotService(repos Repositories, clock Clock) *SlotService {
	return &SlotService{repos: repos, clock: clock}
}

// CreateSlot adds the first slot of an action item. Later changes go through
// Reschedule so the chain stays intact.
func (svc *SlotService) CreateSlot(ctx context.Context, id model.Identity, actionItemID string, slotIndex int, timeOfDay string, effectiveFrom time.Time) (*model.TaskScheduleSlot, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	if slotIndex < 0 {
		return nil, errs.BadRequest("slot index cannot be negative")
	}
	if !utils.ValidTimeOfDay(timeOfDay) {
		return nil, errs.BadRequest("time of day must be HH:MM")
	}
	if effectiveFrom.IsZero() {
		effectiveFrom = item.AnchorDate
	}

	slot := &model.TaskScheduleSlot{
		SlotID:        utils.NewID(),
		ActionItemID:  item.ActionItemID,
		UserID:        item.UserID,
		SlotIndex:     slotIndex,
		TimeOfDay:     timeOfDay,
		EffectiveFrom: utils.Day(effectiveFrom),
		CreatedAt:     svc.clock.now(),
	}

	err = svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := svc.repos.Slots.ListSlots(ctx, item.ActionItemID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errs.Duplicate("action item %s already has a slot; reschedule it instead", item.ActionItemID)
		}
		return svc.repos.Slots.CreateSlot(ctx, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// ActiveSlot resolves which slot applies on date.
func (svc *SlotService) ActiveSlot(ctx context.Context, id model.Identity, actionItemID string, date time.Time) (*model.TaskScheduleSlot, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = svc.clock.today()
	}
	slots, err := svc.repos.Slots.ListSlots(ctx, item.ActionItemID)
	if err != nil {
		return nil, err
	}
	slot, ok := ResolveSlot(slots, date)
	if !ok {
		return nil, errs.NotFound("slot for "+utils.FormatDate(date), "")
	}
	return slot, nil
}

// Reschedule closes slotID on the day before change.EffectiveDate and opens
// its successor. Both writes commit together or not at all.
func (svc *SlotService) Reschedule(ctx context.Context, id model.Identity, slotID string, change SlotChange) (*model.TaskScheduleSlot, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if change.EffectiveDate.IsZero() {
		change.EffectiveDate = svc.clock.today()
	}

	var next model.TaskScheduleSlot
	err := svc.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := svc.repos.Slots.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if current.UserID != id.UserID {
			return errs.NotFound("slot", slotID)
		}

		closed, n, err := PlanReschedule(*current, change, svc.clock.now())
		if err != nil {
			return err
		}
		if err := svc.repos.Slots.CloseSlot(ctx, closed.SlotID, *closed.EffectiveUntil); err != nil {
			return err
		}
		if err := svc.repos.Slots.CreateSlot(ctx, &n); err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log.WithField("slot_id", slotID).WithField("next_slot_id", next.SlotID).Info("slot rescheduled")
	return &next, nil
}

// ListSlots returns the whole reschedule chain of an action item.
func (svc *SlotService) ListSlots(ctx context.Context, id model.Identity, actionItemID string) ([]model.TaskScheduleSlot, error) {
	item, err := ownedActionItem(ctx, svc.repos, id, actionItemID)
	if err != nil {
		return nil, err
	}
	return svc.repos.Slots.ListSlots(ctx, item.ActionItemID)
}
