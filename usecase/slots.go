package usecase

import (
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

// SlotChange describes a reschedule request for an existing slot.
type SlotChange struct {
	SlotIndex     int
	TimeOfDay     string
	EffectiveDate time.Time
	Reason        string
}

// ResolveSlot returns the slot active on date. When more than one slot claims
// the date the most recently created one wins.
func ResolveSlot(slots []model.TaskScheduleSlot, date time.Time) (*model.TaskScheduleSlot, bool) {
	date = utils.Day(date)

	var best *model.TaskScheduleSlot
	for i := range slots {
		s := &slots[i]
		if !s.ActiveOn(date) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, false
	}
	out := *best
	return &out, true
}

// PlanReschedule closes current on the day before the change takes effect and
// builds its successor. The caller persists both in one transaction; the old
// slot is never edited beyond its EffectiveUntil, so the chain can still answer
// which slot applied on any past date.
func PlanReschedule(current model.TaskScheduleSlot, change SlotChange, now time.Time) (closed, next model.TaskScheduleSlot, err error) {
	effective := utils.Day(change.EffectiveDate)

	if current.EffectiveUntil != nil {
		return closed, next, errs.Conflict("slot %s was already rescheduled", current.SlotID)
	}
	if effective.Before(current.EffectiveFrom) {
		return closed, next, errs.BadRequest("reschedule cannot take effect before the slot starts")
	}
	if change.SlotIndex < 0 {
		return closed, next, errs.BadRequest("slot index cannot be negative")
	}
	if !utils.ValidTimeOfDay(change.TimeOfDay) {
		return closed, next, errs.BadRequest("time of day must be HH:MM")
	}
	if change.SlotIndex == current.SlotIndex && change.TimeOfDay == current.TimeOfDay {
		return closed, next, errs.BadRequest("reschedule does not change the slot")
	}

	until := effective.AddDate(0, 0, -1)
	closed = current
	closed.EffectiveUntil = &until

	next = model.TaskScheduleSlot{
		SlotID:                utils.NewID(),
		ActionItemID:          current.ActionItemID,
		UserID:                current.UserID,
		SlotIndex:             change.SlotIndex,
		TimeOfDay:             change.TimeOfDay,
		EffectiveFrom:         effective,
		RescheduledFromSlotID: current.SlotID,
		RescheduleReason:      strings.TrimSpace(change.Reason),
		CreatedAt:             now,
	}
	return closed, next, nil
}
