package dto

import (
	"time"

	"goaltracker/model"
	"goaltracker/utils"
)

type RecurrenceRequest struct {
	Frequency  model.RecurrenceFrequency `json:"frequency" binding:"required"`
	Interval   int                       `json:"interval" binding:"min=0"`
	DaysOfWeek []string                  `json:"days_of_week"`
	EndDate    string                    `json:"end_date" binding:"omitempty,isodate"`
}

type FrequencyGoalRequest struct {
	Count     int                   `json:"count" binding:"required,min=1"`
	Period    model.FrequencyPeriod `json:"period" binding:"required"`
	FixedDays []string              `json:"fixed_days"`
}

type ReminderRequest struct {
	Enabled     bool   `json:"enabled"`
	TimeOfDay   string `json:"time_of_day" binding:"omitempty,hhmm"`
	LeadMinutes int    `json:"lead_minutes" binding:"min=0,max=1440"`
}

type CreateActionItemRequest struct {
	Title         string                `json:"title" binding:"required,max=200"`
	TaskType      model.TaskType        `json:"task_type"`
	AnchorDate    string                `json:"anchor_date" binding:"omitempty,isodate"`
	Recurrence    *RecurrenceRequest    `json:"recurrence"`
	FrequencyGoal *FrequencyGoalRequest `json:"frequency_goal"`
	Reminder      *ReminderRequest      `json:"reminder"`
}

func (r CreateActionItemRequest) ToModel() (*model.ActionItem, error) {
	anchor, err := ParseOptionalDate("anchor_date", r.AnchorDate)
	if err != nil {
		return nil, err
	}
	item := &model.ActionItem{
		Title:      r.Title,
		TaskType:   r.TaskType,
		AnchorDate: anchor,
	}

	if r.Recurrence != nil {
		days, err := ParseWeekdays(r.Recurrence.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		end, err := parseOptionalDatePtr("recurrence.end_date", &r.Recurrence.EndDate)
		if err != nil {
			return nil, err
		}
		item.Recurrence = &model.Recurrence{
			Enabled:    true,
			Frequency:  r.Recurrence.Frequency,
			Interval:   r.Recurrence.Interval,
			DaysOfWeek: days,
			EndDate:    end,
		}
	}

	if r.FrequencyGoal != nil {
		days, err := ParseWeekdays(r.FrequencyGoal.FixedDays)
		if err != nil {
			return nil, err
		}
		item.FrequencyGoal = &model.FrequencyGoal{
			Enabled:   true,
			Count:     r.FrequencyGoal.Count,
			Period:    r.FrequencyGoal.Period,
			FixedDays: days,
		}
	}

	if r.Reminder != nil {
		item.Reminder = &model.ReminderOverride{
			Enabled:   r.Reminder.Enabled,
			TimeOfDay: r.Reminder.TimeOfDay,
			LeadMins:  r.Reminder.LeadMinutes,
		}
	}
	return item, nil
}

type RecurrenceResponse struct {
	Frequency  model.RecurrenceFrequency `json:"frequency"`
	Interval   int                       `json:"interval"`
	DaysOfWeek []string                  `json:"days_of_week,omitempty"`
	EndDate    string                    `json:"end_date,omitempty"`
}

type FrequencyGoalResponse struct {
	Count     int                   `json:"count"`
	Period    model.FrequencyPeriod `json:"period"`
	FixedDays []string              `json:"fixed_days,omitempty"`
}

type ActionItemResponse struct {
	ID            string                  `json:"id"`
	GoalID        string                  `json:"goal_id"`
	Title         string                  `json:"title"`
	TaskType      model.TaskType          `json:"task_type"`
	AnchorDate    string                  `json:"anchor_date"`
	Recurrence    *RecurrenceResponse     `json:"recurrence,omitempty"`
	FrequencyGoal *FrequencyGoalResponse  `json:"frequency_goal,omitempty"`
	Reminder      *model.ReminderOverride `json:"reminder,omitempty"`
	Completed     bool                    `json:"completed"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func ToActionItemResponse(item *model.ActionItem) ActionItemResponse {
	resp := ActionItemResponse{
		ID:         item.ActionItemID,
		GoalID:     item.GoalID,
		Title:      item.Title,
		TaskType:   item.TaskType,
		AnchorDate: utils.FormatDate(item.AnchorDate),
		Reminder:   item.Reminder,
		Completed:  item.Completed,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if r := item.Recurrence; r != nil && r.Enabled {
		resp.Recurrence = &RecurrenceResponse{
			Frequency:  r.Frequency,
			Interval:   r.Interval,
			DaysOfWeek: WeekdayNames(r.DaysOfWeek),
			EndDate:    formatDatePtr(r.EndDate),
		}
	}
	if fg := item.FrequencyGoal; fg != nil && fg.Enabled {
		resp.FrequencyGoal = &FrequencyGoalResponse{
			Count:     fg.Count,
			Period:    fg.Period,
			FixedDays: WeekdayNames(fg.FixedDays),
		}
	}
	return resp
}

func ToActionItemResponses(items []model.ActionItem) []ActionItemResponse {
	out := make([]ActionItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToActionItemResponse(&items[i]))
	}
	return out
}

type ScheduleRequest struct {
	From string `json:"from" binding:"required,isodate"`
	To   string `json:"to" binding:"required,isodate"`
}

type CompleteTaskRequest struct {
	Date string `json:"date" binding:"omitempty,isodate"`
	Note string `json:"note" binding:"max=1000"`
}

type CreateSlotRequest struct {
	SlotIndex     int    `json:"slot_index" binding:"min=0"`
	TimeOfDay     string `json:"time_of_day" binding:"required,hhmm"`
	EffectiveFrom string `json:"effective_from" binding:"omitempty,isodate"`
}

type RescheduleRequest struct {
	SlotIndex     int    `json:"slot_index" binding:"min=0"`
	TimeOfDay     string `json:"time_of_day" binding:"required,hhmm"`
	EffectiveDate string `json:"effective_date" binding:"omitempty,isodate"`
	Reason        string `json:"reason" binding:"max=500"`
}

type ScheduledTaskResponse struct {
	ID            string     `json:"id"`
	ActionItemID  string     `json:"action_item_id"`
	GoalID        string     `json:"goal_id"`
	ScheduledDate string     `json:"scheduled_date"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func ToScheduledTaskResponses(tasks []model.ScheduledTask) []ScheduledTaskResponse {
	out := make([]ScheduledTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ScheduledTaskResponse{
			ID:            t.ScheduledTaskID,
			ActionItemID:  t.ActionItemID,
			GoalID:        t.GoalID,
			ScheduledDate: utils.FormatDate(t.ScheduledDate),
			Completed:     t.Completed,
			CompletedAt:   t.CompletedAt,
		})
	}
	return out
}

type SlotResponse struct {
	ID                    string    `json:"id"`
	ActionItemID          string    `json:"action_item_id"`
	SlotIndex             int       `json:"slot_index"`
	TimeOfDay             string    `json:"time_of_day"`
	EffectiveFrom         string    `json:"effective_from"`
	EffectiveUntil        string    `json:"effective_until,omitempty"`
	RescheduledFromSlotID string    `json:"rescheduled_from_slot_id,omitempty"`
	RescheduleReason      string    `json:"reschedule_reason,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func ToSlotResponse(s *model.TaskScheduleSlot) SlotResponse {
	return SlotResponse{
		ID:                    s.SlotID,
		ActionItemID:          s.ActionItemID,
		SlotIndex:             s.SlotIndex,
		TimeOfDay:             s.TimeOfDay,
		EffectiveFrom:         utils.FormatDate(s.EffectiveFrom),
		EffectiveUntil:        formatDatePtr(s.EffectiveUntil),
		RescheduledFromSlotID: s.RescheduledFromSlotID,
		RescheduleReason:      s.RescheduleReason,
		CreatedAt:             s.CreatedAt,
	}
}

func ToSlotResponses(slots []model.TaskScheduleSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for i := range slots {
		out = append(out, ToSlotResponse(&slots[i]))
	}
	return out
}
