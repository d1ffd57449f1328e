package model

import "time"

type TaskType string

const (
	TaskOneTime   TaskType = "ONE_TIME"
	TaskRecurring TaskType = "RECURRING"
	TaskFrequency TaskType = "FREQUENCY"
)

type RecurrenceFrequency string

const (
	RecurrenceDaily   RecurrenceFrequency = "DAILY"
	RecurrenceWeekly  RecurrenceFrequency = "WEEKLY"
	RecurrenceMonthly RecurrenceFrequency = "MONTHLY"
)

type FrequencyPeriod string

const (
	PeriodWeek  FrequencyPeriod = "WEEK"
	PeriodMonth FrequencyPeriod = "MONTH"
)

// WeekdaySet is a bit set of weekdays, bit i set for time.Weekday(i).
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

type Recurrence struct {
	Enabled    bool                `bson:"enabled" json:"enabled"`
	Frequency  RecurrenceFrequency `bson:"frequency" json:"frequency"`
	Interval   int                 `bson:"interval" json:"interval"`
	DaysOfWeek WeekdaySet          `bson:"days_of_week,omitempty" json:"days_of_week,omitempty"`
	EndDate    *time.Time          `bson:"end_date,omitempty" json:"end_date,omitempty"`
}

type FrequencyGoal struct {
	Enabled   bool            `bson:"enabled" json:"enabled"`
	Count     int             `bson:"count" json:"count"`
	Period    FrequencyPeriod `bson:"period" json:"period"`
	FixedDays WeekdaySet      `bson:"fixed_days,omitempty" json:"fixed_days,omitempty"`
}

type ReminderOverride struct {
	Enabled   bool   `bson:"enabled" json:"enabled"`
	TimeOfDay string `bson:"time_of_day,omitempty" json:"time_of_day,omitempty"`
	LeadMins  int    `bson:"lead_minutes,omitempty" json:"lead_minutes,omitempty"`
}

type ActionItem struct {
	ActionItemID  string            `bson:"_id" json:"id"`
	GoalID        string            `bson:"goal_id" json:"goal_id"`
	UserID        string            `bson:"user_id" json:"user_id"`
	Title         string            `bson:"title" json:"title"`
	TaskType      TaskType          `bson:"task_type" json:"task_type"`
	AnchorDate    time.Time         `bson:"anchor_date" json:"anchor_date"`
	Recurrence    *Recurrence       `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	FrequencyGoal *FrequencyGoal    `bson:"frequency_goal,omitempty" json:"frequency_goal,omitempty"`
	Reminder      *ReminderOverride `bson:"reminder,omitempty" json:"reminder,omitempty"`
	Completed     bool              `bson:"completed" json:"completed"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`
}

type ScheduledTask struct {
	ScheduledTaskID string     `bson:"_id" json:"id"`
	ActionItemID    string     `bson:"action_item_id" json:"action_item_id"`
	GoalID          string     `bson:"goal_id" json:"goal_id"`
	UserID          string     `bson:"user_id" json:"user_id"`
	ScheduledDate   time.Time  `bson:"scheduled_date" json:"scheduled_date"`
	Completed       bool       `bson:"completed" json:"completed"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// TaskCompletion is immutable once written.
type TaskCompletion struct {
	CompletionID string    `bson:"_id" json:"id"`
	ActionItemID string    `bson:"action_item_id" json:"action_item_id"`
	GoalID       string    `bson:"goal_id" json:"goal_id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Date         time.Time `bson:"date" json:"date"`
	Note         string    `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

type TaskScheduleSlot struct {
	SlotID                string     `bson:"_id" json:"id"`
	ActionItemID          string     `bson:"action_item_id" json:"action_item_id"`
	UserID                string     `bson:"user_id" json:"user_id"`
	SlotIndex             int        `bson:"slot_index" json:"slot_index"`
	TimeOfDay             string     `bson:"time_of_day" json:"time_of_day"`
	EffectiveFrom         time.Time  `bson:"effective_from" json:"effective_from"`
	EffectiveUntil        *time.Time `bson:"effective_until,omitempty" json:"effective_until,omitempty"`
	RescheduledFromSlotID string     `bson:"rescheduled_from_slot_id,omitempty" json:"rescheduled_from_slot_id,omitempty"`
	RescheduleReason      string     `bson:"reschedule_reason,omitempty" json:"reschedule_reason,omitempty"`
	CreatedAt             time.Time  `bson:"created_at" json:"created_at"`
}

// ActiveOn reports whether date falls inside [EffectiveFrom, EffectiveUntil];
// a nil EffectiveUntil is open-ended.
func (s *TaskScheduleSlot) ActiveOn(date time.Time) bool {
	if date.Before(s.EffectiveFrom) {
		return false
	}
	return s.EffectiveUntil == nil || !date.After(*s.EffectiveUntil)
}
