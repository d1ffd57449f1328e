package usecase

import (
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

const (
	maxRecurrenceInterval = 365
	maxScheduleRangeDays  = 366
)

// ValidateSchedule checks that an action item's task type and its embedded
// recurrence or frequency-goal configuration are usable for date generation.
func ValidateSchedule(item *model.ActionItem) error {
	if item.AnchorDate.IsZero() {
		return errs.BadRequest("anchor date is required")
	}

	switch item.TaskType {
	case model.TaskOneTime:
		return nil

	case model.TaskRecurring:
		r := item.Recurrence
		if r == nil || !r.Enabled {
			return errs.BadRequest("recurring task requires an enabled recurrence")
		}
		switch r.Frequency {
		case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly:
		default:
			return errs.BadRequest("invalid recurrence frequency %q", r.Frequency)
		}
		if r.Interval < 1 || r.Interval > maxRecurrenceInterval {
			return errs.BadRequest("recurrence interval must be between 1 and %d", maxRecurrenceInterval)
		}
		if r.EndDate != nil && utils.Day(*r.EndDate).Before(utils.Day(item.AnchorDate)) {
			return errs.BadRequest("recurrence end date cannot be before the anchor date")
		}
		return nil

	case model.TaskFrequency:
		fg := item.FrequencyGoal
		if fg == nil || !fg.Enabled {
			return errs.BadRequest("frequency task requires an enabled frequency goal")
		}
		limit := 0
		switch fg.Period {
		case model.PeriodWeek:
			limit = 7
		case model.PeriodMonth:
			limit = 28
		default:
			return errs.BadRequest("invalid frequency period %q", fg.Period)
		}
		if fg.Count < 1 || fg.Count > limit {
			return errs.BadRequest("frequency count must be between 1 and %d per %s", limit, fg.Period)
		}
		return nil
	}

	return errs.BadRequest("invalid task type %q", item.TaskType)
}

// ScheduleDates returns, in ascending order, the dates within [from, to] on
// which item should have a ScheduledTask. Nothing before the item's anchor date
// or after its recurrence end date is produced. The result depends only on the
// inputs, so repeated calls yield the same set.
func ScheduleDates(item *model.ActionItem, from, to time.Time) ([]time.Time, error) {
	if err := ValidateSchedule(item); err != nil {
		return nil, err
	}

	anchor := utils.Day(item.AnchorDate)
	from, to = utils.Day(from), utils.Day(to)
	if to.Before(from) {
		return nil, errs.BadRequest("range end is before range start")
	}

	start := from
	if start.Before(anchor) {
		start = anchor
	}
	end := to

	switch item.TaskType {
	case model.TaskOneTime:
		if !anchor.Before(from) && !anchor.After(to) {
			return []time.Time{anchor}, nil
		}
		return nil, nil

	case model.TaskRecurring:
		r := item.Recurrence
		if r.EndDate != nil && utils.Day(*r.EndDate).Before(end) {
			end = utils.Day(*r.EndDate)
		}
		if end.Before(start) {
			return nil, nil
		}
		switch r.Frequency {
		case model.RecurrenceDaily:
			return dailyDates(anchor, start, end, r.Interval, r.DaysOfWeek), nil
		case model.RecurrenceWeekly:
			return weeklyDates(anchor, start, end, r.Interval, r.DaysOfWeek), nil
		default:
			return monthlyDates(anchor, start, end, r.Interval), nil
		}

	default:
		if end.Before(start) {
			return nil, nil
		}
		fg := item.FrequencyGoal
		if !fg.FixedDays.Empty() {
			return weekdayDates(start, end, fg.FixedDays), nil
		}
		if fg.Period == model.PeriodWeek {
			return spreadWeekly(anchor, start, end, fg.Count), nil
		}
		return spreadMonthly(start, end, fg.Count), nil
	}
}

// dailyDates steps interval days from the anchor, optionally keeping only the
// configured weekdays.
func dailyDates(anchor, start, end time.Time, interval int, days model.WeekdaySet) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if utils.DaysBetween(anchor, d)%interval != 0 {
			continue
		}
		if !days.Empty() && !days.Has(d.Weekday()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// weeklyDates keeps the configured weekdays (the anchor's weekday when none are
// set) in every interval-th week counted from the anchor's Monday-based week.
func weeklyDates(anchor, start, end time.Time, interval int, days model.WeekdaySet) []time.Time {
	if days.Empty() {
		days = model.NewWeekdaySet(anchor.Weekday())
	}
	anchorWeek := weekStart(anchor)

	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !days.Has(d.Weekday()) {
			continue
		}
		weeks := utils.DaysBetween(anchorWeek, weekStart(d)) / 7
		if weeks%interval != 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// monthlyDates repeats the anchor's day of month every interval months,
// clamped to the last day of shorter months.
func monthlyDates(anchor, start, end time.Time, interval int) []time.Time {
	var out []time.Time
	for k := 0; ; k += interval {
		d := addMonthsClamped(anchor, k)
		if d.After(end) {
			break
		}
		if !d.Before(start) {
			out = append(out, d)
		}
	}
	return out
}

func weekdayDates(start, end time.Time, days model.WeekdaySet) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if days.Has(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out
}

// spreadWeekly places count occurrences in each 7-day window starting at the
// anchor, at offsets floor(i*7/count).
func spreadWeekly(anchor, start, end time.Time, count int) []time.Time {
	offsets := evenOffsets(7, count)

	var out []time.Time
	window := utils.DaysBetween(anchor, start) / 7
	for {
		windowStart := anchor.AddDate(0, 0, window*7)
		if windowStart.After(end) {
			break
		}
		for _, off := range offsets {
			d := windowStart.AddDate(0, 0, off)
			if !d.Before(start) && !d.After(end) {
				out = append(out, d)
			}
		}
		window++
	}
	return out
}

// spreadMonthly places count occurrences in each calendar month at offsets
// floor(i*daysInMonth/count) from the first of the month.
func spreadMonthly(start, end time.Time, count int) []time.Time {
	var out []time.Time
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(end) {
		offsets := evenOffsets(utils.DaysInMonth(month.Year(), month.Month()), count)
		for _, off := range offsets {
			d := month.AddDate(0, 0, off)
			if !d.Before(start) && !d.After(end) {
				out = append(out, d)
			}
		}
		month = month.AddDate(0, 1, 0)
	}
	return out
}

func evenOffsets(length, count int) []int {
	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		offsets[i] = i * length / count
	}
	return offsets
}

// weekStart returns the Monday on or before d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func addMonthsClamped(d time.Time, months int) time.Time {
	total := int(d.Month()) - 1 + months
	year := d.Year() + total/12
	month := time.Month(total%12 + 1)
	day := d.Day()
	if last := utils.DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
