package usecase

import (
	"time"

	"goaltracker/model"
	"goaltracker/utils"
)

// ReflectionFrequencyFor maps a goal's planned duration in days onto the
// reflection cadence. Goals without a target date (negative duration) reflect
// bi-weekly.
func ReflectionFrequencyFor(durationDays int) model.ReflectionFrequency {
	switch {
	case durationDays < 0:
		return model.ReflectionBiWeekly
	case durationDays <= 14:
		return model.ReflectionDaily
	case durationDays <= 60:
		return model.ReflectionEvery3Days
	case durationDays <= 180:
		return model.ReflectionWeekly
	default:
		return model.ReflectionBiWeekly
	}
}

type ReflectionPeriod struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CurrentReflectionPeriod returns [start + k*p, start + (k+1)*p - 1] with
// k = elapsed/p. Before the goal starts the first period is returned.
func CurrentReflectionPeriod(start, today time.Time, freq model.ReflectionFrequency) ReflectionPeriod {
	p := freq.Days()
	if p <= 0 {
		p = 1
	}
	elapsed := utils.DaysBetween(start, today)
	if elapsed < 0 {
		elapsed = 0
	}
	k := elapsed / p
	periodStart := utils.AddDays(start, k*p)
	return ReflectionPeriod{
		Index: k,
		Start: periodStart,
		End:   periodStart.AddDate(0, 0, p-1),
	}
}

// ReflectionDue reports whether today is at or past the period's end and no
// reflection covers the period yet.
func ReflectionDue(period ReflectionPeriod, today time.Time, existing []model.GoalReflection) bool {
	if utils.Day(today).Before(period.End) {
		return false
	}
	return !periodCovered(period, existing)
}

func periodCovered(period ReflectionPeriod, existing []model.GoalReflection) bool {
	for _, r := range existing {
		if utils.Day(r.PeriodStart).Equal(period.Start) {
			return true
		}
	}
	return false
}
