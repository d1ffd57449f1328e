package usecase

import (
	"sort"
	"time"

	"goaltracker/model"
	"goaltracker/utils"
)

// DayActivity is everything the streak rules need to know about one calendar
// day in a scope.
type DayActivity struct {
	Date              time.Time
	Expected          int // scheduled task instances due that day
	CompletedExpected int // of those, how many were completed
	Activity          int // completions and progress entries of any kind
	Shielded          bool
}

// Maintained reports whether the day had any qualifying activity.
func (d DayActivity) Maintained() bool {
	return d.Activity > 0 || d.CompletedExpected > 0
}

// Perfect reports whether every expected instance for the day was completed.
// Days with nothing expected are neither perfect nor a break.
func (d DayActivity) Perfect() bool {
	return d.Expected > 0 && d.CompletedExpected >= d.Expected
}

type StreakCounters struct {
	CurrentMaintained int
	BestMaintained    int
	CurrentPerfect    int
	BestPerfect       int
	LastActivity      *time.Time
}

// Advance folds one day into the counters. When pending is set the day is
// still in progress: it can extend a streak but cannot break one.
func (c *StreakCounters) Advance(day DayActivity, pending bool) {
	switch {
	case day.Maintained():
		c.CurrentMaintained++
		d := day.Date
		c.LastActivity = &d
	case pending, day.Shielded:
	default:
		c.CurrentMaintained = 0
	}

	switch {
	case day.Perfect():
		c.CurrentPerfect++
	case pending, day.Expected == 0:
	default:
		c.CurrentPerfect = 0
	}

	if c.CurrentMaintained > c.BestMaintained {
		c.BestMaintained = c.CurrentMaintained
	}
	if c.CurrentPerfect > c.BestPerfect {
		c.BestPerfect = c.CurrentPerfect
	}
}

// Replay advances seed through every calendar day in [from, through]. Days
// missing from byDate count as empty days.
func Replay(seed StreakCounters, byDate map[time.Time]DayActivity, from, through, today time.Time) StreakCounters {
	c := seed
	for d := utils.Day(from); !d.After(through); d = d.AddDate(0, 0, 1) {
		day, ok := byDate[d]
		if !ok {
			day = DayActivity{Date: d}
		}
		c.Advance(day, d.Equal(today))
	}
	return c
}

// RecomputeStreak rebuilds the counters for a scope after a change dated from.
// The state at the end of the day before from is rebuilt from history, then
// every day from from through today is replayed, so a backfilled entry that
// fills a gap joins the runs on both sides of it.
func RecomputeStreak(history []DayActivity, from, today time.Time) StreakCounters {
	from, today = utils.Day(from), utils.Day(today)

	byDate := make(map[time.Time]DayActivity, len(history))
	var first time.Time
	for _, day := range history {
		d := utils.Day(day.Date)
		day.Date = d
		byDate[d] = day
		if first.IsZero() || d.Before(first) {
			first = d
		}
	}
	if first.IsZero() || first.After(today) {
		return StreakCounters{}
	}
	if from.After(today) {
		from = today
	}
	if from.Before(first) {
		first = from
	}

	seed := Replay(StreakCounters{}, byDate, first, from.AddDate(0, 0, -1), today)
	return Replay(seed, byDate, from, today, today)
}

// ApplyCounters writes freshly computed counters into info. Best values never
// decrease, so best >= current holds after every write.
func ApplyCounters(info *model.StreakInfo, c StreakCounters, evaluated time.Time) {
	info.CurrentMaintainedStreak = c.CurrentMaintained
	info.CurrentPerfectStreak = c.CurrentPerfect
	info.BestMaintainedStreak = maxInt(info.BestMaintainedStreak, c.BestMaintained, c.CurrentMaintained)
	info.BestPerfectStreak = maxInt(info.BestPerfectStreak, c.BestPerfect, c.CurrentPerfect)
	if c.LastActivity != nil {
		last := *c.LastActivity
		info.LastActivityDate = &last
	}
	e := utils.Day(evaluated)
	info.LastEvaluatedDate = &e
}

// BuildHistory aggregates raw records into per-day activity, sorted by date.
func BuildHistory(scheduled []model.ScheduledTask, completions []model.TaskCompletion, progress []model.ProgressEntry, shields []model.StreakShield) []DayActivity {
	byDate := make(map[time.Time]*DayActivity)
	get := func(t time.Time) *DayActivity {
		d := utils.Day(t)
		day, ok := byDate[d]
		if !ok {
			day = &DayActivity{Date: d}
			byDate[d] = day
		}
		return day
	}

	for _, st := range scheduled {
		day := get(st.ScheduledDate)
		day.Expected++
		if st.Completed {
			day.CompletedExpected++
		}
	}
	for _, c := range completions {
		get(c.Date).Activity++
	}
	for _, p := range progress {
		get(p.Date).Activity++
	}
	for _, s := range shields {
		get(s.Date).Shielded = true
	}

	out := make([]DayActivity, 0, len(byDate))
	for _, day := range byDate {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
