package usecase

import (
	"testing"

	"goaltracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func active(t *testing.T, dates ...string) []DayActivity {
	out := make([]DayActivity, 0, len(dates))
	for _, v := range ds(t, dates...) {
		out = append(out, DayActivity{Date: v, Activity: 1})
	}
	return out
}

func TestRecomputeStreakConsecutiveDays(t *testing.T) {
	c := RecomputeStreak(active(t, "2024-01-01", "2024-01-02", "2024-01-03"), d(t, "2024-01-01"), d(t, "2024-01-03"))

	assert.Equal(t, 3, c.CurrentMaintained)
	assert.Equal(t, 3, c.BestMaintained)
	require.NotNil(t, c.LastActivity)
	assert.Equal(t, d(t, "2024-01-03"), *c.LastActivity)
}

func TestRecomputeStreakTodayIsPending(t *testing.T) {
	c := RecomputeStreak(active(t, "2024-01-01", "2024-01-02"), d(t, "2024-01-02"), d(t, "2024-01-03"))
	assert.Equal(t, 2, c.CurrentMaintained)

	c = RecomputeStreak(active(t, "2024-01-01", "2024-01-02"), d(t, "2024-01-02"), d(t, "2024-01-04"))
	assert.Equal(t, 0, c.CurrentMaintained)
	assert.Equal(t, 2, c.BestMaintained)
}

func TestRecomputeStreakBackfillJoinsRuns(t *testing.T) {
	today := d(t, "2024-01-05")
	history := active(t, "2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05")

	before := RecomputeStreak(history, today, today)
	assert.Equal(t, 2, before.CurrentMaintained)
	assert.Equal(t, 2, before.BestMaintained)

	history = append(history, DayActivity{Date: d(t, "2024-01-03"), Activity: 1})
	after := RecomputeStreak(history, d(t, "2024-01-03"), today)
	assert.Equal(t, 5, after.CurrentMaintained)
	assert.Equal(t, 5, after.BestMaintained)
}

func TestRecomputeStreakShieldBridgesGap(t *testing.T) {
	history := []DayActivity{
		{Date: d(t, "2024-01-01"), Activity: 1},
		{Date: d(t, "2024-01-02"), Shielded: true},
		{Date: d(t, "2024-01-03"), Activity: 1},
	}

	c := RecomputeStreak(history, d(t, "2024-01-02"), d(t, "2024-01-03"))
	assert.Equal(t, 2, c.CurrentMaintained)
}

func TestRecomputeStreakPerfectDays(t *testing.T) {
	history := []DayActivity{
		{Date: d(t, "2024-01-01"), Expected: 1, CompletedExpected: 1},
		{Date: d(t, "2024-01-02"), Expected: 2, CompletedExpected: 1},
		{Date: d(t, "2024-01-03")},
		{Date: d(t, "2024-01-04"), Expected: 1, CompletedExpected: 1},
		{Date: d(t, "2024-01-05"), Expected: 1, CompletedExpected: 1},
	}

	c := RecomputeStreak(history, d(t, "2024-01-01"), d(t, "2024-01-05"))
	assert.Equal(t, 2, c.CurrentPerfect)
	assert.Equal(t, 2, c.BestPerfect)
	// Jan 3 had no activity at all, so the maintained run restarts on Jan 4.
	assert.Equal(t, 2, c.CurrentMaintained)
	assert.Equal(t, 2, c.BestMaintained)
}

func TestApplyCountersKeepsBestMonotonic(t *testing.T) {
	info := &model.StreakInfo{BestMaintainedStreak: 10, BestPerfectStreak: 4}
	ApplyCounters(info, StreakCounters{CurrentMaintained: 3, BestMaintained: 3, CurrentPerfect: 1, BestPerfect: 1}, d(t, "2024-02-01"))

	assert.Equal(t, 3, info.CurrentMaintainedStreak)
	assert.Equal(t, 10, info.BestMaintainedStreak)
	assert.Equal(t, 4, info.BestPerfectStreak)
	assert.True(t, info.Consistent())
	require.NotNil(t, info.LastEvaluatedDate)
	assert.Equal(t, d(t, "2024-02-01"), *info.LastEvaluatedDate)
}

func TestBuildHistoryAggregatesByDay(t *testing.T) {
	jan1, jan2 := d(t, "2024-01-01"), d(t, "2024-01-02")
	history := BuildHistory(
		[]model.ScheduledTask{
			{ScheduledDate: jan1, Completed: true},
			{ScheduledDate: jan1},
		},
		[]model.TaskCompletion{{Date: jan1}},
		[]model.ProgressEntry{{Date: jan2}},
		[]model.StreakShield{{Date: jan2}},
	)

	require.Len(t, history, 2)
	assert.Equal(t, DayActivity{Date: jan1, Expected: 2, CompletedExpected: 1, Activity: 1}, history[0])
	assert.Equal(t, DayActivity{Date: jan2, Activity: 1, Shielded: true}, history[1])
}

func TestDedupeScopesOrdersUserGoalTask(t *testing.T) {
	scopes := dedupeScopes([]model.StreakScope{
		model.TaskScope("u", "g", "t"),
		model.GoalScope("u", "g"),
		model.UserScope("u"),
		model.GoalScope("u", "g"),
	})

	require.Len(t, scopes, 3)
	assert.Equal(t, model.ScopeUser, scopes[0].Kind())
	assert.Equal(t, model.ScopeGoal, scopes[1].Kind())
	assert.Equal(t, model.ScopeTask, scopes[2].Kind())
}
