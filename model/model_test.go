package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Friday, time.Monday)

	assert.True(t, s.Has(time.Monday))
	assert.True(t, s.Has(time.Friday))
	assert.False(t, s.Has(time.Sunday))
	assert.False(t, s.Empty())
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, s.Days())
	assert.True(t, WeekdaySet(0).Empty())
}

func TestSlotActiveOn(t *testing.T) {
	until := day(2024, 1, 9)
	closed := TaskScheduleSlot{EffectiveFrom: day(2024, 1, 1), EffectiveUntil: &until}
	open := TaskScheduleSlot{EffectiveFrom: day(2024, 1, 10)}

	assert.False(t, closed.ActiveOn(day(2023, 12, 31)))
	assert.True(t, closed.ActiveOn(day(2024, 1, 1)))
	assert.True(t, closed.ActiveOn(day(2024, 1, 9)))
	assert.False(t, closed.ActiveOn(day(2024, 1, 10)))
	assert.True(t, open.ActiveOn(day(2030, 6, 1)))
}

func TestStreakScopeKindAndKey(t *testing.T) {
	tests := []struct {
		scope StreakScope
		kind  ScopeKind
		key   string
	}{
		{UserScope("u1"), ScopeUser, "user:u1"},
		{GoalScope("u1", "g1"), ScopeGoal, "goal:u1:g1"},
		{TaskScope("u1", "g1", "t1"), ScopeTask, "task:u1:t1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.scope.Kind())
			assert.Equal(t, tt.key, tt.scope.Key())
		})
	}
}

func TestUseOneNeverGoesNegative(t *testing.T) {
	p := &UserPurchase{Quantity: 2, QuantityRemaining: 2}

	assert.True(t, p.UseOne())
	assert.True(t, p.UseOne())
	assert.False(t, p.UseOne())
	assert.Equal(t, 0, p.QuantityRemaining)
}

func TestActivityFilterMatches(t *testing.T) {
	f := ActivityFilter{UserID: "u1", GoalID: "g1", From: day(2024, 1, 5), To: day(2024, 1, 10)}

	assert.True(t, f.Matches("u1", "g1", "t1", day(2024, 1, 5)))
	assert.True(t, f.Matches("u1", "g1", "", day(2024, 1, 10)))
	assert.False(t, f.Matches("u2", "g1", "t1", day(2024, 1, 6)))
	assert.False(t, f.Matches("u1", "g2", "t1", day(2024, 1, 6)))
	assert.False(t, f.Matches("u1", "g1", "t1", day(2024, 1, 11)))
}

func TestGoalDurationAndReflectionDays(t *testing.T) {
	target := day(2024, 3, 1)
	g := Goal{StartDate: day(2024, 1, 1), TargetDate: &target}
	assert.Equal(t, 60, g.DurationDays())
	assert.Equal(t, -1, (&Goal{StartDate: day(2024, 1, 1)}).DurationDays())

	assert.Equal(t, 1, ReflectionDaily.Days())
	assert.Equal(t, 14, ReflectionBiWeekly.Days())
}

func TestTierAndStatus(t *testing.T) {
	assert.True(t, TierPremium.IsPremium())
	assert.True(t, TierLifetime.IsPremium())
	assert.False(t, TierFree.IsPremium())
	assert.True(t, SubscriptionActive.IsActive())
	assert.True(t, SubscriptionTrialing.IsActive())
}
