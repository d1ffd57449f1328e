package usecase

import (
	"testing"

	"goaltracker/model"

	"github.com/stretchr/testify/assert"
)

func TestReflectionFrequencyFor(t *testing.T) {
	tests := []struct {
		days int
		want model.ReflectionFrequency
	}{
		{-1, model.ReflectionBiWeekly},
		{10, model.ReflectionDaily},
		{14, model.ReflectionDaily},
		{45, model.ReflectionEvery3Days},
		{60, model.ReflectionEvery3Days},
		{120, model.ReflectionWeekly},
		{180, model.ReflectionWeekly},
		{200, model.ReflectionBiWeekly},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReflectionFrequencyFor(tt.days), "duration %d", tt.days)
	}
}

func TestCurrentReflectionPeriod(t *testing.T) {
	start := d(t, "2024-01-01")

	p := CurrentReflectionPeriod(start, d(t, "2024-01-10"), model.ReflectionWeekly)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, d(t, "2024-01-08"), p.Start)
	assert.Equal(t, d(t, "2024-01-14"), p.End)

	p = CurrentReflectionPeriod(start, d(t, "2023-12-20"), model.ReflectionEvery3Days)
	assert.Equal(t, 0, p.Index)
	assert.Equal(t, start, p.Start)
	assert.Equal(t, d(t, "2024-01-03"), p.End)
}

func TestReflectionDue(t *testing.T) {
	period := CurrentReflectionPeriod(d(t, "2024-01-01"), d(t, "2024-01-10"), model.ReflectionWeekly)

	assert.False(t, ReflectionDue(period, d(t, "2024-01-13"), nil))
	assert.True(t, ReflectionDue(period, d(t, "2024-01-14"), nil))

	covered := []model.GoalReflection{{PeriodStart: period.Start}}
	assert.False(t, ReflectionDue(period, d(t, "2024-01-14"), covered))
}
