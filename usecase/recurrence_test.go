package usecase

import (
	"testing"
	"time"

	"goaltracker/errs"
	"goaltracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDates(t *testing.T) {
	endJan3 := d(t, "2024-01-03")

	tests := []struct {
		name     string
		item     model.ActionItem
		from, to string
		want     []string
	}{
		{
			name: "one time inside range",
			item: model.ActionItem{TaskType: model.TaskOneTime, AnchorDate: d(t, "2024-01-10")},
			from: "2024-01-01", to: "2024-01-31",
			want: []string{"2024-01-10"},
		},
		{
			name: "one time outside range",
			item: model.ActionItem{TaskType: model.TaskOneTime, AnchorDate: d(t, "2024-01-10")},
			from: "2024-02-01", to: "2024-02-29",
			want: []string{},
		},
		{
			name: "daily every other day",
			item: model.ActionItem{
				TaskType:   model.TaskRecurring,
				AnchorDate: d(t, "2024-01-01"),
				Recurrence: &model.Recurrence{Enabled: true, Frequency: model.RecurrenceDaily, Interval: 2},
			},
			from: "2024-01-01", to: "2024-01-07",
			want: []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-07"},
		},
		{
			name: "daily stops at end date",
			item: model.ActionItem{
				TaskType:   model.TaskRecurring,
				AnchorDate: d(t, "2024-01-01"),
				Recurrence: &model.Recurrence{Enabled: true, Frequency: model.RecurrenceDaily, Interval: 1, EndDate: &endJan3},
			},
			from: "2023-12-25", to: "2024-01-10",
			want: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name: "biweekly monday and wednesday",
			item: model.ActionItem{
				TaskType:   model.TaskRecurring,
				AnchorDate: d(t, "2024-01-01"),
				Recurrence: &model.Recurrence{
					Enabled:    true,
					Frequency:  model.RecurrenceWeekly,
					Interval:   2,
					DaysOfWeek: model.NewWeekdaySet(time.Monday, time.Wednesday),
				},
			},
			from: "2024-01-01", to: "2024-01-31",
			want: []string{"2024-01-01", "2024-01-03", "2024-01-15", "2024-01-17", "2024-01-29", "2024-01-31"},
		},
		{
			name: "weekly defaults to anchor weekday",
			item: model.ActionItem{
				TaskType:   model.TaskRecurring,
				AnchorDate: d(t, "2024-01-03"),
				Recurrence: &model.Recurrence{Enabled: true, Frequency: model.RecurrenceWeekly, Interval: 1},
			},
			from: "2024-01-01", to: "2024-01-21",
			want: []string{"2024-01-03", "2024-01-10", "2024-01-17"},
		},
		{
			name: "monthly clamps to month end",
			item: model.ActionItem{
				TaskType:   model.TaskRecurring,
				AnchorDate: d(t, "2024-01-31"),
				Recurrence: &model.Recurrence{Enabled: true, Frequency: model.RecurrenceMonthly, Interval: 1},
			},
			from: "2024-01-01", to: "2024-04-30",
			want: []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"},
		},
		{
			name: "three times a week spread evenly",
			item: model.ActionItem{
				TaskType:      model.TaskFrequency,
				AnchorDate:    d(t, "2024-01-01"),
				FrequencyGoal: &model.FrequencyGoal{Enabled: true, Count: 3, Period: model.PeriodWeek},
			},
			from: "2024-01-01", to: "2024-01-14",
			want: []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-08", "2024-01-10", "2024-01-12"},
		},
		{
			name: "twice a month spread over february",
			item: model.ActionItem{
				TaskType:      model.TaskFrequency,
				AnchorDate:    d(t, "2024-01-01"),
				FrequencyGoal: &model.FrequencyGoal{Enabled: true, Count: 2, Period: model.PeriodMonth},
			},
			from: "2024-02-01", to: "2024-02-29",
			want: []string{"2024-02-01", "2024-02-15"},
		},
		{
			name: "frequency goal with fixed days",
			item: model.ActionItem{
				TaskType:   model.TaskFrequency,
				AnchorDate: d(t, "2024-01-01"),
				FrequencyGoal: &model.FrequencyGoal{
					Enabled:   true,
					Count:     2,
					Period:    model.PeriodWeek,
					FixedDays: model.NewWeekdaySet(time.Tuesday, time.Thursday),
				},
			},
			from: "2024-01-01", to: "2024-01-07",
			want: []string{"2024-01-02", "2024-01-04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScheduleDates(&tt.item, d(t, tt.from), d(t, tt.to))
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatAll(got))
		})
	}
}

func TestScheduleDatesIsIdempotent(t *testing.T) {
	item := &model.ActionItem{
		TaskType:      model.TaskFrequency,
		AnchorDate:    d(t, "2024-01-04"),
		FrequencyGoal: &model.FrequencyGoal{Enabled: true, Count: 4, Period: model.PeriodWeek},
	}

	first, err := ScheduleDates(item, d(t, "2024-01-01"), d(t, "2024-03-31"))
	require.NoError(t, err)
	second, err := ScheduleDates(item, d(t, "2024-01-01"), d(t, "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, v := range first {
		assert.False(t, v.Before(item.AnchorDate))
	}
}

func TestValidateScheduleRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		item model.ActionItem
	}{
		{"missing anchor", model.ActionItem{TaskType: model.TaskOneTime}},
		{"recurring without recurrence", model.ActionItem{TaskType: model.TaskRecurring, AnchorDate: d(t, "2024-01-01")}},
		{"zero interval", model.ActionItem{
			TaskType:   model.TaskRecurring,
			AnchorDate: d(t, "2024-01-01"),
			Recurrence: &model.Recurrence{Enabled: true, Frequency: model.RecurrenceDaily},
		}},
		{"too many per week", model.ActionItem{
			TaskType:      model.TaskFrequency,
			AnchorDate:    d(t, "2024-01-01"),
			FrequencyGoal: &model.FrequencyGoal{Enabled: true, Count: 8, Period: model.PeriodWeek},
		}},
		{"unknown type", model.ActionItem{TaskType: "SOMETIMES", AnchorDate: d(t, "2024-01-01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(&tt.item)
			assert.Equal(t, errs.KindBadRequest, errs.KindOf(err))
		})
	}
}
