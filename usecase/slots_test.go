package usecase

import (
	"testing"
	"time"

	"goaltracker/errs"
	"goaltracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescheduleChainResolvesByDate(t *testing.T) {
	a := model.TaskScheduleSlot{
		SlotID:        "slot-a",
		ActionItemID:  "item-1",
		SlotIndex:     0,
		TimeOfDay:     "07:00",
		EffectiveFrom: d(t, "2024-01-01"),
		CreatedAt:     time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}

	closed, b, err := PlanReschedule(a, SlotChange{
		SlotIndex:     1,
		TimeOfDay:     "18:30",
		EffectiveDate: d(t, "2024-01-10"),
		Reason:        " new job ",
	}, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NotNil(t, closed.EffectiveUntil)
	assert.Equal(t, "2024-01-09", formatAll([]time.Time{*closed.EffectiveUntil})[0])
	assert.Equal(t, "slot-a", b.RescheduledFromSlotID)
	assert.Equal(t, "new job", b.RescheduleReason)
	assert.Nil(t, b.EffectiveUntil)

	chain := []model.TaskScheduleSlot{closed, b}

	got, ok := ResolveSlot(chain, d(t, "2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, "slot-a", got.SlotID)

	got, ok = ResolveSlot(chain, d(t, "2024-01-15"))
	require.True(t, ok)
	assert.Equal(t, b.SlotID, got.SlotID)

	_, ok = ResolveSlot(chain, d(t, "2023-12-31"))
	assert.False(t, ok)
}

func TestResolveSlotPrefersNewestOnOverlap(t *testing.T) {
	older := model.TaskScheduleSlot{SlotID: "old", EffectiveFrom: d(t, "2024-01-01"), CreatedAt: time.Unix(100, 0)}
	newer := model.TaskScheduleSlot{SlotID: "new", EffectiveFrom: d(t, "2024-01-01"), CreatedAt: time.Unix(200, 0)}

	got, ok := ResolveSlot([]model.TaskScheduleSlot{newer, older}, d(t, "2024-02-01"))
	require.True(t, ok)
	assert.Equal(t, "new", got.SlotID)
}

func TestPlanRescheduleRejects(t *testing.T) {
	until := d(t, "2024-01-09")
	open := model.TaskScheduleSlot{SlotID: "s1", TimeOfDay: "07:00", EffectiveFrom: d(t, "2024-01-05")}
	closed := open
	closed.EffectiveUntil = &until

	tests := []struct {
		name    string
		slot    model.TaskScheduleSlot
		change  SlotChange
		wantErr errs.Kind
	}{
		{"already closed", closed, SlotChange{TimeOfDay: "08:00", EffectiveDate: d(t, "2024-01-20")}, errs.KindConflict},
		{"before start", open, SlotChange{TimeOfDay: "08:00", EffectiveDate: d(t, "2024-01-01")}, errs.KindBadRequest},
		{"bad time", open, SlotChange{TimeOfDay: "8am", EffectiveDate: d(t, "2024-01-20")}, errs.KindBadRequest},
		{"no change", open, SlotChange{TimeOfDay: "07:00", EffectiveDate: d(t, "2024-01-20")}, errs.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PlanReschedule(tt.slot, tt.change, time.Now())
			assert.Equal(t, tt.wantErr, errs.KindOf(err))
		})
	}
}
