package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"goaltracker/errs"
	"goaltracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateGoal(ctx, &model.Goal{GoalID: "g1", UserID: "u1", Title: "kept"}))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.CreateGoal(ctx, &model.Goal{GoalID: "g2", UserID: "u1", Title: "dropped"}))
		require.NoError(t, s.DeleteGoal(ctx, "g1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetGoal(ctx, "g1")
	assert.NoError(t, err)
	_, err = s.GetGoal(ctx, "g2")
	assert.True(t, errs.IsNotFound(err))
}

func TestRollbackKeepsWritesMadeOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.CreateGoal(ctx, &model.Goal{GoalID: "g1", UserID: "u1"}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	userDone := make(chan error, 1)
	go func() {
		userDone <- s.CreateUser(ctx, &model.User{UserID: "u1", Username: "sam"})
	}()

	select {
	case <-userDone:
		t.Fatal("write outside the transaction did not wait for it")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.Error(t, <-txDone)
	require.NoError(t, <-userDone)

	_, err := s.GetUser(ctx, "u1")
	assert.NoError(t, err)
	_, err = s.GetGoal(ctx, "g1")
	assert.True(t, errs.IsNotFound(err))
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.WithTransaction(ctx, func(ctx context.Context) error {
			return s.CreateGoal(ctx, &model.Goal{GoalID: "g1", UserID: "u1"})
		})
	})
	require.NoError(t, err)
	_, err = s.GetGoal(ctx, "g1")
	assert.NoError(t, err)
}

func TestUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, &model.User{UserID: "u1", Username: "sam"}))
	assert.True(t, errs.IsDuplicate(s.CreateUser(ctx, &model.User{UserID: "u2", Username: "sam"})))

	require.NoError(t, s.CreateCompletion(ctx, &model.TaskCompletion{CompletionID: "c1", ActionItemID: "t1", Date: day(5)}))
	assert.True(t, errs.IsDuplicate(s.CreateCompletion(ctx, &model.TaskCompletion{CompletionID: "c2", ActionItemID: "t1", Date: day(5)})))

	require.NoError(t, s.InsertScheduledTasks(ctx, []model.ScheduledTask{{ScheduledTaskID: "s1", ActionItemID: "t1", ScheduledDate: day(5)}}))
	err := s.InsertScheduledTasks(ctx, []model.ScheduledTask{
		{ScheduledTaskID: "s2", ActionItemID: "t1", ScheduledDate: day(6)},
		{ScheduledTaskID: "s3", ActionItemID: "t1", ScheduledDate: day(5)},
	})
	assert.True(t, errs.IsDuplicate(err))
	tasks, err := s.ListScheduledTasks(ctx, model.ActivityFilter{ActionItemID: "t1"})
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "a rejected batch inserts nothing")

	require.NoError(t, s.CreateJournalEntry(ctx, &model.JournalEntry{EntryID: "j1", UserID: "u1", Date: day(5)}))
	assert.True(t, errs.IsDuplicate(s.CreateJournalEntry(ctx, &model.JournalEntry{EntryID: "j2", UserID: "u1", Date: day(5)})))
}

func TestSaveStreakVersioning(t *testing.T) {
	ctx := context.Background()
	s := New()
	scope := model.UserScope("u1")

	first := &model.StreakInfo{Scope: scope, CurrentMaintainedStreak: 1}
	require.NoError(t, s.SaveStreak(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	stale := &model.StreakInfo{Scope: scope}
	assert.Equal(t, errs.KindConflict, errs.KindOf(s.SaveStreak(ctx, stale)))

	loaded, err := s.FindStreak(ctx, scope)
	require.NoError(t, err)
	other := *loaded

	loaded.CurrentMaintainedStreak = 2
	require.NoError(t, s.SaveStreak(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	other.CurrentMaintainedStreak = 5
	assert.Equal(t, errs.KindConflict, errs.KindOf(s.SaveStreak(ctx, &other)))
}

func TestPurchasesAreUsedOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreatePurchase(ctx, &model.UserPurchase{
		PurchaseID: "new", UserID: "u1", Product: model.ProductStreakShield,
		Quantity: 1, QuantityRemaining: 1, PurchasedAt: day(9),
	}))
	require.NoError(t, s.CreatePurchase(ctx, &model.UserPurchase{
		PurchaseID: "old", UserID: "u1", Product: model.ProductStreakShield,
		Quantity: 1, QuantityRemaining: 1, PurchasedAt: day(2),
	}))

	p, err := s.FindUsablePurchase(ctx, "u1", model.ProductStreakShield)
	require.NoError(t, err)
	assert.Equal(t, "old", p.PurchaseID)

	require.NoError(t, s.UsePurchase(ctx, "old"))
	assert.Equal(t, errs.KindUsageLimitExceeded, errs.KindOf(s.UsePurchase(ctx, "old")))

	p, err = s.FindUsablePurchase(ctx, "u1", model.ProductStreakShield)
	require.NoError(t, err)
	assert.Equal(t, "new", p.PurchaseID)
}

func TestCloseSlotOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateSlot(ctx, &model.TaskScheduleSlot{SlotID: "a", ActionItemID: "t1", TimeOfDay: "07:00", EffectiveFrom: day(1)}))

	require.NoError(t, s.CloseSlot(ctx, "a", day(9)))
	assert.Equal(t, errs.KindConflict, errs.KindOf(s.CloseSlot(ctx, "a", day(12))))

	slot, err := s.GetSlot(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, day(9), *slot.EffectiveUntil)
}

func TestDeleteActionItemCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateActionItem(ctx, &model.ActionItem{ActionItemID: "t1", GoalID: "g1", UserID: "u1"}))
	require.NoError(t, s.InsertScheduledTasks(ctx, []model.ScheduledTask{
		{ScheduledTaskID: "s1", ActionItemID: "t1", UserID: "u1", ScheduledDate: day(1), Completed: true},
		{ScheduledTaskID: "s2", ActionItemID: "t1", UserID: "u1", ScheduledDate: day(2)},
	}))
	require.NoError(t, s.CreateSlot(ctx, &model.TaskScheduleSlot{SlotID: "a", ActionItemID: "t1", EffectiveFrom: day(1)}))

	require.NoError(t, s.DeleteActionItem(ctx, "t1"))

	tasks, err := s.ListScheduledTasks(ctx, model.ActivityFilter{ActionItemID: "t1"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	slots, err := s.ListSlots(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, slots)
}
