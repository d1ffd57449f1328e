package repository

import (
	"context"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SlotRepo struct {
	MongoCollection *mongo.Collection
}

func GetSlotRepo(db *mongo.Database) *SlotRepo {
	return &SlotRepo{MongoCollection: db.Collection(SlotsCollection)}
}

func (r *SlotRepo) CreateSlot(ctx context.Context, slot *model.TaskScheduleSlot) error {
	timer := utils.TrackDBOperation("insert", SlotsCollection)
	defer timer.ObserveDuration()

	if _, err := r.MongoCollection.InsertOne(ctx, slot); err != nil {
		utils.TrackError("database", "slot_creation_failed")
		return translate(err, "slot", slot.SlotID)
	}
	return nil
}

func (r *SlotRepo) GetSlot(ctx context.Context, slotID string) (*model.TaskScheduleSlot, error) {
	timer := utils.TrackDBOperation("find", SlotsCollection)
	defer timer.ObserveDuration()

	var slot model.TaskScheduleSlot
	if err := r.MongoCollection.FindOne(ctx, bson.M{"_id": slotID}).Decode(&slot); err != nil {
		return nil, translate(err, "slot", slotID)
	}
	return &slot, nil
}

func (r *SlotRepo) ListSlots(ctx context.Context, actionItemID string) ([]model.TaskScheduleSlot, error) {
	timer := utils.TrackDBOperation("find", SlotsCollection)
	defer timer.ObserveDuration()

	return findAll[model.TaskScheduleSlot](ctx, r.MongoCollection, bson.M{"action_item_id": actionItemID}, ascending("created_at"))
}

// CloseSlot only matches a slot whose effective_until is still unset, so two
// concurrent reschedules of one slot cannot both succeed.
func (r *SlotRepo) CloseSlot(ctx context.Context, slotID string, until time.Time) error {
	timer := utils.TrackDBOperation("update", SlotsCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": slotID, "effective_until": nil},
		bson.M{"$set": bson.M{"effective_until": until}},
	)
	if err != nil {
		utils.TrackError("database", "slot_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetSlot(ctx, slotID); err != nil {
			return err
		}
		return errs.Conflict("slot %s was already rescheduled", slotID)
	}
	return nil
}
