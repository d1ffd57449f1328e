package repository

import (
	"context"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ActionItemRepo struct {
	MongoCollection *mongo.Collection
	scheduled       *mongo.Collection
	slots           *mongo.Collection
}

func GetActionItemRepo(db *mongo.Database) *ActionItemRepo {
	return &ActionItemRepo{
		MongoCollection: db.Collection(ActionItemsCollection),
		scheduled:       db.Collection(ScheduledCollection),
		slots:           db.Collection(SlotsCollection),
	}
}

func (r *ActionItemRepo) CreateActionItem(ctx context.Context, item *model.ActionItem) error {
	timer := utils.TrackDBOperation("insert", ActionItemsCollection)
	defer timer.ObserveDuration()

	if _, err := r.MongoCollection.InsertOne(ctx, item); err != nil {
		utils.TrackError("database", "action_item_creation_failed")
		return translate(err, "action item", item.ActionItemID)
	}
	return nil
}

func (r *ActionItemRepo) GetActionItem(ctx context.Context, actionItemID string) (*model.ActionItem, error) {
	timer := utils.TrackDBOperation("find", ActionItemsCollection)
	defer timer.ObserveDuration()

	var item model.ActionItem
	if err := r.MongoCollection.FindOne(ctx, bson.M{"_id": actionItemID}).Decode(&item); err != nil {
		return nil, translate(err, "action item", actionItemID)
	}
	return &item, nil
}

func (r *ActionItemRepo) ListActionItems(ctx context.Context, userID, goalID string) ([]model.ActionItem, error) {
	timer := utils.TrackDBOperation("find", ActionItemsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"user_id": userID}
	if goalID != "" {
		filter["goal_id"] = goalID
	}
	return findAll[model.ActionItem](ctx, r.MongoCollection, filter, ascending("created_at"))
}

func (r *ActionItemRepo) UpdateActionItem(ctx context.Context, item *model.ActionItem) error {
	timer := utils.TrackDBOperation("update", ActionItemsCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.ReplaceOne(ctx, bson.M{"_id": item.ActionItemID}, item)
	if err != nil {
		utils.TrackError("database", "action_item_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("action item", item.ActionItemID)
	}
	return nil
}

// DeleteActionItem removes the item, its open scheduled instances and its
// slots. Completed instances and completions stay as streak history.
func (r *ActionItemRepo) DeleteActionItem(ctx context.Context, actionItemID string) error {
	timer := utils.TrackDBOperation("delete", ActionItemsCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": actionItemID})
	if err != nil {
		utils.TrackError("database", "action_item_deletion_failed")
		return err
	}
	if result.DeletedCount == 0 {
		return errs.NotFound("action item", actionItemID)
	}

	if _, err := r.scheduled.DeleteMany(ctx, bson.M{"action_item_id": actionItemID, "completed": false}); err != nil {
		utils.TrackError("database", "scheduled_task_deletion_failed")
		return err
	}
	if _, err := r.slots.DeleteMany(ctx, bson.M{"action_item_id": actionItemID}); err != nil {
		utils.TrackError("database", "slot_deletion_failed")
		return err
	}
	return nil
}
