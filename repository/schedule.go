package repository

import (
	"context"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScheduleRepo stores scheduled task instances and completions.
type ScheduleRepo struct {
	Scheduled   *mongo.Collection
	Completions *mongo.Collection
}

func GetScheduleRepo(db *mongo.Database) *ScheduleRepo {
	return &ScheduleRepo{
		Scheduled:   db.Collection(ScheduledCollection),
		Completions: db.Collection(CompletionsCollection),
	}
}

func (r *ScheduleRepo) InsertScheduledTasks(ctx context.Context, tasks []model.ScheduledTask) error {
	timer := utils.TrackDBOperation("insert_many", ScheduledCollection)
	defer timer.ObserveDuration()

	if len(tasks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(tasks))
	for i := range tasks {
		docs[i] = tasks[i]
	}
	if _, err := r.Scheduled.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		utils.TrackError("database", "scheduled_task_creation_failed")
		return translate(err, "scheduled task", "")
	}
	return nil
}

func (r *ScheduleRepo) ListScheduledTasks(ctx context.Context, filter model.ActivityFilter) ([]model.ScheduledTask, error) {
	timer := utils.TrackDBOperation("find", ScheduledCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_date", Value: 1}, {Key: "action_item_id", Value: 1}})
	return findAll[model.ScheduledTask](ctx, r.Scheduled, activityQuery(filter, "scheduled_date", true), opts)
}

func (r *ScheduleRepo) FindScheduledTask(ctx context.Context, actionItemID string, date time.Time) (*model.ScheduledTask, error) {
	timer := utils.TrackDBOperation("find", ScheduledCollection)
	defer timer.ObserveDuration()

	return findOne[model.ScheduledTask](ctx, r.Scheduled, bson.M{"action_item_id": actionItemID, "scheduled_date": date})
}

func (r *ScheduleRepo) MarkScheduledTaskCompleted(ctx context.Context, scheduledTaskID string, at time.Time) error {
	timer := utils.TrackDBOperation("update", ScheduledCollection)
	defer timer.ObserveDuration()

	result, err := r.Scheduled.UpdateOne(ctx,
		bson.M{"_id": scheduledTaskID},
		bson.M{"$set": bson.M{"completed": true, "completed_at": at}},
	)
	if err != nil {
		utils.TrackError("database", "scheduled_task_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("scheduled task", scheduledTaskID)
	}
	return nil
}

func (r *ScheduleRepo) CreateCompletion(ctx context.Context, c *model.TaskCompletion) error {
	timer := utils.TrackDBOperation("insert", CompletionsCollection)
	defer timer.ObserveDuration()

	if _, err := r.Completions.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Duplicate("task already completed on %s", utils.FormatDate(c.Date))
		}
		utils.TrackError("database", "completion_creation_failed")
		return err
	}
	return nil
}

func (r *ScheduleRepo) FindCompletion(ctx context.Context, actionItemID string, date time.Time) (*model.TaskCompletion, error) {
	timer := utils.TrackDBOperation("find", CompletionsCollection)
	defer timer.ObserveDuration()

	return findOne[model.TaskCompletion](ctx, r.Completions, bson.M{"action_item_id": actionItemID, "date": date})
}

func (r *ScheduleRepo) ListCompletions(ctx context.Context, filter model.ActivityFilter) ([]model.TaskCompletion, error) {
	timer := utils.TrackDBOperation("find", CompletionsCollection)
	defer timer.ObserveDuration()

	return findAll[model.TaskCompletion](ctx, r.Completions, activityQuery(filter, "date", true), ascending("date"))
}
