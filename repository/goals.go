package repository

import (
	"context"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type GoalRepo struct {
	MongoCollection *mongo.Collection
}

func GetGoalRepo(db *mongo.Database) *GoalRepo {
	return &GoalRepo{MongoCollection: db.Collection(GoalsCollection)}
}

func (r *GoalRepo) CreateGoal(ctx context.Context, goal *model.Goal) error {
	timer := utils.TrackDBOperation("insert", GoalsCollection)
	defer timer.ObserveDuration()

	if _, err := r.MongoCollection.InsertOne(ctx, goal); err != nil {
		utils.TrackError("database", "goal_creation_failed")
		return translate(err, "goal", goal.GoalID)
	}
	return nil
}

func (r *GoalRepo) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	timer := utils.TrackDBOperation("find", GoalsCollection)
	defer timer.ObserveDuration()

	var goal model.Goal
	if err := r.MongoCollection.FindOne(ctx, bson.M{"_id": goalID}).Decode(&goal); err != nil {
		return nil, translate(err, "goal", goalID)
	}
	return &goal, nil
}

func (r *GoalRepo) ListGoals(ctx context.Context, userID string, includeArchived bool) ([]model.Goal, error) {
	timer := utils.TrackDBOperation("find", GoalsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"user_id": userID}
	if !includeArchived {
		filter["archived"] = false
	}
	return findAll[model.Goal](ctx, r.MongoCollection, filter, ascending("created_at"))
}

func (r *GoalRepo) CountActiveGoals(ctx context.Context, userID string) (int, error) {
	timer := utils.TrackDBOperation("count", GoalsCollection)
	defer timer.ObserveDuration()

	n, err := r.MongoCollection.CountDocuments(ctx, bson.M{
		"user_id":  userID,
		"status":   model.GoalActive,
		"archived": false,
	})
	if err != nil {
		utils.TrackError("database", "goal_count_failed")
		return 0, err
	}
	return int(n), nil
}

func (r *GoalRepo) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	timer := utils.TrackDBOperation("update", GoalsCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.ReplaceOne(ctx, bson.M{"_id": goal.GoalID}, goal)
	if err != nil {
		utils.TrackError("database", "goal_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("goal", goal.GoalID)
	}
	return nil
}

func (r *GoalRepo) DeleteGoal(ctx context.Context, goalID string) error {
	timer := utils.TrackDBOperation("delete", GoalsCollection)
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": goalID})
	if err != nil {
		utils.TrackError("database", "goal_deletion_failed")
		return err
	}
	if result.DeletedCount == 0 {
		return errs.NotFound("goal", goalID)
	}
	return nil
}
