package repository

import (
	"context"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActivityRepo stores the goal sub-records: progress, milestones, obstacles.
type ActivityRepo struct {
	Progress   *mongo.Collection
	Milestones *mongo.Collection
	Obstacles  *mongo.Collection
}

func GetActivityRepo(db *mongo.Database) *ActivityRepo {
	return &ActivityRepo{
		Progress:   db.Collection(ProgressCollection),
		Milestones: db.Collection(MilestonesCollection),
		Obstacles:  db.Collection(ObstaclesCollection),
	}
}

func (r *ActivityRepo) CreateProgress(ctx context.Context, entry *model.ProgressEntry) error {
	timer := utils.TrackDBOperation("insert", ProgressCollection)
	defer timer.ObserveDuration()

	if _, err := r.Progress.InsertOne(ctx, entry); err != nil {
		utils.TrackError("database", "progress_creation_failed")
		return translate(err, "progress entry", entry.EntryID)
	}
	return nil
}

func (r *ActivityRepo) ListProgress(ctx context.Context, filter model.ActivityFilter) ([]model.ProgressEntry, error) {
	timer := utils.TrackDBOperation("find", ProgressCollection)
	defer timer.ObserveDuration()

	return findAll[model.ProgressEntry](ctx, r.Progress, activityQuery(filter, "date", false), ascending("date"))
}

func (r *ActivityRepo) CreateMilestone(ctx context.Context, m *model.Milestone) error {
	timer := utils.TrackDBOperation("insert", MilestonesCollection)
	defer timer.ObserveDuration()

	if _, err := r.Milestones.InsertOne(ctx, m); err != nil {
		utils.TrackError("database", "milestone_creation_failed")
		return translate(err, "milestone", m.MilestoneID)
	}
	return nil
}

func (r *ActivityRepo) GetMilestone(ctx context.Context, milestoneID string) (*model.Milestone, error) {
	timer := utils.TrackDBOperation("find", MilestonesCollection)
	defer timer.ObserveDuration()

	var m model.Milestone
	if err := r.Milestones.FindOne(ctx, bson.M{"_id": milestoneID}).Decode(&m); err != nil {
		return nil, translate(err, "milestone", milestoneID)
	}
	return &m, nil
}

func (r *ActivityRepo) ListMilestones(ctx context.Context, goalID string) ([]model.Milestone, error) {
	timer := utils.TrackDBOperation("find", MilestonesCollection)
	defer timer.ObserveDuration()

	return findAll[model.Milestone](ctx, r.Milestones, bson.M{"goal_id": goalID}, ascending("created_at"))
}

func (r *ActivityRepo) UpdateMilestone(ctx context.Context, m *model.Milestone) error {
	timer := utils.TrackDBOperation("update", MilestonesCollection)
	defer timer.ObserveDuration()

	result, err := r.Milestones.ReplaceOne(ctx, bson.M{"_id": m.MilestoneID}, m)
	if err != nil {
		utils.TrackError("database", "milestone_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("milestone", m.MilestoneID)
	}
	return nil
}

func (r *ActivityRepo) CreateObstacle(ctx context.Context, o *model.ObstacleEntry) error {
	timer := utils.TrackDBOperation("insert", ObstaclesCollection)
	defer timer.ObserveDuration()

	if _, err := r.Obstacles.InsertOne(ctx, o); err != nil {
		utils.TrackError("database", "obstacle_creation_failed")
		return translate(err, "obstacle", o.ObstacleID)
	}
	return nil
}

func (r *ActivityRepo) ListObstacles(ctx context.Context, goalID string) ([]model.ObstacleEntry, error) {
	timer := utils.TrackDBOperation("find", ObstaclesCollection)
	defer timer.ObserveDuration()

	return findAll[model.ObstacleEntry](ctx, r.Obstacles, bson.M{"goal_id": goalID}, ascending("created_at"))
}
