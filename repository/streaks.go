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

// StreakRepo stores streak counters and the shields that bridge gaps.
type StreakRepo struct {
	Streaks *mongo.Collection
	Shields *mongo.Collection
}

func GetStreakRepo(db *mongo.Database) *StreakRepo {
	return &StreakRepo{
		Streaks: db.Collection(StreaksCollection),
		Shields: db.Collection(ShieldsCollection),
	}
}

func (r *StreakRepo) FindStreak(ctx context.Context, scope model.StreakScope) (*model.StreakInfo, error) {
	timer := utils.TrackDBOperation("find", StreaksCollection)
	defer timer.ObserveDuration()

	return findOne[model.StreakInfo](ctx, r.Streaks, bson.M{"_id": scope.Key()})
}

// SaveStreak inserts version 1 or replaces the row holding the caller's
// version, bumping it by one.
func (r *StreakRepo) SaveStreak(ctx context.Context, info *model.StreakInfo) error {
	timer := utils.TrackDBOperation("upsert", StreaksCollection)
	defer timer.ObserveDuration()

	key := info.Scope.Key()
	next := *info
	next.StreakID = key
	next.Version = info.Version + 1

	if info.Version == 0 {
		if _, err := r.Streaks.InsertOne(ctx, next); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return errs.Conflict("streak %s was created concurrently", key)
			}
			utils.TrackError("database", "streak_insert_failed")
			return err
		}
	} else {
		result, err := r.Streaks.ReplaceOne(ctx, bson.M{"_id": key, "version": info.Version}, next)
		if err != nil {
			utils.TrackError("database", "streak_update_failed")
			return err
		}
		if result.MatchedCount == 0 {
			utils.TrackError("database", "streak_version_conflict")
			return errs.Conflict("streak %s was modified concurrently", key)
		}
	}

	*info = next
	return nil
}

func (r *StreakRepo) ListStreaks(ctx context.Context, userID string) ([]model.StreakInfo, error) {
	timer := utils.TrackDBOperation("find", StreaksCollection)
	defer timer.ObserveDuration()

	return findAll[model.StreakInfo](ctx, r.Streaks, bson.M{"scope.user_id": userID}, ascending("_id"))
}

func (r *StreakRepo) ListActiveUserStreaks(ctx context.Context) ([]model.StreakInfo, error) {
	timer := utils.TrackDBOperation("find", StreaksCollection)
	defer timer.ObserveDuration()

	return findAll[model.StreakInfo](ctx, r.Streaks, bson.M{
		"scope.goal_id":             bson.M{"$exists": false},
		"scope.action_item_id":      bson.M{"$exists": false},
		"current_maintained_streak": bson.M{"$gt": 0},
	})
}

// DeleteStreaks removes the rows of the given scopes. Missing rows are ignored.
func (r *StreakRepo) DeleteStreaks(ctx context.Context, scopes []model.StreakScope) error {
	if len(scopes) == 0 {
		return nil
	}
	timer := utils.TrackDBOperation("delete", StreaksCollection)
	defer timer.ObserveDuration()

	keys := make([]string, 0, len(scopes))
	for _, sc := range scopes {
		keys = append(keys, sc.Key())
	}
	if _, err := r.Streaks.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		utils.TrackError("database", "streak_deletion_failed")
		return err
	}
	return nil
}

func (r *StreakRepo) CreateShield(ctx context.Context, s *model.StreakShield) error {
	timer := utils.TrackDBOperation("insert", ShieldsCollection)
	defer timer.ObserveDuration()

	if _, err := r.Shields.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Duplicate("%s is already shielded", utils.FormatDate(s.Date))
		}
		utils.TrackError("database", "shield_creation_failed")
		return err
	}
	return nil
}

func (r *StreakRepo) FindShield(ctx context.Context, userID string, date time.Time) (*model.StreakShield, error) {
	timer := utils.TrackDBOperation("find", ShieldsCollection)
	defer timer.ObserveDuration()

	return findOne[model.StreakShield](ctx, r.Shields, bson.M{"user_id": userID, "date": date})
}

func (r *StreakRepo) ListShields(ctx context.Context, userID string) ([]model.StreakShield, error) {
	timer := utils.TrackDBOperation("find", ShieldsCollection)
	defer timer.ObserveDuration()

	return findAll[model.StreakShield](ctx, r.Shields, bson.M{"user_id": userID}, ascending("date"))
}
