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

// ReflectionRepo stores goal reflections and journal entries.
type ReflectionRepo struct {
	Reflections *mongo.Collection
	Journal     *mongo.Collection
}

func GetReflectionRepo(db *mongo.Database) *ReflectionRepo {
	return &ReflectionRepo{
		Reflections: db.Collection(ReflectionsCollection),
		Journal:     db.Collection(JournalCollection),
	}
}

func (r *ReflectionRepo) CreateReflection(ctx context.Context, refl *model.GoalReflection) error {
	timer := utils.TrackDBOperation("insert", ReflectionsCollection)
	defer timer.ObserveDuration()

	if _, err := r.Reflections.InsertOne(ctx, refl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Duplicate("a reflection for the period starting %s already exists", utils.FormatDate(refl.PeriodStart))
		}
		utils.TrackError("database", "reflection_creation_failed")
		return err
	}
	return nil
}

func (r *ReflectionRepo) ListReflections(ctx context.Context, goalID string) ([]model.GoalReflection, error) {
	timer := utils.TrackDBOperation("find", ReflectionsCollection)
	defer timer.ObserveDuration()

	return findAll[model.GoalReflection](ctx, r.Reflections, bson.M{"goal_id": goalID}, ascending("period_start"))
}

func (r *ReflectionRepo) CreateJournalEntry(ctx context.Context, e *model.JournalEntry) error {
	timer := utils.TrackDBOperation("insert", JournalCollection)
	defer timer.ObserveDuration()

	if _, err := r.Journal.InsertOne(ctx, e); err != nil {
		utils.TrackError("database", "journal_creation_failed")
		return translate(err, "journal entry", "")
	}
	return nil
}

func (r *ReflectionRepo) ListJournalEntries(ctx context.Context, userID string, from, to time.Time) ([]model.JournalEntry, error) {
	timer := utils.TrackDBOperation("find", JournalCollection)
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": from, "$lte": to},
	}
	return findAll[model.JournalEntry](ctx, r.Journal, filter, ascending("date"))
}
