package repository

import (
	"context"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GuardianRepo stores guardianships and the nudges guardians send.
type GuardianRepo struct {
	Guardians *mongo.Collection
	Nudges    *mongo.Collection
}

func GetGuardianRepo(db *mongo.Database) *GuardianRepo {
	return &GuardianRepo{
		Guardians: db.Collection(GuardiansCollection),
		Nudges:    db.Collection(NudgesCollection),
	}
}

func (r *GuardianRepo) CreateGuardian(ctx context.Context, g *model.Guardian) error {
	timer := utils.TrackDBOperation("insert", GuardiansCollection)
	defer timer.ObserveDuration()

	if _, err := r.Guardians.InsertOne(ctx, g); err != nil {
		utils.TrackError("database", "guardian_creation_failed")
		return translate(err, "guardian", g.GuardianID)
	}
	return nil
}

func (r *GuardianRepo) GetGuardian(ctx context.Context, guardianID string) (*model.Guardian, error) {
	timer := utils.TrackDBOperation("find", GuardiansCollection)
	defer timer.ObserveDuration()

	var g model.Guardian
	if err := r.Guardians.FindOne(ctx, bson.M{"_id": guardianID}).Decode(&g); err != nil {
		return nil, translate(err, "guardian", guardianID)
	}
	return &g, nil
}

func (r *GuardianRepo) UpdateGuardian(ctx context.Context, g *model.Guardian) error {
	timer := utils.TrackDBOperation("update", GuardiansCollection)
	defer timer.ObserveDuration()

	result, err := r.Guardians.ReplaceOne(ctx, bson.M{"_id": g.GuardianID}, g)
	if err != nil {
		utils.TrackError("database", "guardian_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFound("guardian", g.GuardianID)
	}
	return nil
}

func (r *GuardianRepo) FindGuardian(ctx context.Context, goalID, guardianUserID string) (*model.Guardian, error) {
	timer := utils.TrackDBOperation("find", GuardiansCollection)
	defer timer.ObserveDuration()

	return findOne[model.Guardian](ctx, r.Guardians, bson.M{"goal_id": goalID, "guardian_user_id": guardianUserID})
}

func (r *GuardianRepo) ListGuardians(ctx context.Context, userID string) ([]model.Guardian, error) {
	timer := utils.TrackDBOperation("find", GuardiansCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"$or": bson.A{
		bson.M{"owner_user_id": userID},
		bson.M{"guardian_user_id": userID},
	}}
	return findAll[model.Guardian](ctx, r.Guardians, filter, ascending("created_at"))
}

func (r *GuardianRepo) CreateNudge(ctx context.Context, n *model.Nudge) error {
	timer := utils.TrackDBOperation("insert", NudgesCollection)
	defer timer.ObserveDuration()

	if _, err := r.Nudges.InsertOne(ctx, n); err != nil {
		utils.TrackError("database", "nudge_creation_failed")
		return translate(err, "nudge", n.NudgeID)
	}
	return nil
}

func (r *GuardianRepo) ListNudges(ctx context.Context, toUserID string) ([]model.Nudge, error) {
	timer := utils.TrackDBOperation("find", NudgesCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[model.Nudge](ctx, r.Nudges, bson.M{"to_user_id": toUserID}, opts)
}
