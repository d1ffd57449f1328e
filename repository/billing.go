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

// BillingRepo holds the subscription and purchase rows written by the
// payment webhook consumer.
type BillingRepo struct {
	Subscriptions *mongo.Collection
	Purchases     *mongo.Collection
}

func GetBillingRepo(db *mongo.Database) *BillingRepo {
	return &BillingRepo{
		Subscriptions: db.Collection(SubscriptionsCollection),
		Purchases:     db.Collection(PurchasesCollection),
	}
}

func (r *BillingRepo) FindSubscription(ctx context.Context, userID string) (*model.UserSubscription, error) {
	timer := utils.TrackDBOperation("find", SubscriptionsCollection)
	defer timer.ObserveDuration()

	return findOne[model.UserSubscription](ctx, r.Subscriptions, bson.M{"_id": userID})
}

func (r *BillingRepo) UpsertSubscription(ctx context.Context, sub *model.UserSubscription) error {
	timer := utils.TrackDBOperation("upsert", SubscriptionsCollection)
	defer timer.ObserveDuration()

	_, err := r.Subscriptions.ReplaceOne(ctx, bson.M{"_id": sub.UserID}, sub, options.Replace().SetUpsert(true))
	if err != nil {
		utils.TrackError("database", "subscription_upsert_failed")
		return err
	}
	return nil
}

func (r *BillingRepo) CreatePurchase(ctx context.Context, p *model.UserPurchase) error {
	timer := utils.TrackDBOperation("insert", PurchasesCollection)
	defer timer.ObserveDuration()

	if _, err := r.Purchases.InsertOne(ctx, p); err != nil {
		utils.TrackError("database", "purchase_creation_failed")
		return translate(err, "purchase", p.PurchaseID)
	}
	return nil
}

func (r *BillingRepo) ListPurchases(ctx context.Context, userID string) ([]model.UserPurchase, error) {
	timer := utils.TrackDBOperation("find", PurchasesCollection)
	defer timer.ObserveDuration()

	return findAll[model.UserPurchase](ctx, r.Purchases, bson.M{"user_id": userID}, ascending("purchased_at"))
}

func (r *BillingRepo) FindUsablePurchase(ctx context.Context, userID string, product model.ProductType) (*model.UserPurchase, error) {
	timer := utils.TrackDBOperation("find", PurchasesCollection)
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id":            userID,
		"product":            product,
		"quantity_remaining": bson.M{"$gt": 0},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "purchased_at", Value: 1}})
	return findOne[model.UserPurchase](ctx, r.Purchases, filter, opts)
}

// UsePurchase decrements only while units remain, so the count never goes
// negative even under concurrent use.
func (r *BillingRepo) UsePurchase(ctx context.Context, purchaseID string) error {
	timer := utils.TrackDBOperation("update", PurchasesCollection)
	defer timer.ObserveDuration()

	result, err := r.Purchases.UpdateOne(ctx,
		bson.M{"_id": purchaseID, "quantity_remaining": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"quantity_remaining": -1}},
	)
	if err != nil {
		utils.TrackError("database", "purchase_update_failed")
		return err
	}
	if result.MatchedCount == 0 {
		var p model.UserPurchase
		if err := r.Purchases.FindOne(ctx, bson.M{"_id": purchaseID}).Decode(&p); err != nil {
			return translate(err, "purchase", purchaseID)
		}
		return errs.UsageLimitExceeded("purchase %s has no units left", purchaseID)
	}
	return nil
}
