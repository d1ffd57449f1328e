package repository

import (
	"context"
	"fmt"
	"time"

	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupIndexes creates the lookup indexes and the unique indexes that back
// the one-per-key rules (one completion per task per day, one journal entry
// per user per day, one reflection per goal period, one shield per day).
func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("username_unique").SetUnique(true),
			},
		},
		GoalsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "archived", Value: 1},
					{Key: "created_at", Value: 1},
				},
				Options: options.Index().SetName("user_goals"),
			},
		},
		ProgressCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "goal_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("user_goal_progress_date"),
			},
		},
		MilestonesCollection: {
			{
				Keys:    bson.D{{Key: "goal_id", Value: 1}},
				Options: options.Index().SetName("goal_milestones"),
			},
		},
		ObstaclesCollection: {
			{
				Keys:    bson.D{{Key: "goal_id", Value: 1}},
				Options: options.Index().SetName("goal_obstacles"),
			},
		},
		ActionItemsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "goal_id", Value: 1},
				},
				Options: options.Index().SetName("user_goal_action_items"),
			},
		},
		ScheduledCollection: {
			{
				Keys: bson.D{
					{Key: "action_item_id", Value: 1},
					{Key: "scheduled_date", Value: 1},
				},
				Options: options.Index().SetName("action_item_date_unique").SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "scheduled_date", Value: 1},
				},
				Options: options.Index().SetName("user_scheduled_date"),
			},
		},
		CompletionsCollection: {
			{
				Keys: bson.D{
					{Key: "action_item_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("action_item_completion_unique").SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("user_completion_date"),
			},
		},
		SlotsCollection: {
			{
				Keys: bson.D{
					{Key: "action_item_id", Value: 1},
					{Key: "effective_from", Value: 1},
				},
				Options: options.Index().SetName("action_item_slots"),
			},
		},
		StreaksCollection: {
			{
				Keys:    bson.D{{Key: "scope.user_id", Value: 1}},
				Options: options.Index().SetName("user_streaks"),
			},
		},
		ShieldsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("user_shield_date_unique").SetUnique(true),
			},
		},
		ReflectionsCollection: {
			{
				Keys: bson.D{
					{Key: "goal_id", Value: 1},
					{Key: "period_start", Value: 1},
				},
				Options: options.Index().SetName("goal_period_unique").SetUnique(true),
			},
		},
		JournalCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().SetName("user_journal_date_unique").SetUnique(true),
			},
		},
		GuardiansCollection: {
			{
				Keys: bson.D{
					{Key: "goal_id", Value: 1},
					{Key: "guardian_user_id", Value: 1},
				},
				Options: options.Index().SetName("goal_guardian_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "owner_user_id", Value: 1}},
				Options: options.Index().SetName("owner_guardians"),
			},
		},
		NudgesCollection: {
			{
				Keys: bson.D{
					{Key: "to_user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("recipient_nudges"),
			},
		},
		PurchasesCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "product", Value: 1},
					{Key: "purchased_at", Value: 1},
				},
				Options: options.Index().SetName("user_product_purchases"),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	utils.Log.Info("Successfully created all indexes")
	return nil
}
