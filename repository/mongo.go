package repository

import (
	"context"
	"errors"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection         = "users"
	GoalsCollection         = "goals"
	ProgressCollection      = "progress_entries"
	MilestonesCollection    = "milestones"
	ObstaclesCollection     = "obstacles"
	ActionItemsCollection   = "action_items"
	ScheduledCollection     = "scheduled_tasks"
	CompletionsCollection   = "task_completions"
	SlotsCollection         = "task_schedule_slots"
	StreaksCollection       = "streaks"
	ShieldsCollection       = "streak_shields"
	ReflectionsCollection   = "goal_reflections"
	JournalCollection       = "journal_entries"
	GuardiansCollection     = "guardians"
	NudgesCollection        = "nudges"
	SubscriptionsCollection = "user_subscriptions"
	PurchasesCollection     = "user_purchases"
)

// NewMongoRepositories builds every store on top of db.
func NewMongoRepositories(client *mongo.Client, db *mongo.Database, transactions bool) usecase.Repositories {
	activity := GetActivityRepo(db)
	streaks := GetStreakRepo(db)
	reflections := GetReflectionRepo(db)
	guardians := GetGuardianRepo(db)
	billing := GetBillingRepo(db)
	scheduled := GetScheduleRepo(db)

	return usecase.Repositories{
		Tx:            NewTxManager(client, transactions),
		Users:         GetUserRepo(db),
		Goals:         GetGoalRepo(db),
		Progress:      activity,
		Milestones:    activity,
		Obstacles:     activity,
		ActionItems:   GetActionItemRepo(db),
		Scheduled:     scheduled,
		Completions:   scheduled,
		Slots:         GetSlotRepo(db),
		Streaks:       streaks,
		Shields:       streaks,
		Reflections:   reflections,
		Journal:       reflections,
		Guardians:     guardians,
		Nudges:        guardians,
		Subscriptions: billing,
		Purchases:     billing,
	}
}

// TxManager runs a function inside a MongoDB session transaction. With
// transactions disabled (standalone servers) fn runs directly.
type TxManager struct {
	client  *mongo.Client
	enabled bool
}

func NewTxManager(client *mongo.Client, enabled bool) *TxManager {
	return &TxManager{client: client, enabled: enabled}
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.enabled {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		utils.TrackError("database", "session_start_failed")
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && errs.KindOf(err) == errs.KindInternal {
		utils.TrackError("database", "transaction_failed")
	}
	return err
}

// translate maps driver errors onto errs kinds.
func translate(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errs.NotFound(resource, id)
	case mongo.IsDuplicateKeyError(err):
		return errs.Duplicate("%s already exists", resource)
	}
	return err
}

// findOne decodes the first match, or returns nil, nil when nothing matches.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter, opts...).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", coll.Name()+"_lookup_failed")
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		utils.TrackError("database", coll.Name()+"_fetch_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		utils.TrackError("database", coll.Name()+"_decode_failed")
		return nil, err
	}
	return out, nil
}

// activityQuery turns an ActivityFilter into a query on dateField.
func activityQuery(f model.ActivityFilter, dateField string, withItem bool) bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.GoalID != "" {
		q["goal_id"] = f.GoalID
	}
	if withItem && f.ActionItemID != "" {
		q["action_item_id"] = f.ActionItemID
	}
	dates := bson.M{}
	if !f.From.IsZero() {
		dates["$gte"] = f.From
	}
	if !f.To.IsZero() {
		dates["$lte"] = f.To
	}
	if len(dates) > 0 {
		q[dateField] = dates
	}
	return q
}

func ascending(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: 1}})
}
