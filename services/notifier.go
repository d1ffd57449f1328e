package services

import (
	"context"
	"encoding/json"
	"time"

	"goaltracker/model"
	"goaltracker/utils"

	"github.com/redis/go-redis/v9"
)

const NotificationChannel = "notifications"

// RedisNotifier publishes notifications for the dispatch workers. Delivery is
// fire-and-forget: failures are logged and counted, never returned.
type RedisNotifier struct {
	Client  *redis.Client
	Channel string
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{Client: client, Channel: NotificationChannel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event model.Notification) {
	payload, err := json.Marshal(event)
	if err != nil {
		utils.TrackError("notify", "marshal_failed")
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := n.Client.Publish(pubCtx, n.Channel, payload).Err(); err != nil {
		utils.TrackError("notify", "publish_failed")
		utils.Log.WithError(err).WithField("type", event.Type).Warn("notification publish failed")
		return
	}
	utils.TrackNotification(event.Type)
}

// LogNotifier writes notifications to the log; used when Redis is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event model.Notification) {
	utils.Log.WithFields(map[string]interface{}{
		"type":    event.Type,
		"user_id": event.UserID,
		"data":    event.Data,
	}).Info("notification")
	utils.TrackNotification(event.Type)
}
