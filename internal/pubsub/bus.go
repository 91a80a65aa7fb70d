package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus publishes claim lifecycle events over redis pub/sub. Dashboard
// consumers subscribe to the per-case channels.
type Bus struct {
	rdb *redis.Client
	log *zap.Logger
	ctx context.Context
}

func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb: rdb,
		log: log,
		ctx: context.Background(),
	}
}

// PublishCase publishes an event to a claim case's channel
func (b *Bus) PublishCase(caseID string, event map[string]interface{}) error {
	return b.Publish("case:"+caseID, event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
		b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}
