package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"mediconnect/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "realtime:"

func channelName(table string) string {
	return channelPrefix + table
}

// RedisBroker publishes row changes on one Redis channel per table.
type RedisBroker struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisBroker(client *redis.Client, log *logrus.Logger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, event entity.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	return b.client.Publish(ctx, channelName(event.Table), payload).Err()
}

// Subscribe returns a channel of change events for table. The channel is
// closed after the returned close function runs or ctx is done.
func (b *RedisBroker) Subscribe(ctx context.Context, table string) (<-chan entity.ChangeEvent, func() error, error) {
	pubsub := b.client.Subscribe(ctx, channelName(table))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", table, err)
	}

	out := make(chan entity.ChangeEvent, 16)
	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event entity.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warnf("Failed to decode change event on %s: %+v", msg.Channel, err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, pubsub.Close, nil
}
