package cache

import (
	"context"
	"encoding/json"
	"time"

	"game_store_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ChangesPubSub fans row change events out to every API instance.
type ChangesPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewChangesPubSub(rdb *redis.Client) *ChangesPubSub {
	return &ChangesPubSub{
		rdb:     rdb,
		channel: ChannelChanges(),
	}
}

func (p *ChangesPubSub) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if ev.TsMs == 0 {
		ev.TsMs = time.Now().UnixMilli()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks, calling handler for every event, until ctx is done.
func (p *ChangesPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev models.ChangeEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev models.ChangeEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil && ev.Table != "" {
				handler(ctx, ev)
			}
		}
	}
}
