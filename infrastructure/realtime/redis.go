package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "wms:changes:"

// RedisBridge mirrors hub events across processes through redis pub/sub.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBridge{client: client, hub: hub, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Run forwards local events out and remote events in until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	local, cancel := b.hub.Subscribe(AllTables, 256)
	defer cancel()

	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	remote := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-local:
			if !ok {
				return nil
			}
			if ev.Origin != b.hub.Origin() {
				continue
			}
			payload, err := encodeEvent(ev)
			if err != nil {
				b.logger.Error("realtime: encode event failed", slog.String("table", ev.Table), slog.Any("err", err))
				continue
			}
			if err := b.client.Publish(ctx, channelFor(ev.Table), payload).Err(); err != nil {
				b.logger.Warn("realtime: redis publish failed", slog.String("table", ev.Table), slog.Any("err", err))
			}
		case msg, ok := <-remote:
			if !ok {
				return nil
			}
			ev, err := decodeEvent(msg.Channel, msg.Payload)
			if err != nil {
				b.logger.Warn("realtime: bad remote event", slog.String("channel", msg.Channel), slog.Any("err", err))
				continue
			}
			if ev.Origin == b.hub.Origin() {
				continue
			}
			b.hub.Publish(ev)
		}
	}
}

func channelFor(table string) string {
	return channelPrefix + table
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(channel, payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Table == "" {
		ev.Table = strings.TrimPrefix(channel, channelPrefix)
	}
	if ev.Origin == "" {
		return Event{}, fmt.Errorf("event without origin")
	}
	return ev, nil
}
