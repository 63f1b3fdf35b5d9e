package plugin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel 상태 전환 이벤트 기본 채널
const DefaultRedisChannel = "angple:plugins:events"

// EventMessage 프로세스 밖으로 전달되는 상태 전환 메시지 (Redis, WebSocket)
type EventMessage struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	PluginID     int64     `json:"plugin_id"`
	PointID      int64     `json:"point_id"`
	ImportString string    `json:"import_string"`
	Name         *string   `json:"name"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// RedisEmitter 상태 전환 이벤트를 Redis Pub/Sub 으로 발행 (다른 프로세스 알림용)
type RedisEmitter struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	logger  Logger
}

// NewRedisEmitter 생성자
func NewRedisEmitter(client *redis.Client, channel string, logger Logger) *RedisEmitter {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &RedisEmitter{
		client:  client,
		channel: channel,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Emit 이벤트 발행. 발행 실패는 기록만 하고 저장 흐름은 막지 않는다.
func (e *RedisEmitter) Emit(event Event) {
	if e.client == nil || event.Plugin == nil {
		return
	}

	data, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		e.logger.Warn("Failed to encode plugin event %s: %v", event.Topic, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	if err := e.client.Publish(ctx, e.channel, data).Err(); err != nil {
		e.logger.Warn("Failed to publish plugin event %s for %s: %v", event.Topic, event.Plugin.ImportString, err)
	}
}

// NewEventMessage 이벤트를 메시지로 변환 (ID 는 새 uuid)
func NewEventMessage(event Event) EventMessage {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return EventMessage{
		ID:           uuid.NewString(),
		Topic:        event.Topic,
		PluginID:     event.Plugin.ID,
		PointID:      event.Plugin.PointID,
		ImportString: event.Plugin.ImportString,
		Name:         event.Plugin.Name,
		Status:       event.Plugin.Status.String(),
		Timestamp:    ts,
	}
}
