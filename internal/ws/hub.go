package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/redis/go-redis/v9"
)

// Hub 플러그인 상태 전환 메시지를 연결된 WebSocket 클라이언트 모두에게 전달
//
// Redis 가 있으면 RedisEmitter 가 발행한 채널을 구독해 다른 인스턴스와 CLI 의
// 전환까지 전달하고, 이 경우 로컬 Emit 은 무시한다 (자기 발행분이 Redis 로 돌아옴).
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu          sync.RWMutex
	redisClient *redis.Client
	channel     string
	logger      plugin.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(redisClient *redis.Client, channel string, logger plugin.Logger) *Hub {
	if channel == "" {
		channel = plugin.DefaultRedisChannel
	}
	if logger == nil {
		logger = plugin.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 256),
		redisClient: redisClient,
		channel:     channel,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// 느린 클라이언트는 끊는다
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// Emit plugin.Emitter 구현
func (h *Hub) Emit(event plugin.Event) {
	if h.redisClient != nil || event.Plugin == nil {
		return
	}
	data, err := json.Marshal(plugin.NewEventMessage(event))
	if err != nil {
		h.logger.Warn("Failed to encode plugin event %s: %v", event.Topic, err)
		return
	}
	h.Broadcast(data)
}

// Broadcast 원본 메시지를 모든 클라이언트에 전달
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	}
}

// ClientCount 연결된 클라이언트 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// subscribeRedis listens for plugin events from every instance
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var em plugin.EventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &em); err != nil {
				h.logger.Warn("Ignoring malformed plugin event on %s: %v", h.channel, err)
				continue
			}
			h.Broadcast([]byte(msg.Payload))
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
