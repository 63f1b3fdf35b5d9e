package plugin

import (
	"sync"
	"time"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// 플러그인 상태 전환 이벤트 토픽
const (
	TopicPluginEnabled  = "plugin.enabled"
	TopicPluginDisabled = "plugin.disabled"
)

// Event 플러그인 상태 전환 이벤트
type Event struct {
	Topic     string         `json:"topic"`
	Plugin    *domain.Plugin `json:"plugin"`
	Instance  interface{}    `json:"-"` // 팩토리로 만든 인스턴스 (해석 불가 시 nil)
	Timestamp time.Time      `json:"timestamp"`
}

// Emitter 이벤트 전달 인터페이스
type Emitter interface {
	Emit(event Event)
}

// Emitters 여러 Emitter 로 순서대로 전달
type Emitters []Emitter

// Emit 모든 Emitter 로 전달
func (es Emitters) Emit(event Event) {
	for _, e := range es {
		if e != nil {
			e.Emit(event)
		}
	}
}

// EventHandler 이벤트 핸들러 함수
type EventHandler func(event Event)

type subscription struct {
	subscriber string
	handler    EventHandler
}

// EventBus 프로세스 내 이벤트 발행/구독 (동기)
type EventBus struct {
	subscribers map[string][]subscription // topic -> handlers
	mu          sync.RWMutex
	logger      Logger
}

// NewEventBus 생성자
func NewEventBus(logger Logger) *EventBus {
	if logger == nil {
		logger = NopLogger{}
	}
	return &EventBus{
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}
}

// Subscribe 토픽 구독
func (eb *EventBus) Subscribe(subscriber, topic string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[topic] = append(eb.subscribers[topic], subscription{
		subscriber: subscriber,
		handler:    handler,
	})
	eb.logger.Debug("%s subscribed to topic: %s", subscriber, topic)
}

// Unsubscribe 구독자의 모든 구독 해제
func (eb *EventBus) Unsubscribe(subscriber string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for topic, subs := range eb.subscribers {
		var remaining []subscription
		for _, s := range subs {
			if s.subscriber != subscriber {
				remaining = append(remaining, s)
			}
		}
		if len(remaining) == 0 {
			delete(eb.subscribers, topic)
		} else {
			eb.subscribers[topic] = remaining
		}
	}
}

// Emit 이벤트 발행 (모든 핸들러 순차 실행, 핸들러 panic 은 기록 후 계속)
func (eb *EventBus) Emit(event Event) {
	eb.mu.RLock()
	subs := make([]subscription, len(eb.subscribers[event.Topic]))
	copy(subs, eb.subscribers[event.Topic])
	eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Error("Event handler panicked [%s → %s]: %v", event.Topic, s.subscriber, r)
				}
			}()
			s.handler(event)
		}()
	}
}
