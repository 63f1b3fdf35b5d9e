package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLContents 콘텐츠 목록 캐시 유지 시간 (자주 갱신)
const TTLContents = 30 * time.Second

// 캐시 키 접두사
const (
	PrefixContents = "contents:"
)

// ErrMiss 캐시에 값이 없음
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성 (client 가 nil 이면 모든 연산이 무시됨)
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// ContentsKey 콘텐츠 목록 캐시 키
func ContentsKey(plugin string, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", PrefixContents, plugin, page, limit)
}

// ContentsPrefix 플러그인의 콘텐츠 목록 캐시 키 접두사
func ContentsPrefix(plugin string) string {
	return PrefixContents + plugin + ":"
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeletePrefix 접두사로 시작하는 키 모두 삭제
func (c *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
