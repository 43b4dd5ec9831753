package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis as JSON values.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Load returns the stored data or nil when the key is missing.
func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	if id == "" || s == nil || s.client == nil {
		return nil, nil
	}
	raw, errGet := s.client.Get(ctx, s.buildKey(id)).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session redis: get: %w", errGet)
	}
	var data Data
	if errUnmarshal := json.Unmarshal(raw, &data); errUnmarshal != nil {
		return nil, fmt.Errorf("session redis: decode: %w", errUnmarshal)
	}
	return &data, nil
}

// Save writes data under id with the given ttl.
func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	if id == "" || s == nil || s.client == nil {
		return nil
	}
	payload, errMarshal := json.Marshal(cloneData(data))
	if errMarshal != nil {
		return fmt.Errorf("session redis: encode: %w", errMarshal)
	}
	if ttl < 0 {
		ttl = 0
	}
	if errSet := s.client.Set(ctx, s.buildKey(id), payload, ttl).Err(); errSet != nil {
		return fmt.Errorf("session redis: set: %w", errSet)
	}
	return nil
}

// Delete removes id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" || s == nil || s.client == nil {
		return nil
	}
	if errDel := s.client.Del(ctx, s.buildKey(id)).Err(); errDel != nil {
		return fmt.Errorf("session redis: delete: %w", errDel)
	}
	return nil
}

func (s *RedisStore) buildKey(id string) string {
	if s.prefix == "" {
		return "sess:" + id
	}
	return s.prefix + ":sess:" + id
}
