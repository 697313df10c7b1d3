package cache

import (
	"context"
	"errors"
	"time"

	domainRepo "mediconnect/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type redisKeyValueStore struct {
	client *redis.Client
}

func NewKeyValueStore(client *redis.Client) domainRepo.KeyValueStore {
	return &redisKeyValueStore{client: client}
}

func (s *redisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Set stores value under key. A zero ttl keeps the key until it is deleted.
func (s *redisKeyValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisKeyValueStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
