package cache

import (
	"context"
	"time"

	domainRepo "mediconnect/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type redisTokenStore struct {
	client *redis.Client
}

// NewTokenStore keeps issued token ids as Redis keys that expire with the token.
func NewTokenStore(client *redis.Client) domainRepo.TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Store(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, key, "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// DeleteMatching removes every key matching pattern. SCAN is used instead of
// KEYS so large keyspaces do not block the server.
func (s *redisTokenStore) DeleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
