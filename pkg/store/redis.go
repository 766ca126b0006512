package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis hash, one hash per engine instance.
// A multi-field HSET is atomic on the server, which gives Apply its
// all-or-nothing behavior.
type RedisStore struct {
	client   *redis.Client
	instance string
}

// NewRedisStore creates a store backed by Redis.
func NewRedisStore(addr, password string, db int, instance string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, instance: instance}
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, instance string) *RedisStore {
	return &RedisStore{client: client, instance: instance}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("drip:record:%s", s.instance)
}

func (s *RedisStore) Has(ctx context.Context, f Field) (bool, error) {
	ok, err := s.client.HExists(ctx, s.key(), string(f)).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, f Field) (string, error) {
	v, err := s.client.HGet(ctx, s.key(), string(f)).Result()
	if err == redis.Nil {
		return "", ErrFieldAbsent
	}
	if err != nil {
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, f Field, v string) error {
	if err := s.client.HSet(ctx, s.key(), string(f), v).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *RedisStore) Apply(ctx context.Context, batch map[Field]string) error {
	if len(batch) == 0 {
		return nil
	}
	flat := make([]interface{}, 0, len(batch)*2)
	for f, v := range batch {
		flat = append(flat, string(f), v)
	}
	if err := s.client.HSet(ctx, s.key(), flat...).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}
