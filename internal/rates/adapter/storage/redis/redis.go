package redis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Storage exposes Redis as the durable key-value slot behind the rate
// snapshot and the preference store.
type Storage struct {
	rdb *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		rdb: client,
	}
}

func InitStorage(ctx context.Context, options *redis.Options) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(redisClient), nil
}

// Get returns the value stored under key. A missing key is reported as an
// empty string with no error, matching the slot semantics the cache and
// preference store expect.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	const op = "storage.redis.Get"

	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	return val, nil
}

// Set stores value under key with no expiration.
func (s *Storage) Set(ctx context.Context, key string, value string) error {
	const op = "storage.redis.Set"

	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}
