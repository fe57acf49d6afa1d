package watermark

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKeyPrefix = "hubspot-executor:watermark:"

// putIfGreater only replaces the stored value when the new one is larger.
var putIfGreater = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1])
return 1
`)

type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

type RedisStoreDependencies struct {
	Client    *redis.Client
	KeyPrefix string
}

func NewRedisStore(deps RedisStoreDependencies) *RedisStore {
	keyPrefix := deps.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}

	return &RedisStore{
		client:    deps.Client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) redisKey(key domain.WatermarkKey) string {
	return s.keyPrefix + key.String()
}

func (s *RedisStore) Get(ctx context.Context, key domain.WatermarkKey) (int64, bool, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get watermark %s: %w", key, err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse watermark %s: %w", key, err)
	}

	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key domain.WatermarkKey, value int64) error {
	err := putIfGreater.Run(ctx, s.client, []string{s.redisKey(key)}, value).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to put watermark %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key domain.WatermarkKey) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete watermark %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}
